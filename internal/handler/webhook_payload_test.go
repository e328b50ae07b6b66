package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/rental-webhooks/internal/domain"
)

func TestParseWebhookEvent(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantErr     error
		wantMissing []string
	}{
		{name: "valid", body: `{"eventId":"e1","eventType":"reservation.created","timestamp":"2024-01-01T00:00:00Z","data":{"id":1}}`},
		{name: "surrounding whitespace", body: "\n  {\"eventId\":\"e1\",\"eventType\":\"a\",\"timestamp\":\"t\"}  \n"},
		{name: "unknown top-level fields ignored", body: `{"eventId":"e1","eventType":"a","timestamp":"t","source":"hq"}`},
		{name: "empty", body: ``, wantErr: domain.ErrInvalidJSON},
		{name: "string literal", body: `"hello"`, wantErr: domain.ErrInvalidJSON},
		{name: "number literal", body: `42`, wantErr: domain.ErrInvalidJSON},
		{name: "eventId wrong type", body: `{"eventId":7,"eventType":"a","timestamp":"t"}`, wantErr: domain.ErrInvalidJSON},
		{name: "string metadata passes through", body: `{"eventId":"e1","eventType":"a","timestamp":"t","metadata":"hq-v2"}`},
		{name: "array metadata passes through", body: `{"eventId":"e1","eventType":"a","timestamp":"t","metadata":["x"]}`},
		{name: "numeric timestamp", body: `{"eventId":"e1","eventType":"a","timestamp":1704067200}`},
		{name: "boolean timestamp", body: `{"eventId":"e1","eventType":"a","timestamp":true}`, wantErr: domain.ErrInvalidJSON},
		{name: "object timestamp", body: `{"eventId":"e1","eventType":"a","timestamp":{"at":1}}`, wantErr: domain.ErrInvalidJSON},
		{name: "two objects", body: `{}{}`, wantErr: domain.ErrInvalidJSON},
		{name: "empty object", body: `{}`, wantErr: domain.ErrMissingFields, wantMissing: []string{"eventId", "eventType", "timestamp"}},
		{name: "null fields", body: `{"eventId":null,"eventType":"a","timestamp":null}`, wantErr: domain.ErrMissingFields, wantMissing: []string{"eventId", "timestamp"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			event, err := parseWebhookEvent([]byte(tc.body))
			if tc.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, "e1", event.EventID)
				assert.NotNil(t, event.Data)
				return
			}

			require.ErrorIs(t, err, tc.wantErr)
			assert.Nil(t, event)
			if tc.wantMissing != nil {
				var missing *domain.MissingFieldsError
				require.ErrorAs(t, err, &missing)
				assert.Equal(t, tc.wantMissing, missing.Fields)
			}
		})
	}
}

func TestParseWebhookEvent_TimestampText(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`"2024-01-01T00:00:00Z"`, "2024-01-01T00:00:00Z"},
		{`"yesterday-ish"`, "yesterday-ish"},
		{`"2024\/01\/01"`, "2024/01/01"},
		{`1704067200`, "1704067200"},
		{`1.7040672e9`, "1.7040672e9"},
		{`-1`, "-1"},
	}

	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			event, err := parseWebhookEvent([]byte(`{"eventId":"e1","eventType":"a","timestamp":` + tc.raw + `}`))
			require.NoError(t, err)
			assert.Equal(t, tc.want, event.Timestamp)
		})
	}
}

func TestParseWebhookEvent_MetadataVerbatim(t *testing.T) {
	event, err := parseWebhookEvent([]byte(`{"eventId":"e1","eventType":"a","timestamp":"t","metadata":{"attempt": 2, "tags":["x"]}}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"attempt":2,"tags":["x"]}`, string(event.Metadata))

	event, err = parseWebhookEvent([]byte(`{"eventId":"e1","eventType":"a","timestamp":"t","metadata":null}`))
	require.NoError(t, err)
	assert.Nil(t, event.Metadata)
}

func TestParseWebhookEvent_PreservesNumbers(t *testing.T) {
	event, err := parseWebhookEvent([]byte(`{"eventId":"e1","eventType":"payment.completed","timestamp":"t","data":{"amountCents":12345678901234567}}`))
	require.NoError(t, err)
	assert.Equal(t, json.Number("12345678901234567"), event.Data["amountCents"])
}

func TestRespondDomainError(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{domain.ErrUnknownProvider, http.StatusNotFound, "UNKNOWN_PROVIDER"},
		{domain.ErrWebhooksDisabled, http.StatusNotImplemented, "WEBHOOKS_DISABLED"},
		{domain.ErrPayloadTooLarge, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"},
		{domain.ErrInvalidSignature, http.StatusUnauthorized, "INVALID_SIGNATURE"},
		{fmt.Errorf("%w: unexpected EOF", domain.ErrInvalidJSON), http.StatusBadRequest, "INVALID_JSON"},
		{&domain.MissingFieldsError{Fields: []string{"eventId"}}, http.StatusBadRequest, "MISSING_FIELDS"},
		{errors.New("boom"), http.StatusInternalServerError, "PROCESSING_FAILED"},
	}

	for _, tc := range tests {
		t.Run(tc.wantCode, func(t *testing.T) {
			rr := httptest.NewRecorder()
			RespondDomainError(rr, tc.err, "")

			assert.Equal(t, tc.wantStatus, rr.Code)
			assert.Equal(t, tc.wantCode, decodeErrorResponse(t, rr).Code)
		})
	}
}
