package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSensitiveKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"email", true},
		{"customerEmail", true},
		{"PHONE_NUMBER", true},
		{"ssn", true},
		{"driverLicenseNo", true},
		{"paymentMethod", true},
		{"CardLast4", true},
		{"reservationId", false},
		{"vehicleId", false},
		{"status", false},
		{"", false},
	}

	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			assert.Equal(t, tc.want, IsSensitiveKey(tc.key))
		})
	}
}

func TestRedactData(t *testing.T) {
	nested := map[string]any{"email": "inner@example.com"}
	data := map[string]any{
		"reservationId": "r-1",
		"customerEmail": "a@example.com",
		"Phone":         "+1 555",
		"amount":        42,
		"customer":      nested,
	}

	got := RedactData(data)

	assert.Equal(t, "r-1", got["reservationId"])
	assert.Equal(t, RedactedMarker, got["customerEmail"])
	assert.Equal(t, RedactedMarker, got["Phone"])
	assert.Equal(t, 42, got["amount"])
	assert.Equal(t, nested, got["customer"], "only top-level keys are matched")
	assert.Equal(t, "a@example.com", data["customerEmail"], "input must not be mutated")
}

func TestRedactData_Nil(t *testing.T) {
	got := RedactData(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDataKeys(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, DataKeys(map[string]any{"c": 1, "a": 2, "b": 3}))
	assert.Empty(t, DataKeys(nil))
}

func TestWebhookEvent_MissingFields(t *testing.T) {
	tests := []struct {
		name  string
		event WebhookEvent
		want  []string
	}{
		{"complete", WebhookEvent{EventID: "e1", EventType: "x.y", Timestamp: "t"}, nil},
		{"no id", WebhookEvent{EventType: "x.y", Timestamp: "t"}, []string{"eventId"}},
		{"only id", WebhookEvent{EventID: "e1"}, []string{"eventType", "timestamp"}},
		{"empty", WebhookEvent{}, []string{"eventId", "eventType", "timestamp"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.event.MissingFields())
		})
	}
}

func TestMissingFieldsError(t *testing.T) {
	err := &MissingFieldsError{Fields: []string{"eventId", "timestamp"}}
	assert.ErrorIs(t, err, ErrMissingFields)
	assert.Equal(t, "missing required fields: eventId, timestamp", err.Error())
}
