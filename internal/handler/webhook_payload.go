package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/josh-kwaku/rental-webhooks/internal/domain"
)

// webhookEnvelope is the wire shape of a delivery. Timestamp and metadata
// stay raw so only their presence is enforced.
type webhookEnvelope struct {
	EventID   string           `json:"eventId"`
	EventType domain.EventType `json:"eventType"`
	Timestamp json.RawMessage  `json:"timestamp"`
	Data      map[string]any   `json:"data"`
	Metadata  json.RawMessage  `json:"metadata"`
}

// parseWebhookEvent strictly decodes body. The top level must be a single
// JSON object and data, when present, an object. The timestamp may be a
// string or a number; a number keeps its literal text.
func parseWebhookEvent(body []byte) (*domain.WebhookEvent, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: body is not a JSON object", domain.ErrInvalidJSON)
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	var env webhookEnvelope
	if err := dec.Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidJSON, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after object", domain.ErrInvalidJSON)
	}

	timestamp, err := timestampText(env.Timestamp)
	if err != nil {
		return nil, err
	}

	event := domain.WebhookEvent{
		EventID:   env.EventID,
		EventType: env.EventType,
		Timestamp: timestamp,
		Data:      env.Data,
	}
	if len(env.Metadata) > 0 && !bytes.Equal(env.Metadata, []byte("null")) {
		event.Metadata = env.Metadata
	}

	if missing := event.MissingFields(); len(missing) > 0 {
		return nil, &domain.MissingFieldsError{Fields: missing}
	}
	if event.Data == nil {
		event.Data = map[string]any{}
	}
	return &event, nil
}

// timestampText renders a raw timestamp the way it feeds the identity hash.
// Absent and null yield "" so the field is reported missing.
func timestampText(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("%w: timestamp: %v", domain.ErrInvalidJSON, err)
		}
		return s, nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return string(raw), nil
	default:
		return "", fmt.Errorf("%w: timestamp must be a string or number", domain.ErrInvalidJSON)
	}
}
