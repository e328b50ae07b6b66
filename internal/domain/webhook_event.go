package domain

import (
	"encoding/json"
	"fmt"
)

type EventType string

const (
	EventTypeReservationCreated   EventType = "reservation.created"
	EventTypeReservationUpdated   EventType = "reservation.updated"
	EventTypeReservationCancelled EventType = "reservation.cancelled"
	EventTypeVehicleStatusChanged EventType = "vehicle.status_changed"
	EventTypePaymentCompleted     EventType = "payment.completed"
)

// KnownEventTypes lists the categories the partner documents today. Producers
// may add new ones at any time.
var KnownEventTypes = []EventType{
	EventTypeReservationCreated,
	EventTypeReservationUpdated,
	EventTypeReservationCancelled,
	EventTypeVehicleStatusChanged,
	EventTypePaymentCompleted,
}

// WebhookEvent is an inbound partner notification. Timestamp is the partner's
// event time and is kept as sent. Metadata is carried verbatim and never
// interpreted.
type WebhookEvent struct {
	EventID   string          `json:"eventId"`
	EventType EventType       `json:"eventType"`
	Timestamp string          `json:"timestamp"`
	Data      map[string]any  `json:"data"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

// MissingFields reports which envelope fields are empty, in envelope order.
func (e *WebhookEvent) MissingFields() []string {
	var missing []string
	if e.EventID == "" {
		missing = append(missing, "eventId")
	}
	if e.EventType == "" {
		missing = append(missing, "eventType")
	}
	if e.Timestamp == "" {
		missing = append(missing, "timestamp")
	}
	return missing
}

func (e *WebhookEvent) DataString(key string) string {
	if e.Data == nil {
		return ""
	}
	switch v := e.Data[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
