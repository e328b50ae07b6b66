package testutil

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/josh-kwaku/rental-webhooks/internal/domain"
)

// FakeClock is a manually advanced clock for retention tests.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func NewEvent(eventID string, eventType domain.EventType) domain.WebhookEvent {
	return domain.WebhookEvent{
		EventID:   eventID,
		EventType: eventType,
		Timestamp: "2024-01-01T00:00:00Z",
		Data:      map[string]any{"reservationId": "res-" + eventID},
	}
}

func EventBody(t *testing.T, event domain.WebhookEvent) string {
	t.Helper()
	b, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return string(b)
}
