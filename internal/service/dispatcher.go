package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/josh-kwaku/rental-webhooks/internal/domain"
	"github.com/josh-kwaku/rental-webhooks/internal/logging"
)

type EventHandler interface {
	Handle(ctx context.Context, event domain.WebhookEvent) error
}

type EventHandlerFunc func(ctx context.Context, event domain.WebhookEvent) error

func (f EventHandlerFunc) Handle(ctx context.Context, event domain.WebhookEvent) error {
	return f(ctx, event)
}

// Dispatcher routes events to the handler registered for their type. Types
// without a handler go to the fallback, which never fails by default.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[domain.EventType]EventHandler
	fallback EventHandler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[domain.EventType]EventHandler),
		fallback: EventHandlerFunc(logUnknownEvent),
	}
}

func (d *Dispatcher) Register(eventType domain.EventType, h EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventType] = h
}

func (d *Dispatcher) SetFallback(h EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fallback = h
}

func (d *Dispatcher) Handles(eventType domain.EventType) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.handlers[eventType]
	return ok
}

// Dispatch runs the handler for event. A panicking handler is reported as an
// error.
func (d *Dispatcher) Dispatch(ctx context.Context, event domain.WebhookEvent) (err error) {
	d.mu.RLock()
	h, ok := d.handlers[event.EventType]
	if !ok {
		h = d.fallback
	}
	d.mu.RUnlock()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("Dispatch: %s handler panicked: %v", event.EventType, r)
		}
	}()

	if err := h.Handle(ctx, event); err != nil {
		return fmt.Errorf("Dispatch: %s: %w", event.EventType, err)
	}
	return nil
}

// RegisterDefaults installs the logging handlers for the partner's documented
// event types. Real side effects are wired by replacing these with Register.
func (d *Dispatcher) RegisterDefaults() {
	d.Register(domain.EventTypeReservationCreated, EventHandlerFunc(func(ctx context.Context, e domain.WebhookEvent) error {
		logging.FromContext(ctx).Info("reservation created", "reservation_id", e.DataString("reservationId"), "event_id", e.EventID)
		return nil
	}))
	d.Register(domain.EventTypeReservationUpdated, EventHandlerFunc(func(ctx context.Context, e domain.WebhookEvent) error {
		logging.FromContext(ctx).Info("reservation updated", "reservation_id", e.DataString("reservationId"), "event_id", e.EventID)
		return nil
	}))
	d.Register(domain.EventTypeReservationCancelled, EventHandlerFunc(func(ctx context.Context, e domain.WebhookEvent) error {
		logging.FromContext(ctx).Info("reservation cancelled", "reservation_id", e.DataString("reservationId"), "event_id", e.EventID)
		return nil
	}))
	d.Register(domain.EventTypeVehicleStatusChanged, EventHandlerFunc(func(ctx context.Context, e domain.WebhookEvent) error {
		logging.FromContext(ctx).Info("vehicle status changed",
			"vehicle_id", e.DataString("vehicleId"),
			"status", e.DataString("status"),
			"event_id", e.EventID,
		)
		return nil
	}))
	d.Register(domain.EventTypePaymentCompleted, EventHandlerFunc(func(ctx context.Context, e domain.WebhookEvent) error {
		logging.FromContext(ctx).Info("payment completed", "payment_id", e.DataString("paymentId"), "event_id", e.EventID)
		return nil
	}))
}

func logUnknownEvent(ctx context.Context, e domain.WebhookEvent) error {
	logging.FromContext(ctx).Info("unknown webhook event type", "event_type", e.EventType, "event_id", e.EventID)
	return nil
}
