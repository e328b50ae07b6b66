package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/rental-webhooks/internal/domain"
	"github.com/josh-kwaku/rental-webhooks/internal/logging"
	"github.com/josh-kwaku/rental-webhooks/internal/signature"
)

const defaultSignatureHeader = "X-HQ-Signature"

type options struct {
	url       string
	eventType string
	eventID   string
	repeat    int
	secret    string
	header    string
}

func main() {
	logging.Init("mock-partner", "info", os.Getenv("APP_ENV"))

	opts := options{}
	flag.StringVar(&opts.url, "url", "http://localhost:8080/api/webhooks/hq", "receiver URL")
	flag.StringVar(&opts.eventType, "type", string(domain.EventTypeReservationCreated), "event type")
	flag.StringVar(&opts.eventID, "event-id", "", "event id (random when empty)")
	flag.IntVar(&opts.repeat, "repeat", 1, "number of identical deliveries")
	flag.StringVar(&opts.secret, "secret", os.Getenv("HQ_WEBHOOK_SECRET"), "signing secret (unsigned when empty)")
	flag.StringVar(&opts.header, "header", envOr("HQ_SIGNATURE_HEADER", defaultSignatureHeader), "signature header name")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := &http.Client{Timeout: 10 * time.Second}
	if err := run(ctx, client, opts); err != nil {
		slog.Error("delivery failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, client *http.Client, opts options) error {
	if opts.eventID == "" {
		opts.eventID = uuid.NewString()
	}
	if opts.header == "" {
		opts.header = defaultSignatureHeader
	}

	body, err := json.Marshal(sampleEvent(opts.eventID, domain.EventType(opts.eventType), time.Now().UTC()))
	if err != nil {
		return fmt.Errorf("run: marshal: %w", err)
	}

	for i := range max(opts.repeat, 1) {
		status, respBody, err := deliver(ctx, client, opts.url, body, opts.header, opts.secret)
		if err != nil {
			return fmt.Errorf("run: delivery %d: %w", i+1, err)
		}
		slog.Info("delivered",
			"attempt", i+1,
			"event_id", opts.eventID,
			"event_type", opts.eventType,
			"status", status,
			"response", respBody,
		)
	}
	return nil
}

// deliver posts body signed the way the partner signs: hex HMAC-SHA256 of the
// raw bytes in header.
func deliver(ctx context.Context, client *http.Client, url string, body []byte, header, secret string) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, "", fmt.Errorf("deliver: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set(header, signature.Sign(body, secret))
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("deliver: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return resp.StatusCode, "", fmt.Errorf("deliver: read response: %w", err)
	}
	return resp.StatusCode, string(respBody), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func sampleEvent(eventID string, eventType domain.EventType, at time.Time) domain.WebhookEvent {
	data := map[string]any{}
	switch eventType {
	case domain.EventTypeReservationCreated, domain.EventTypeReservationUpdated, domain.EventTypeReservationCancelled:
		data["reservationId"] = "res-" + eventID[:min(8, len(eventID))]
		data["vehicleId"] = "veh-1042"
		data["customerEmail"] = "driver@example.com"
		data["pickupAt"] = at.Add(48 * time.Hour).Format(time.RFC3339)
	case domain.EventTypeVehicleStatusChanged:
		data["vehicleId"] = "veh-1042"
		data["status"] = "maintenance"
	case domain.EventTypePaymentCompleted:
		data["reservationId"] = "res-" + eventID[:min(8, len(eventID))]
		data["amountCents"] = 18900
		data["cardLast4"] = "4242"
	}

	return domain.WebhookEvent{
		EventID:   eventID,
		EventType: eventType,
		Timestamp: at.Format(time.RFC3339),
		Data:      data,
		Metadata:  json.RawMessage(`{"source":"mock-partner"}`),
	}
}
