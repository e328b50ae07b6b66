package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/josh-kwaku/rental-webhooks/internal/domain"
	"github.com/josh-kwaku/rental-webhooks/internal/logging"
	"github.com/josh-kwaku/rental-webhooks/internal/service"
	"github.com/josh-kwaku/rental-webhooks/internal/signature"
	"github.com/josh-kwaku/rental-webhooks/internal/telemetry"
)

const webhookPathPrefix = "/api/webhooks/"

type deduplicator interface {
	IsDuplicate(ctx context.Context, hash string) (bool, error)
	Record(ctx context.Context, event domain.WebhookEvent, hash string) error
	Count(ctx context.Context) (int64, error)
	LastSweep() time.Time
}

type eventDispatcher interface {
	Dispatch(ctx context.Context, event domain.WebhookEvent) error
}

type WebhookConfig struct {
	Enabled         bool
	Provider        string
	SignatureHeader string
	MaxBodyBytes    int64
	// Secret is only used to scrub error messages before they are returned.
	Secret string
}

type WebhookHandler struct {
	cfg        WebhookConfig
	verifier   signature.Verifier
	dedup      deduplicator
	dispatcher eventDispatcher
	metrics    *telemetry.Metrics
}

func NewWebhookHandler(
	cfg WebhookConfig,
	verifier signature.Verifier,
	dedup deduplicator,
	dispatcher eventDispatcher,
	metrics *telemetry.Metrics,
) *WebhookHandler {
	if metrics == nil {
		metrics = telemetry.Noop()
	}
	return &WebhookHandler{
		cfg:        cfg,
		verifier:   verifier,
		dedup:      dedup,
		dispatcher: dispatcher,
		metrics:    metrics,
	}
}

func (h *WebhookHandler) Endpoint() string {
	return webhookPathPrefix + h.cfg.Provider
}

// Receive handles one partner delivery. The body is not touched while
// webhooks are disabled, and an event is recorded as processed only after its
// handler returned without error.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	provider := r.PathValue("provider")
	if provider != h.cfg.Provider {
		RespondDomainError(w, domain.ErrUnknownProvider, "")
		return
	}

	if !h.cfg.Enabled {
		h.metrics.Delivery(ctx, provider, telemetry.OutcomeDisabled)
		RespondDomainError(w, domain.ErrWebhooksDisabled, "Set HQ_WEBHOOKS_ENABLED=true to enable webhook processing")
		return
	}

	log := logging.FromContext(ctx).With("provider", provider)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Warn("webhook body too large", "limit", tooLarge.Limit)
			h.metrics.Delivery(ctx, provider, telemetry.OutcomeTooLarge)
			RespondDomainError(w, domain.ErrPayloadTooLarge, fmt.Sprintf("body exceeds %d bytes", tooLarge.Limit))
			return
		}
		h.fail(w, r, log, provider, fmt.Errorf("read body: %w", err))
		return
	}

	if !h.verifier.Verify(body, r.Header.Get(h.cfg.SignatureHeader)) {
		log.Warn("webhook signature verification failed")
		h.metrics.Delivery(ctx, provider, telemetry.OutcomeInvalidSignature)
		RespondDomainError(w, domain.ErrInvalidSignature, "")
		return
	}

	event, err := parseWebhookEvent(body)
	if err != nil {
		var missing *domain.MissingFieldsError
		if errors.As(err, &missing) {
			log.Warn("webhook missing required fields", "fields", missing.Fields)
			h.metrics.Delivery(ctx, provider, telemetry.OutcomeMissingFields)
			RespondValidationError(w, missing.Fields, missing.Error())
			return
		}
		log.Warn("invalid webhook JSON", "error", err)
		h.metrics.Delivery(ctx, provider, telemetry.OutcomeInvalidJSON)
		RespondDomainError(w, err, "")
		return
	}

	log = log.With("event_id", event.EventID, "event_type", event.EventType)
	ctx = logging.WithLogger(ctx, log)
	hash := service.ComputeIdentity(*event)

	dup, err := h.dedup.IsDuplicate(ctx, hash)
	if err != nil {
		h.fail(w, r, log, provider, err)
		return
	}
	if dup {
		log.Info("duplicate webhook event ignored")
		h.metrics.Delivery(ctx, provider, telemetry.OutcomeDuplicate)
		RespondJSON(w, http.StatusOK, DuplicateResponse{
			Message:   "Event already processed",
			EventID:   event.EventID,
			Timestamp: now(),
		})
		return
	}

	log.Info("webhook received",
		"timestamp", event.Timestamp,
		"data_keys", domain.DataKeys(event.Data),
		"data", domain.RedactData(event.Data),
	)

	if err := h.dispatcher.Dispatch(ctx, *event); err != nil {
		h.fail(w, r, log, provider, err)
		return
	}

	if err := h.dedup.Record(ctx, *event, hash); err != nil {
		h.fail(w, r, log, provider, err)
		return
	}

	h.metrics.Delivery(ctx, provider, telemetry.OutcomeProcessed)
	w.WriteHeader(http.StatusNoContent)
}

func (h *WebhookHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.PathValue("provider") != h.cfg.Provider {
		RespondDomainError(w, domain.ErrUnknownProvider, "")
		return
	}

	count, err := h.dedup.Count(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to count processed events", "error", err)
		RespondAppError(w, ErrInternalError, "")
		return
	}

	status := "disabled"
	if h.cfg.Enabled {
		status = "active"
	}

	RespondJSON(w, http.StatusOK, StatusResponse{
		Enabled:           h.cfg.Enabled,
		Endpoint:          h.Endpoint(),
		Methods:           []string{http.MethodPost},
		SignatureRequired: h.verifier.Enforced(),
		ProcessedEvents:   count,
		Status:            status,
		LastCleanup:       formatTime(h.dedup.LastSweep()),
	})
}

// Options answers CORS preflight for the webhook endpoint.
func (h *WebhookHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+h.cfg.SignatureHeader)
	w.WriteHeader(http.StatusOK)
}

func (h *WebhookHandler) fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, provider string, err error) {
	log.Error("webhook processing failed", "error", err)
	h.metrics.Delivery(r.Context(), provider, telemetry.OutcomeFailed)
	RespondAppError(w, ErrProcessingFailed, h.scrub(err.Error()))
}

func (h *WebhookHandler) scrub(msg string) string {
	if h.cfg.Secret == "" {
		return msg
	}
	return strings.ReplaceAll(msg, h.cfg.Secret, "[REDACTED]")
}
