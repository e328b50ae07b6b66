package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/josh-kwaku/rental-webhooks/internal/domain"
)

// ErrorResponse is the body of every non-2xx reply. Error carries the
// human-readable reason and Code the machine-readable one.
type ErrorResponse struct {
	Error     string   `json:"error"`
	Code      string   `json:"code"`
	Message   string   `json:"message,omitempty"`
	Fields    []string `json:"fields,omitempty"`
	Timestamp string   `json:"timestamp"`
}

type DuplicateResponse struct {
	Message   string `json:"message"`
	EventID   string `json:"eventId"`
	Timestamp string `json:"timestamp"`
}

type StatusResponse struct {
	Enabled           bool     `json:"enabled"`
	Endpoint          string   `json:"endpoint"`
	Methods           []string `json:"methods"`
	SignatureRequired bool     `json:"signatureRequired"`
	ProcessedEvents   int64    `json:"processedEvents"`
	Status            string   `json:"status"`
	LastCleanup       *string  `json:"lastCleanup"`
}

func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func RespondAppError(w http.ResponseWriter, appErr *AppError, message string) {
	RespondJSON(w, appErr.Status, ErrorResponse{
		Error:     appErr.Message,
		Code:      appErr.Code,
		Message:   message,
		Timestamp: now(),
	})
}

func RespondValidationError(w http.ResponseWriter, fields []string, message string) {
	RespondJSON(w, ErrMissingFields.Status, ErrorResponse{
		Error:     ErrMissingFields.Message,
		Code:      ErrMissingFields.Code,
		Message:   message,
		Fields:    fields,
		Timestamp: now(),
	})
}

// RespondDomainError maps a domain sentinel to its AppError. Anything
// unrecognised is a processing failure.
func RespondDomainError(w http.ResponseWriter, err error, message string) {
	var appErr *AppError

	switch {
	case errors.Is(err, domain.ErrUnknownProvider):
		appErr = ErrUnknownProvider
	case errors.Is(err, domain.ErrWebhooksDisabled):
		appErr = ErrWebhooksDisabled
	case errors.Is(err, domain.ErrPayloadTooLarge):
		appErr = ErrPayloadTooLarge
	case errors.Is(err, domain.ErrInvalidSignature):
		appErr = ErrInvalidSignature
	case errors.Is(err, domain.ErrInvalidJSON):
		appErr = ErrInvalidJSON
	case errors.Is(err, domain.ErrMissingFields):
		appErr = ErrMissingFields
	default:
		appErr = ErrProcessingFailed
	}

	RespondAppError(w, appErr, message)
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func formatTime(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
