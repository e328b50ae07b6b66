package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrWebhooksDisabled = &AppError{http.StatusNotImplemented, "WEBHOOKS_DISABLED", "Webhooks disabled"}
	ErrUnknownProvider  = &AppError{http.StatusNotFound, "UNKNOWN_PROVIDER", "Unknown webhook provider"}
	ErrInvalidSignature = &AppError{http.StatusUnauthorized, "INVALID_SIGNATURE", "Invalid signature"}
	ErrInvalidJSON      = &AppError{http.StatusBadRequest, "INVALID_JSON", "Invalid JSON payload"}
	ErrMissingFields    = &AppError{http.StatusBadRequest, "MISSING_FIELDS", "Missing required fields"}
	ErrPayloadTooLarge  = &AppError{http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Payload too large"}
	ErrProcessingFailed = &AppError{http.StatusInternalServerError, "PROCESSING_FAILED", "Webhook processing failed"}

	ErrMissingToken    = &AppError{http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header required"}
	ErrInvalidToken    = &AppError{http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid or expired"}
	ErrTooManyRequests = &AppError{http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests"}
	ErrInternalError   = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}
)
