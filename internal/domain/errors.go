package domain

import (
	"errors"
	"strings"
)

var (
	ErrWebhooksDisabled = errors.New("webhooks disabled")
	ErrUnknownProvider  = errors.New("unknown webhook provider")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrInvalidJSON      = errors.New("invalid JSON payload")
	ErrMissingFields    = errors.New("missing required fields")
	ErrPayloadTooLarge  = errors.New("payload too large")
)

// MissingFieldsError names the envelope fields absent from a payload.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

func (e *MissingFieldsError) Is(target error) bool {
	return target == ErrMissingFields
}
