package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/josh-kwaku/rental-webhooks/internal/auth"
	"github.com/josh-kwaku/rental-webhooks/internal/logging"
)

type sweepingDeduplicator interface {
	Sweep(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int64, error)
	LastSweep() time.Time
}

// AdminHandler exposes operator actions on the dedup state.
type AdminHandler struct {
	dedup sweepingDeduplicator
}

func NewAdminHandler(dedup sweepingDeduplicator) *AdminHandler {
	return &AdminHandler{dedup: dedup}
}

type SweepResponse struct {
	Removed         int64   `json:"removed"`
	ProcessedEvents int64   `json:"processedEvents"`
	LastCleanup     *string `json:"lastCleanup"`
}

func (h *AdminHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logging.FromContext(ctx)

	removed, err := h.dedup.Sweep(ctx)
	if err != nil {
		log.Error("manual dedup sweep failed", "error", err)
		RespondAppError(w, ErrInternalError, "")
		return
	}

	count, err := h.dedup.Count(ctx)
	if err != nil {
		log.Error("failed to count processed events", "error", err)
		RespondAppError(w, ErrInternalError, "")
		return
	}

	subject, _ := auth.SubjectFromContext(ctx)
	log.Info("manual dedup sweep", "removed", removed, "requested_by", subject)

	RespondJSON(w, http.StatusOK, SweepResponse{
		Removed:         removed,
		ProcessedEvents: count,
		LastCleanup:     formatTime(h.dedup.LastSweep()),
	})
}
