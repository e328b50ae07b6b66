package service

import (
	"context"
	"log/slog"
	"time"
)

type sweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

// Sweeper evicts expired dedup records on a fixed interval.
type Sweeper struct {
	dedup    sweeper
	logger   *slog.Logger
	interval time.Duration
}

func NewSweeper(dedup sweeper, logger *slog.Logger, interval time.Duration) *Sweeper {
	return &Sweeper{dedup: dedup, logger: logger, interval: interval}
}

func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("dedup sweeper started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("dedup sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.dedup.Sweep(ctx); err != nil {
				s.logger.Error("scheduled dedup sweep failed", "error", err)
			}
		}
	}
}
