package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/josh-kwaku/rental-webhooks/internal/domain"
)

const (
	DefaultRetention = 24 * time.Hour
	DefaultHighWater = 1000
)

type DedupStore interface {
	Get(ctx context.Context, hash string) (*domain.DedupRecord, error)
	Put(ctx context.Context, rec domain.DedupRecord) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	Count(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

type DeduplicatorOption func(*Deduplicator)

// WithSweepObserver is called with the number of records each sweep removed.
func WithSweepObserver(fn func(ctx context.Context, removed int64)) DeduplicatorOption {
	return func(d *Deduplicator) { d.onSweep = fn }
}

func WithClock(now func() time.Time) DeduplicatorOption {
	return func(d *Deduplicator) { d.now = now }
}

func WithRetention(retention time.Duration) DeduplicatorOption {
	return func(d *Deduplicator) {
		if retention > 0 {
			d.retention = retention
		}
	}
}

func WithHighWater(n int64) DeduplicatorOption {
	return func(d *Deduplicator) {
		if n > 0 {
			d.highWater = n
		}
	}
}

// Deduplicator tracks which logical events have already been dispatched.
// Identity is derived from the envelope only, so redeliveries whose data or
// metadata differ are still recognised.
type Deduplicator struct {
	store     DedupStore
	logger    *slog.Logger
	now       func() time.Time
	retention time.Duration
	highWater int64
	onSweep   func(ctx context.Context, removed int64)

	mu        sync.RWMutex
	lastSweep time.Time
}

func NewDeduplicator(store DedupStore, logger *slog.Logger, opts ...DeduplicatorOption) *Deduplicator {
	d := &Deduplicator{
		store:     store,
		logger:    logger,
		now:       time.Now,
		retention: DefaultRetention,
		highWater: DefaultHighWater,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ComputeIdentity hashes eventId|timestamp|eventType with SHA-256.
func ComputeIdentity(event domain.WebhookEvent) string {
	sum := sha256.Sum256([]byte(event.EventID + "|" + event.Timestamp + "|" + string(event.EventType)))
	return hex.EncodeToString(sum[:])
}

func (d *Deduplicator) IsDuplicate(ctx context.Context, hash string) (bool, error) {
	rec, err := d.store.Get(ctx, hash)
	if err != nil {
		return false, fmt.Errorf("IsDuplicate: %w", err)
	}
	if rec == nil {
		return false, nil
	}
	return !rec.FirstSeenAt.Before(d.cutoff()), nil
}

// Record marks hash as processed now. Crossing the high-water mark triggers
// an opportunistic sweep; a failed sweep is logged and does not fail Record.
func (d *Deduplicator) Record(ctx context.Context, event domain.WebhookEvent, hash string) error {
	rec := domain.DedupRecord{
		IdentityHash: hash,
		EventID:      event.EventID,
		EventType:    event.EventType,
		FirstSeenAt:  d.now().UTC(),
	}
	if err := d.store.Put(ctx, rec); err != nil {
		return fmt.Errorf("Record: %w", err)
	}

	n, err := d.store.Count(ctx)
	if err != nil {
		d.logger.Warn("dedup count failed", "error", err)
		return nil
	}
	if n > d.highWater {
		if _, err := d.Sweep(ctx); err != nil {
			d.logger.Warn("opportunistic dedup sweep failed", "error", err, "records", n)
		}
	}
	return nil
}

// Sweep removes records older than the retention window.
func (d *Deduplicator) Sweep(ctx context.Context) (int64, error) {
	removed, err := d.store.DeleteOlderThan(ctx, d.cutoff())
	if err != nil {
		return 0, fmt.Errorf("Sweep: %w", err)
	}

	d.mu.Lock()
	d.lastSweep = d.now().UTC()
	d.mu.Unlock()

	if d.onSweep != nil {
		d.onSweep(ctx, removed)
	}
	d.logger.Info("dedup sweep completed", "removed", removed)
	return removed, nil
}

func (d *Deduplicator) Count(ctx context.Context) (int64, error) {
	n, err := d.store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return n, nil
}

// LastSweep is the zero time until the first sweep runs.
func (d *Deduplicator) LastSweep() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lastSweep
}

func (d *Deduplicator) Ping(ctx context.Context) error {
	return d.store.Ping(ctx)
}

func (d *Deduplicator) cutoff() time.Time {
	return d.now().Add(-d.retention)
}
