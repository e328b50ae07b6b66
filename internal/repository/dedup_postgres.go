package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/josh-kwaku/rental-webhooks/internal/domain"
)

const dedupRecordColumns = `identity_hash, event_id, event_type, first_seen_at`

// PostgresDedupStore shares dedup records between instances through the
// processed_webhook_events table.
type PostgresDedupStore struct {
	db *sql.DB
}

func NewPostgresDedupStore(db *sql.DB) *PostgresDedupStore {
	return &PostgresDedupStore{db: db}
}

func (r *PostgresDedupStore) Get(ctx context.Context, hash string) (*domain.DedupRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+dedupRecordColumns+` FROM processed_webhook_events WHERE identity_hash = $1`,
		hash,
	)
	rec, err := scanDedupRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return rec, nil
}

func (r *PostgresDedupStore) Put(ctx context.Context, rec domain.DedupRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO processed_webhook_events (`+dedupRecordColumns+`)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (identity_hash) DO UPDATE SET
			event_id = EXCLUDED.event_id,
			event_type = EXCLUDED.event_type,
			first_seen_at = EXCLUDED.first_seen_at`,
		rec.IdentityHash, rec.EventID, rec.EventType, rec.FirstSeenAt,
	)
	if err != nil {
		return fmt.Errorf("Put: %w", err)
	}
	return nil
}

func (r *PostgresDedupStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM processed_webhook_events WHERE first_seen_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("DeleteOlderThan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("DeleteOlderThan: rows affected: %w", err)
	}
	return n, nil
}

func (r *PostgresDedupStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM processed_webhook_events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return n, nil
}

func (r *PostgresDedupStore) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("Ping: %w", err)
	}
	return nil
}

func scanDedupRecord(s scanner) (*domain.DedupRecord, error) {
	var rec domain.DedupRecord
	if err := s.Scan(&rec.IdentityHash, &rec.EventID, &rec.EventType, &rec.FirstSeenAt); err != nil {
		return nil, err
	}
	return &rec, nil
}
