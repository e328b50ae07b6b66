package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/rental-webhooks/internal/domain"
)

func newMockStore(t *testing.T) (*PostgresDedupStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresDedupStore(db), mock
}

func TestPostgresDedupStore_Get(t *testing.T) {
	ctx := context.Background()
	seen := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	query := regexp.QuoteMeta(`SELECT identity_hash, event_id, event_type, first_seen_at FROM processed_webhook_events WHERE identity_hash = $1`)

	t.Run("found", func(t *testing.T) {
		store, mock := newMockStore(t)
		rows := sqlmock.NewRows([]string{"identity_hash", "event_id", "event_type", "first_seen_at"}).
			AddRow("h1", "e1", "reservation.created", seen)
		mock.ExpectQuery(query).WithArgs("h1").WillReturnRows(rows)

		rec, err := store.Get(ctx, "h1")
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, "e1", rec.EventID)
		assert.Equal(t, domain.EventTypeReservationCreated, rec.EventType)
		assert.Equal(t, seen, rec.FirstSeenAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(query).WithArgs("h2").WillReturnError(sql.ErrNoRows)

		rec, err := store.Get(ctx, "h2")
		require.NoError(t, err)
		assert.Nil(t, rec)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(query).WithArgs("h3").WillReturnError(errors.New("connection refused"))

		_, err := store.Get(ctx, "h3")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestPostgresDedupStore_Put(t *testing.T) {
	store, mock := newMockStore(t)
	seen := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO processed_webhook_events")).
		WithArgs("h1", "e1", domain.EventTypePaymentCompleted, seen).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Put(context.Background(), domain.DedupRecord{
		IdentityHash: "h1",
		EventID:      "e1",
		EventType:    domain.EventTypePaymentCompleted,
		FirstSeenAt:  seen,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDedupStore_DeleteOlderThan(t *testing.T) {
	store, mock := newMockStore(t)
	cutoff := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM processed_webhook_events WHERE first_seen_at < $1")).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 7))

	n, err := store.DeleteOlderThan(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDedupStore_Count(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM processed_webhook_events")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(12)))

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
