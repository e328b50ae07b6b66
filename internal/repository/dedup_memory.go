package repository

import (
	"context"
	"sync"
	"time"

	"github.com/josh-kwaku/rental-webhooks/internal/domain"
)

// MemoryDedupStore keeps dedup records in process memory. Records do not
// survive a restart and are not shared between instances.
type MemoryDedupStore struct {
	mu      sync.RWMutex
	records map[string]domain.DedupRecord
}

func NewMemoryDedupStore() *MemoryDedupStore {
	return &MemoryDedupStore{records: make(map[string]domain.DedupRecord)}
}

func (s *MemoryDedupStore) Get(_ context.Context, hash string) (*domain.DedupRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[hash]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *MemoryDedupStore) Put(_ context.Context, rec domain.DedupRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[rec.IdentityHash] = rec
	return nil
}

func (s *MemoryDedupStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for hash, rec := range s.records {
		if rec.FirstSeenAt.Before(cutoff) {
			delete(s.records, hash)
			n++
		}
	}
	return n, nil
}

func (s *MemoryDedupStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.records)), nil
}

func (s *MemoryDedupStore) Ping(_ context.Context) error { return nil }
