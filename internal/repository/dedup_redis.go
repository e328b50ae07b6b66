package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/josh-kwaku/rental-webhooks/internal/domain"
)

const DefaultRedisDedupKey = "webhooks:dedup"

// RedisDedupStore keeps every identity hash as a member of one sorted set,
// scored by its first-seen time in unix milliseconds.
type RedisDedupStore struct {
	client redis.UniversalClient
	key    string
}

func NewRedisDedupStore(client redis.UniversalClient, key string) *RedisDedupStore {
	if key == "" {
		key = DefaultRedisDedupKey
	}
	return &RedisDedupStore{client: client, key: key}
}

func (s *RedisDedupStore) Get(ctx context.Context, hash string) (*domain.DedupRecord, error) {
	score, err := s.client.ZScore(ctx, s.key, hash).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &domain.DedupRecord{
		IdentityHash: hash,
		FirstSeenAt:  time.UnixMilli(int64(score)).UTC(),
	}, nil
}

func (s *RedisDedupStore) Put(ctx context.Context, rec domain.DedupRecord) error {
	err := s.client.ZAdd(ctx, s.key, redis.Z{
		Score:  float64(rec.FirstSeenAt.UnixMilli()),
		Member: rec.IdentityHash,
	}).Err()
	if err != nil {
		return fmt.Errorf("Put: %w", err)
	}
	return nil
}

func (s *RedisDedupStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	upper := "(" + strconv.FormatInt(cutoff.UnixMilli(), 10)
	n, err := s.client.ZRemRangeByScore(ctx, s.key, "-inf", upper).Result()
	if err != nil {
		return 0, fmt.Errorf("DeleteOlderThan: %w", err)
	}
	return n, nil
}

func (s *RedisDedupStore) Count(ctx context.Context) (int64, error) {
	n, err := s.client.ZCard(ctx, s.key).Result()
	if err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return n, nil
}

func (s *RedisDedupStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("Ping: %w", err)
	}
	return nil
}
