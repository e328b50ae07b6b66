package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/josh-kwaku/rental-webhooks/internal/config"
	"github.com/josh-kwaku/rental-webhooks/internal/repository"
	"github.com/josh-kwaku/rental-webhooks/internal/service"
	"github.com/josh-kwaku/rental-webhooks/migrations"
)

// openDedupStore returns the configured backend and a func releasing its
// connections.
func openDedupStore(ctx context.Context, cfg *config.Config) (service.DedupStore, func(), error) {
	switch cfg.DedupStore {
	case config.StorePostgres:
		db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
			MaxOpenConns:     cfg.DBMaxOpenConns,
			MaxIdleConns:     cfg.DBMaxIdleConns,
			ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
			ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("openDedupStore: %w", err)
		}
		if err := repository.Migrate(ctx, db, migrations.FS); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("openDedupStore: %w", err)
		}
		return repository.NewPostgresDedupStore(db), func() { db.Close() }, nil

	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("openDedupStore: redis ping: %w", err)
		}
		return repository.NewRedisDedupStore(client, cfg.RedisKey), func() { client.Close() }, nil

	default:
		slog.Warn("using in-memory dedup store, processed events are lost on restart")
		return repository.NewMemoryDedupStore(), func() {}, nil
	}
}
