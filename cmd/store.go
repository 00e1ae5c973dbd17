package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/sports-meet/config"
	"github.com/Dosada05/sports-meet/db"
	"github.com/Dosada05/sports-meet/storage"
	"github.com/redis/go-redis/v9"
)

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.DocumentStore, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		logger.Warn("using in-memory document store, data is lost on exit")
		return storage.NewMemoryStore(), nil

	case config.BackendPostgres:
		dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx, dbConn); err != nil {
			_ = dbConn.Close()
			return nil, err
		}
		logger.Info("database connection established")
		return storage.NewPostgresStore(dbConn), nil

	case config.BackendS3:
		store, err := storage.NewS3Store(ctx, storage.S3StoreConfig{
			Bucket:          cfg.S3.Bucket,
			Prefix:          cfg.S3.Prefix,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("S3 document store initialized", slog.String("bucket", cfg.S3.Bucket))
		return store, nil

	case config.BackendRedis:
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to ping redis: %w", err)
		}
		logger.Info("redis connection established", slog.String("addr", opts.Addr))
		return storage.NewRedisStore(client, cfg.Redis.Prefix), nil

	default:
		store, err := storage.NewFSStore(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		logger.Info("filesystem document store initialized", slog.String("dir", cfg.DataDir))
		return store, nil
	}
}
