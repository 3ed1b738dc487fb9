package redisstore

import (
	"bytes"
	"context"
	"fmt"

	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/config"
	apierrors "github.com/itsatony/w4b_v3/server/sensorbridge/internal/errors"
	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/repository"
	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/repository/files"
	"github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"
)

// FallbackRepo appends JSON payloads to a Redis list, one element per payload
type FallbackRepo struct {
	client *redis.Client
	key    string
}

var _ repository.FallbackRepository = (*FallbackRepo)(nil)

// NewFallbackRepository creates a Redis-backed fallback store
func NewFallbackRepository(cfg config.RedisConfig) *FallbackRepo {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,

		// Failures are reported to the caller, never retried.
		MaxRetries: -1,
	})
	return &FallbackRepo{client: client, key: cfg.Key}
}

// Append pushes payload, compacted to one line, onto the end of the list
func (r *FallbackRepo) Append(ctx context.Context, payload []byte) error {
	line, err := files.EncodeLine(payload)
	if err != nil {
		return err
	}
	line = bytes.TrimSuffix(line, []byte("\n"))

	if err := r.client.RPush(ctx, r.key, line).Err(); err != nil {
		return apierrors.NewIOError("failed to append to redis fallback", err)
	}
	nuts.L.Debugf("[RedisFallbackRepo] Appended %d bytes to %s", len(line), r.key)
	return nil
}

// Close closes the Redis client
func (r *FallbackRepo) Close() error {
	return r.client.Close()
}
