// Package cache keeps fetch-live responses in Redis for a short time so
// repeated searches do not hit the job boards again.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/starford/careerlift/internal/backend"
	"github.com/starford/careerlift/internal/checksum"
	"github.com/starford/careerlift/internal/jobs"
)

const keyPrefix = "careerlift:fetch:"

// Backend wraps a jobs.Backend and serves FetchLive from Redis when it can.
// Every other call goes straight to the wrapped backend.
type Backend struct {
	jobs.Backend
	rdb    redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

// Wrap returns inner with a Redis response cache in front of FetchLive.
func Wrap(inner jobs.Backend, rdb redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{Backend: inner, rdb: rdb, ttl: ttl, logger: logger}
}

// Key is the Redis key of one fetch request.
func Key(req backend.FetchRequest) string {
	return keyPrefix + req.Source + ":" + checksum.Key(req.Keyword, req.Location) + ":" + strconv.Itoa(req.Limit)
}

// FetchLive returns a cached response unless req.Fresh is set. Fresh
// requests still overwrite the cached entry. Redis failures fall through to
// the backend.
func (b *Backend) FetchLive(ctx context.Context, req backend.FetchRequest) (*backend.FetchResult, error) {
	key := Key(req)
	if !req.Fresh {
		if res, ok := b.get(ctx, key); ok {
			return res, nil
		}
	}

	res, err := b.Backend.FetchLive(ctx, req)
	if err != nil {
		return nil, err
	}
	b.set(ctx, key, res)
	return res, nil
}

func (b *Backend) get(ctx context.Context, key string) (*backend.FetchResult, bool) {
	raw, err := b.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		b.logger.Warn("fetch cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		return nil, false
	}
	var res backend.FetchResult
	if err := json.Unmarshal(raw, &res); err != nil {
		b.logger.Warn("fetch cache entry corrupt", slog.String("key", key), slog.String("error", err.Error()))
		return nil, false
	}
	b.logger.Debug("fetch cache hit", slog.String("key", key))
	return &res, true
}

func (b *Backend) set(ctx context.Context, key string, res *backend.FetchResult) {
	raw, err := json.Marshal(res)
	if err != nil {
		b.logger.Warn("fetch cache encode failed", slog.String("key", key), slog.String("error", err.Error()))
		return
	}
	if err := b.rdb.Set(ctx, key, raw, b.ttl).Err(); err != nil {
		b.logger.Warn("fetch cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

// Ping checks the Redis connection.
func (b *Backend) Ping(ctx context.Context) error {
	if err := b.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache: ping: %w", err)
	}
	return nil
}
