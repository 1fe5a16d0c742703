package http

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type FetchFunc[T any] func(ctx context.Context) (T, error)

const (
	refreshFetchTimeout = 15 * time.Second
	cacheSetTimeout     = 5 * time.Second
)

// ttlWithJitter spreads expiry by up to ±15s so keys written together do not
// all expire together.
func ttlWithJitter(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return ttl
	}
	return ttl + time.Duration(rand.Intn(30)-15)*time.Second
}

// FindAndCache implements read-through caching with singleflight and
// refresh-ahead: a hit is served immediately and refreshed in the
// background, a miss fetches once per key and caches asynchronously.
func FindAndCache[T any](
	ctx context.Context,
	c Cacher,
	sf *singleflight.Group,
	key string,
	ttl time.Duration,
	logger *zap.Logger,
	fn FetchFunc[T],
) (T, error) {
	var zero T
	if logger == nil {
		logger = zap.NewNop()
	}

	var cached T
	err := c.Get(ctx, key, &cached)
	switch {
	case err == nil:
		logger.Debug("cache hit", zap.String("key", key))
		refreshInBackground(c, sf, key, ttl, logger, fn)
		return cached, nil

	case errors.Is(err, redis.Nil):
		logger.Debug("cache miss", zap.String("key", key))

	default:
		logger.Warn("cache get error (treating as miss)", zap.String("key", key), zap.Error(err))
	}

	v, err, shared := sf.Do(key, func() (any, error) {
		value, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		go storeAsync(c, key, value, ttl, logger)
		return value, nil
	})
	if err != nil {
		return zero, err
	}

	value, ok := v.(T)
	if !ok {
		logger.Error("singleflight type mismatch", zap.String("key", key))
		return zero, fmt.Errorf("type mismatch for key %q", key)
	}

	if shared {
		logger.Debug("singleflight shared result", zap.String("key", key))
	}
	return value, nil
}

func refreshInBackground[T any](
	c Cacher,
	sf *singleflight.Group,
	key string,
	ttl time.Duration,
	logger *zap.Logger,
	fn FetchFunc[T],
) {
	go func() {
		time.Sleep(time.Duration(rand.Intn(1000)) * time.Millisecond)

		_, _, _ = sf.Do(key+":refresh", func() (any, error) {
			ctx, cancel := context.WithTimeout(context.Background(), refreshFetchTimeout)
			defer cancel()

			value, err := fn(ctx)
			if err != nil {
				logger.Warn("background refresh failed", zap.String("key", key), zap.Error(err))
				return nil, err
			}
			storeAsync(c, key, value, ttl, logger)
			return value, nil
		})
	}()
}

func storeAsync(c Cacher, key string, value any, ttl time.Duration, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), cacheSetTimeout)
	defer cancel()

	if err := c.Set(ctx, key, value, ttlWithJitter(ttl)); err != nil {
		logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
		return
	}
	logger.Debug("cache updated", zap.String("key", key))
}
