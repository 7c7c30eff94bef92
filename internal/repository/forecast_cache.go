package repository

import (
	"context"
	"errors"
	"time"

	"github.com/fakhrymubarak/weather-forecast-redis/internal/model"
	redisv9 "github.com/redis/go-redis/v9"
)

// ForecastCache stores forecast payloads under their cache key with a TTL.
type ForecastCache interface {
	// Get returns found=false with a nil error on a miss or an expired entry.
	// A non-nil error means the store itself could not be read.
	Get(ctx context.Context, key string) (model.ForecastPayload, bool, error)
	// Set overwrites any entry for key and restarts its TTL.
	Set(ctx context.Context, key string, payload model.ForecastPayload, ttl time.Duration) error
	Ping(ctx context.Context) error
}

// redisClient is the part of the go-redis API the cache needs.
type redisClient interface {
	Get(ctx context.Context, key string) *redisv9.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redisv9.StatusCmd
	Ping(ctx context.Context) *redisv9.StatusCmd
}

// redisForecastCache implements ForecastCache on Redis. Expiry is left to Redis.
type redisForecastCache struct {
	redisClient redisClient
}

// NewRedisForecastCache wraps a long-lived Redis client.
func NewRedisForecastCache(client redisClient) ForecastCache {
	return &redisForecastCache{redisClient: client}
}

func (r *redisForecastCache) Get(ctx context.Context, key string) (model.ForecastPayload, bool, error) {
	val, err := r.redisClient.Get(ctx, key).Bytes()
	if errors.Is(err, redisv9.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, model.NewCacheUnavailable(err)
	}
	return model.ForecastPayload(val), true, nil
}

func (r *redisForecastCache) Set(ctx context.Context, key string, payload model.ForecastPayload, ttl time.Duration) error {
	if err := r.redisClient.Set(ctx, key, []byte(payload), ttl).Err(); err != nil {
		return model.NewCacheUnavailable(err)
	}
	return nil
}

func (r *redisForecastCache) Ping(ctx context.Context) error {
	if err := r.redisClient.Ping(ctx).Err(); err != nil {
		return model.NewCacheUnavailable(err)
	}
	return nil
}
