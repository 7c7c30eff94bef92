package redis

import (
	"sync"
	"time"

	"github.com/fakhrymubarak/weather-forecast-redis/internal/config"
	redisv9 "github.com/redis/go-redis/v9"
)

var (
	client *redisv9.Client
	once   sync.Once
)

// NewClient builds a Redis client for the given address and database.
func NewClient(addr string, db int) *redisv9.Client {
	return redisv9.NewClient(&redisv9.Options{
		Addr:         addr,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
}

// GetClient returns the process-wide client built from config. It is shared so
// connections are reused across resolutions.
func GetClient() *redisv9.Client {
	once.Do(func() {
		client = NewClient(config.GetRedisAddr(), config.GetRedisDB())
	})
	return client
}

// ResetClientForTest resets the Redis client singleton. Use only in tests.
func ResetClientForTest() {
	once = sync.Once{}
	client = nil
}
