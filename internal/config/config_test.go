package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetRedisAddr(t *testing.T) {
	// Test with the environment variable set
	t.Setenv("REDIS_ADDR", "redis.internal:6380")
	assert.Equal(t, "redis.internal:6380", GetRedisAddr())

	// Test with environment variable not set (should return config value)
	os.Unsetenv("REDIS_ADDR")
	assert.Equal(t, "localhost:6379", GetRedisAddr())
}

func TestGetRedisDB(t *testing.T) {
	assert.Equal(t, 0, GetRedisDB())
}

func TestGetCacheExpiration(t *testing.T) {
	assert.Equal(t, 600*time.Second, GetCacheExpiration())
}

func TestGetCacheExpiration_InvalidFallsBack(t *testing.T) {
	t.Setenv("CACHE_EXPIRATION", "not-a-duration")
	assert.Equal(t, 10*time.Minute, GetCacheExpiration())
}

func TestGetCacheKeyPrefix(t *testing.T) {
	assert.Equal(t, "weather:", GetCacheKeyPrefix())
}

func TestGetCacheDriver(t *testing.T) {
	// config_test.yaml switches the driver to memory
	assert.Equal(t, CacheDriverMemory, GetCacheDriver())

	t.Setenv("CACHE_DRIVER", "memcached")
	assert.Equal(t, CacheDriverRedis, GetCacheDriver())
}

func TestGetUpstreamURLs(t *testing.T) {
	assert.Equal(t, "https://nominatim.openstreetmap.org", GetGeocoderURL())
	assert.Equal(t, "https://api.weather.gov", GetWeatherGovURL())
}

func TestGetHTTPTimeout(t *testing.T) {
	assert.Equal(t, 2*time.Second, GetHTTPTimeout())
}

func TestGetUserAgent(t *testing.T) {
	assert.Equal(t, "weather-cli-app", GetUserAgent())
}

func TestGetBreakerSettings(t *testing.T) {
	s := GetBreakerSettings()
	assert.False(t, s.Enabled)
	assert.Equal(t, uint32(5), s.MaxFailures)
	assert.Equal(t, 30*time.Second, s.OpenTimeout)
}

func TestGetServerPort(t *testing.T) {
	assert.Equal(t, "8080", GetServerPort())
}

func TestGetServerName(t *testing.T) {
	assert.Equal(t, "weather-test", GetServerName())

	t.Setenv("SERVER_NAME", "weather-7")
	assert.Equal(t, "weather-7", GetServerName())
}

func TestGetServerTimeout(t *testing.T) {
	assert.Equal(t, 15*time.Second, GetServerTimeout("read_header_timeout"))
	assert.Equal(t, 30*time.Second, GetServerTimeout("write_timeout"))
	assert.Equal(t, 15*time.Second, GetServerTimeout("missing_timeout"))
}

func TestGetRateLimiterConfig(t *testing.T) {
	rate, burst := GetGlobalRateLimiterConfig()
	assert.Equal(t, 10.0, rate)
	assert.Equal(t, 10, burst)

	rate, burst = GetParamRateLimiterConfig()
	assert.Equal(t, 2.0, rate)
	assert.Equal(t, 2, burst)

	assert.Equal(t, 3*time.Minute, GetRateLimiterCleanupTimeout())
}

func TestReloadConfigForTest(t *testing.T) {
	// Should not panic or error
	ReloadConfigForTest()
	assert.Equal(t, "weather:", GetCacheKeyPrefix())
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger())
	assert.Same(t, GetLogger(), GetLogger())
}

func TestGetProjectRoot(t *testing.T) {
	root, err := getProjectRoot()
	assert.NoError(t, err)
	assert.FileExists(t, root+"/config.yaml")
}
