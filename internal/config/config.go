package config

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var once sync.Once
var logger *zap.SugaredLogger
var loggerOnce sync.Once

// Cache drivers accepted by cache.driver.
const (
	CacheDriverRedis  = "redis"
	CacheDriverMemory = "memory"
)

// BreakerSettings configures the per-stage circuit breaker of the upstream clients.
type BreakerSettings struct {
	Enabled     bool
	MaxFailures uint32
	OpenTimeout time.Duration
}

// isTestRun returns true if the current process is a Go test binary.
func isTestRun() bool {
	return flag.Lookup("test.v") != nil || filepath.Ext(os.Args[0]) == ".test"
}

func initConfig() {
	once.Do(func() {
		_ = godotenv.Load()

		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		viper.AutomaticEnv()

		root, err := getProjectRoot()
		if err != nil {
			GetLogger().Errorw("Error finding project root", "error", err)
			return
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
		viper.AddConfigPath(root)
		if err = viper.ReadInConfig(); err != nil {
			GetLogger().Errorw("Error reading config file", "error", err)
		}

		if isTestRun() {
			viper.SetConfigName("config_test")
			if err = viper.MergeInConfig(); err != nil {
				GetLogger().Errorw("Error merging test config file", "error", err)
			}
		}
	})
}

func getProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

func getString(key, def string) string {
	initConfig()
	if v := viper.GetString(key); v != "" {
		return v
	}
	return def
}

// getDuration parses key as a duration, falling back to def when unset or invalid.
func getDuration(key string, def time.Duration) time.Duration {
	initConfig()
	durStr := viper.GetString(key)
	if durStr == "" {
		return def
	}
	dur, err := time.ParseDuration(durStr)
	if err != nil || dur <= 0 {
		return def
	}
	return dur
}

func GetRedisAddr() string {
	return getString("redis.addr", "localhost:6379")
}

func GetRedisDB() int {
	initConfig()
	return viper.GetInt("redis.db")
}

// GetCacheDriver returns "redis" or "memory". Unknown values fall back to redis.
func GetCacheDriver() string {
	driver := strings.ToLower(getString("cache.driver", CacheDriverRedis))
	if driver != CacheDriverMemory {
		return CacheDriverRedis
	}
	return driver
}

// GetCacheExpiration returns the forecast TTL. Defaults to 10m if not set or invalid.
func GetCacheExpiration() time.Duration {
	return getDuration("cache.expiration", 10*time.Minute)
}

func GetCacheKeyPrefix() string {
	return getString("cache.key_prefix", "weather:")
}

// GetCacheJanitorInterval is the sweep interval of the in-memory cache driver.
func GetCacheJanitorInterval() time.Duration {
	return getDuration("cache.janitor_interval", time.Minute)
}

func GetGeocoderURL() string {
	return getString("geocoder.api_url", "https://nominatim.openstreetmap.org")
}

func GetWeatherGovURL() string {
	return getString("weathergov.api_url", "https://api.weather.gov")
}

// GetHTTPTimeout bounds every outbound call. Defaults to 10s.
func GetHTTPTimeout() time.Duration {
	return getDuration("http.timeout", 10*time.Second)
}

// GetUserAgent is the client identifier sent to the upstream services.
func GetUserAgent() string {
	return getString("http.user_agent", "weather-cli-app")
}

func GetBreakerSettings() BreakerSettings {
	initConfig()
	s := BreakerSettings{
		Enabled:     viper.GetBool("breaker.enabled"),
		MaxFailures: viper.GetUint32("breaker.max_failures"),
		OpenTimeout: getDuration("breaker.open_timeout", 30*time.Second),
	}
	if s.MaxFailures == 0 {
		s.MaxFailures = 5
	}
	return s
}

func GetServerPort() string {
	return getString("server.port", "8080")
}

// GetServerName identifies this instance in the root endpoint response.
func GetServerName() string {
	return getString("server.name", "UNKNOWN")
}

func GetServerTimeout(key string) time.Duration {
	return getDuration("server."+key, 15*time.Second)
}

// ReloadConfigForTest resets the config singleton and reloads Viper config. Use only in tests.
func ReloadConfigForTest() {
	once = sync.Once{}
	initConfig()
}

func GetLogger() *zap.SugaredLogger {
	loggerOnce.Do(func() {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
		logger = l.Sugar()
	})
	return logger
}

// GetRateLimiterCleanupTimeout returns the rate limiter cleanup timeout as a time.Duration.
// Defaults to 3m if not set or invalid.
func GetRateLimiterCleanupTimeout() time.Duration {
	return getDuration("rate_limiter.cleanup_timeout", 3*time.Minute)
}

// GetGlobalRateLimiterConfig returns the per-minute rate and burst for the global rate limiter.
func GetGlobalRateLimiterConfig() (rate float64, burst int) {
	initConfig()
	rate = viper.GetFloat64("rate_limiter.global.rate")
	if rate == 0 {
		rate = 10
	}
	burst = viper.GetInt("rate_limiter.global.burst")
	if burst == 0 {
		burst = 10
	}
	return
}

// GetParamRateLimiterConfig returns the per-minute rate and burst for the per-location rate limiter.
func GetParamRateLimiterConfig() (rate float64, burst int) {
	initConfig()
	rate = viper.GetFloat64("rate_limiter.param.rate")
	if rate == 0 {
		rate = 2
	}
	burst = viper.GetInt("rate_limiter.param.burst")
	if burst == 0 {
		burst = 2
	}
	return
}
