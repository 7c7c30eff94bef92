package service

import (
	"context"

	"github.com/fakhrymubarak/weather-forecast-redis/internal/config"
	"github.com/fakhrymubarak/weather-forecast-redis/internal/provider"
	"github.com/fakhrymubarak/weather-forecast-redis/internal/redis"
	"github.com/fakhrymubarak/weather-forecast-redis/internal/repository"
)

// ConfigFromSettings reads the caching policy from the application config.
func ConfigFromSettings() Config {
	return Config{
		TTL:       config.GetCacheExpiration(),
		KeyPrefix: config.GetCacheKeyPrefix(),
	}
}

// NewCacheFromSettings returns the cache selected by cache.driver. The memory
// driver's janitor runs until ctx is done.
func NewCacheFromSettings(ctx context.Context) repository.ForecastCache {
	if config.GetCacheDriver() == config.CacheDriverMemory {
		cache := repository.NewMemoryForecastCache()
		cache.StartJanitor(ctx, config.GetCacheJanitorInterval())
		return cache
	}
	return repository.NewRedisForecastCache(redis.GetClient())
}

// NewDefaultForecastService wires the service from the application config:
// Nominatim for geocoding, weather.gov for grid points and forecasts.
func NewDefaultForecastService(ctx context.Context) *ForecastService {
	logger := config.GetLogger()
	opts := provider.Options{
		UserAgent: config.GetUserAgent(),
		Timeout:   config.GetHTTPTimeout(),
		Breaker:   config.GetBreakerSettings(),
		Logger:    logger,
	}
	weatherGov := provider.NewWeatherGovClient(config.GetWeatherGovURL(), opts)

	return NewForecastService(
		ConfigFromSettings(),
		NewCacheFromSettings(ctx),
		provider.NewNominatimGeocoder(config.GetGeocoderURL(), opts),
		weatherGov,
		weatherGov,
		logger,
	)
}
