package service

import (
	"context"
	"time"

	"github.com/fakhrymubarak/weather-forecast-redis/internal/model"
	"github.com/fakhrymubarak/weather-forecast-redis/internal/repository"
	"go.uber.org/zap"
)

// Geocoder resolves a place name to a coordinate.
type Geocoder interface {
	Geocode(ctx context.Context, location string) (model.Coordinate, error)
}

// GridPointResolver resolves a coordinate to the locator of its forecast resource.
type GridPointResolver interface {
	ResolveGrid(ctx context.Context, coord model.Coordinate) (model.GridLocator, error)
}

// ForecastFetcher retrieves the forecast document behind a locator.
type ForecastFetcher interface {
	FetchForecast(ctx context.Context, locator model.GridLocator) (model.ForecastPayload, error)
}

// ForecastServiceInterface is what the transports depend on.
type ForecastServiceInterface interface {
	Resolve(ctx context.Context, location string) (model.ForecastPayload, model.Origin, error)
	Ready(ctx context.Context) error
}

// Config holds the caching policy of the service.
type Config struct {
	TTL       time.Duration
	KeyPrefix string
}

// DefaultConfig caches forecasts for ten minutes under "weather:<location>".
func DefaultConfig() Config {
	return Config{TTL: 600 * time.Second, KeyPrefix: "weather:"}
}

// ForecastService answers forecast queries cache-aside: cache first, then
// geocode, grid point and forecast in sequence.
type ForecastService struct {
	cfg      Config
	cache    repository.ForecastCache
	geocoder Geocoder
	grid     GridPointResolver
	fetcher  ForecastFetcher
	logger   *zap.SugaredLogger
}

func NewForecastService(
	cfg Config,
	cache repository.ForecastCache,
	geocoder Geocoder,
	grid GridPointResolver,
	fetcher ForecastFetcher,
	logger *zap.SugaredLogger,
) *ForecastService {
	defaults := DefaultConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = defaults.TTL
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = defaults.KeyPrefix
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &ForecastService{
		cfg:      cfg,
		cache:    cache,
		geocoder: geocoder,
		grid:     grid,
		fetcher:  fetcher,
		logger:   logger,
	}
}

// NormalizeLocation is the form a location takes in the cache key.
func NormalizeLocation(location string) string {
	return model.NormalizeLocation(location)
}

// CacheKey is the cache key of an already normalized location.
func (s *ForecastService) CacheKey(normalized string) string {
	return s.cfg.KeyPrefix + normalized
}

// Resolve returns the forecast for location and whether it came from the cache.
// Stage errors are returned unchanged and nothing is cached for them. A failed
// cache read counts as a miss; a failed cache write is logged and ignored.
func (s *ForecastService) Resolve(ctx context.Context, location string) (model.ForecastPayload, model.Origin, error) {
	normalized := NormalizeLocation(location)
	if normalized == "" {
		return nil, model.OriginFresh, model.NewInvalidInput(model.StageNormalize, "empty location")
	}
	key := s.CacheKey(normalized)

	cached, found, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warnw("cache read failed, treating as miss", "key", key, "error", err)
	} else if found {
		s.logger.Debugw("cache hit", "key", key)
		return cached, model.OriginCache, nil
	}

	coord, err := s.geocoder.Geocode(ctx, normalized)
	if err != nil {
		return nil, model.OriginFresh, err
	}
	locator, err := s.grid.ResolveGrid(ctx, coord)
	if err != nil {
		return nil, model.OriginFresh, err
	}
	payload, err := s.fetcher.FetchForecast(ctx, locator)
	if err != nil {
		return nil, model.OriginFresh, err
	}

	if err := s.cache.Set(ctx, key, payload, s.cfg.TTL); err != nil {
		s.logger.Warnw("cache write failed", "key", key, "error", err)
	}
	s.logger.Infow("forecast resolved", "key", key, "coordinate", coord.String(), "locator", string(locator), "bytes", len(payload))
	return payload, model.OriginFresh, nil
}

// Ready reports whether the cache store answers.
func (s *ForecastService) Ready(ctx context.Context) error {
	return s.cache.Ping(ctx)
}

var _ ForecastServiceInterface = (*ForecastService)(nil)
