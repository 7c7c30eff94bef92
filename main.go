package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fakhrymubarak/weather-forecast-redis/internal/config"
	"github.com/fakhrymubarak/weather-forecast-redis/internal/handler"
	"github.com/fakhrymubarak/weather-forecast-redis/internal/middleware"
	"github.com/fakhrymubarak/weather-forecast-redis/internal/service"
	"go.uber.org/zap"
)

func newRateLimiter() *middleware.RateLimiter {
	globalRate, globalBurst := config.GetGlobalRateLimiterConfig()
	paramRate, paramBurst := config.GetParamRateLimiterConfig()
	return middleware.NewRateLimiter(middleware.RateLimitConfig{
		GlobalPerMinute: globalRate,
		GlobalBurst:     globalBurst,
		ParamPerMinute:  paramRate,
		ParamBurst:      paramBurst,
		IdleTimeout:     config.GetRateLimiterCleanupTimeout(),
	})
}

// newRouter registers the forecast endpoint behind the request ID and rate
// limit middleware, and the health endpoints without them.
func newRouter(svc service.ForecastServiceInterface, limiter *middleware.RateLimiter, serverName string, logger *zap.SugaredLogger) http.Handler {
	forecast := handler.NewForecastHandler(svc, logger)
	health := handler.NewHealthHandler(serverName, svc, logger)

	mux := http.NewServeMux()
	mux.Handle("/weather", middleware.RequestIDMiddleware(limiter.Middleware(http.HandlerFunc(forecast.HandleForecast))))
	mux.HandleFunc("/health", health.HandleHealth)
	mux.HandleFunc("/ready", health.HandleReady)
	mux.HandleFunc("/", health.HandleRoot)
	return mux
}

func main() {
	logger := config.GetLogger()
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := service.NewDefaultForecastService(ctx)
	limiter := newRateLimiter()
	limiter.StartCleanup(ctx)

	port := config.GetServerPort()
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           newRouter(svc, limiter, config.GetServerName(), logger),
		ReadHeaderTimeout: config.GetServerTimeout("read_header_timeout"),
		ReadTimeout:       config.GetServerTimeout("read_timeout"),
		WriteTimeout:      config.GetServerTimeout("write_timeout"),
		IdleTimeout:       config.GetServerTimeout("idle_timeout"),
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Infow("Weather forecast server running", "port", port, "cache_driver", config.GetCacheDriver())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		logger.Errorw("server failed", "error", err)
		os.Exit(1)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetServerTimeout("shutdown_timeout"))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("error during shutdown", "error", err)
	}
	logger.Infow("shutdown complete")
}
