package provider

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/fakhrymubarak/weather-forecast-redis/internal/config"
	"github.com/fakhrymubarak/weather-forecast-redis/internal/model"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	defaultUserAgent = "weather-cli-app"
	defaultTimeout   = 10 * time.Second
	maxBodyBytes     = 8 << 20
)

// errServerError marks 5xx and 429 responses as breaker failures.
var errServerError = errors.New("server error")

// Options configures the HTTP side of every stage client.
type Options struct {
	HTTPClient *http.Client
	// UserAgent identifies this client to the upstream services, as Nominatim's usage policy requires.
	UserAgent string
	// Timeout bounds a single call, including reading the body.
	Timeout time.Duration
	Breaker config.BreakerSettings
	Logger  *zap.SugaredLogger
}

func (o Options) withDefaults() Options {
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{}
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUserAgent
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop().Sugar()
	}
	return o
}

type httpResult struct {
	status int
	body   []byte
}

// upstream performs the GET requests of one stage.
type upstream struct {
	stage      model.Stage
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.SugaredLogger
}

func newUpstream(stage model.Stage, opts Options) *upstream {
	opts = opts.withDefaults()
	u := &upstream{
		stage:      stage,
		httpClient: opts.HTTPClient,
		userAgent:  opts.UserAgent,
		timeout:    opts.Timeout,
		logger:     opts.Logger,
	}
	if opts.Breaker.Enabled {
		maxFailures := opts.Breaker.MaxFailures
		u.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    string(stage),
			Timeout: opts.Breaker.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= maxFailures
			},
			// a caller giving up says nothing about the upstream's health
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				opts.Logger.Warnw("circuit breaker state changed", "stage", name, "from", from.String(), "to", to.String())
			},
		})
	}
	return u
}

// get fetches target and returns the body of a 2xx response. Everything else is
// an UpstreamUnavailable error for this stage; Status stays 0 when no response
// was read (transport error, timeout, open circuit).
func (u *upstream) get(ctx context.Context, target, accept string) (*httpResult, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	if err := ctx.Err(); err != nil {
		return nil, model.NewUpstreamUnavailable(u.stage, 0, err)
	}

	start := time.Now()
	res, err := u.execute(func() (*httpResult, error) {
		return u.do(ctx, target, accept)
	})
	if err != nil {
		u.logger.Warnw("upstream request failed", "stage", u.stage, "url", target, "duration", time.Since(start), "error", err)
		return nil, model.NewUpstreamUnavailable(u.stage, 0, err)
	}

	u.logger.Debugw("upstream request", "stage", u.stage, "url", target, "status", res.status, "duration", time.Since(start))
	if res.status < http.StatusOK || res.status >= http.StatusMultipleChoices {
		return nil, model.NewUpstreamUnavailable(u.stage, res.status, nil)
	}
	return res, nil
}

func (u *upstream) execute(fn func() (*httpResult, error)) (*httpResult, error) {
	if u.breaker == nil {
		return fn()
	}
	out, err := u.breaker.Execute(func() (interface{}, error) {
		res, err := fn()
		if err != nil {
			return nil, err
		}
		if res.status >= http.StatusInternalServerError || res.status == http.StatusTooManyRequests {
			return res, errServerError
		}
		return res, nil
	})
	res, _ := out.(*httpResult)
	if errors.Is(err, errServerError) {
		// counted by the breaker, reported to the caller through the status
		return res, nil
	}
	return res, err
}

func (u *upstream) do(ctx context.Context, target, accept string) (*httpResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", u.userAgent)
	req.Header.Set("Accept", accept)

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	return &httpResult{status: resp.StatusCode, body: body}, nil
}
