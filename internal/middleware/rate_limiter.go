package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fakhrymubarak/weather-forecast-redis/internal/model"
	"golang.org/x/time/rate"
)

// the visitor holds the rate limiter and last seen time for a client (or client + location).
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitConfig sets the per-minute rate and burst of both limiter tiers.
type RateLimitConfig struct {
	GlobalPerMinute float64
	GlobalBurst     int
	ParamPerMinute  float64
	ParamBurst      int
	// ParamKey is the query parameter limited per value (default: "location").
	ParamKey string
	// IdleTimeout is how long an unseen visitor is kept before cleanup.
	IdleTimeout time.Duration
}

// RateLimiter enforces a per-IP limit and a tighter per-IP-per-location limit on
// incoming requests. Outbound calls to the upstream services are not limited.
type RateLimiter struct {
	cfg RateLimitConfig

	muGlobal sync.Mutex
	// globalVisitors maps IP addresses to their visitor for global rate limiting.
	globalVisitors map[string]*visitor
	muParam        sync.Mutex
	// paramVisitors maps ip -> normalized param value -> visitor.
	paramVisitors map[string]map[string]*visitor
}

func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.ParamKey == "" {
		cfg.ParamKey = "location"
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 3 * time.Minute
	}
	return &RateLimiter{
		cfg:            cfg,
		globalVisitors: make(map[string]*visitor),
		paramVisitors:  make(map[string]map[string]*visitor),
	}
}

func perMinute(n float64) rate.Limit {
	return rate.Limit(n / 60.0)
}

// getGlobalLimiter returns the rate limiter for the given IP address, creating one if it does not exist.
func (rl *RateLimiter) getGlobalLimiter(ip string) *rate.Limiter {
	rl.muGlobal.Lock()
	defer rl.muGlobal.Unlock()
	v, exists := rl.globalVisitors[ip]
	if !exists {
		limiter := rate.NewLimiter(perMinute(rl.cfg.GlobalPerMinute), rl.cfg.GlobalBurst)
		rl.globalVisitors[ip] = &visitor{limiter, time.Now()}
		return limiter
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// getParamLimiter returns the rate limiter for the given IP address and parameter value, creating one if it does not exist.
func (rl *RateLimiter) getParamLimiter(ip, param string) *rate.Limiter {
	rl.muParam.Lock()
	defer rl.muParam.Unlock()
	if _, ok := rl.paramVisitors[ip]; !ok {
		rl.paramVisitors[ip] = make(map[string]*visitor)
	}
	v, exists := rl.paramVisitors[ip][param]
	if !exists {
		limiter := rate.NewLimiter(perMinute(rl.cfg.ParamPerMinute), rl.cfg.ParamBurst)
		rl.paramVisitors[ip][param] = &visitor{limiter, time.Now()}
		return limiter
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// Cleanup removes visitors not seen for longer than the idle timeout.
func (rl *RateLimiter) Cleanup() {
	rl.muGlobal.Lock()
	for ip, v := range rl.globalVisitors {
		if time.Since(v.lastSeen) > rl.cfg.IdleTimeout {
			delete(rl.globalVisitors, ip)
		}
	}
	rl.muGlobal.Unlock()

	rl.muParam.Lock()
	for ip, paramMap := range rl.paramVisitors {
		for param, v := range paramMap {
			if time.Since(v.lastSeen) > rl.cfg.IdleTimeout {
				delete(paramMap, param)
			}
		}
		if len(paramMap) == 0 {
			delete(rl.paramVisitors, ip)
		}
	}
	rl.muParam.Unlock()
}

// StartCleanup runs Cleanup every minute until ctx is done.
func (rl *RateLimiter) StartCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.Cleanup()
			}
		}
	}()
}

// ResetVisitors clears all visitor states for both global and per-param limiters. Used primarily for testing.
func (rl *RateLimiter) ResetVisitors() {
	rl.muGlobal.Lock()
	rl.globalVisitors = make(map[string]*visitor)
	rl.muGlobal.Unlock()
	rl.muParam.Lock()
	rl.paramVisitors = make(map[string]map[string]*visitor)
	rl.muParam.Unlock()
}

func (rl *RateLimiter) visitorCount() (global, param int) {
	rl.muGlobal.Lock()
	global = len(rl.globalVisitors)
	rl.muGlobal.Unlock()
	rl.muParam.Lock()
	for _, m := range rl.paramVisitors {
		param += len(m)
	}
	rl.muParam.Unlock()
	return
}

// getIP extracts the client's IP address from the HTTP request, considering X-Forwarded-For headers.
func getIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr // fallback
	}
	return ip
}

// getParam returns the limited query parameter, normalized the way cache keys are,
// so " Boston" and "boston" share a bucket.
func (rl *RateLimiter) getParam(r *http.Request) string {
	param := model.NormalizeLocation(r.URL.Query().Get(rl.cfg.ParamKey))
	if param == "" {
		// If param is missing, treat as a single bucket
		param = "__none__"
	}
	return param
}

func tooManyRequests(w http.ResponseWriter, errMsg, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(model.Response{
		Error:   &errMsg,
		Message: message,
	})
}

// Middleware enforces global and per-parameter rate limiting.
// If the rate limit is exceeded, it responds with a 429 status and a JSON error message.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := getIP(r)
		if !rl.getGlobalLimiter(ip).Allow() {
			tooManyRequests(w,
				fmt.Sprintf("Rate limit exceeded: max %g requests per minute per user/IP", rl.cfg.GlobalPerMinute),
				"Too Many Requests (global limit)")
			return
		}
		if !rl.getParamLimiter(ip, rl.getParam(r)).Allow() {
			tooManyRequests(w,
				fmt.Sprintf("Rate limit exceeded: max %g requests per minute per %s per user/IP", rl.cfg.ParamPerMinute, rl.cfg.ParamKey),
				"Too Many Requests (per-param limit)")
			return
		}
		next.ServeHTTP(w, r)
	})
}
