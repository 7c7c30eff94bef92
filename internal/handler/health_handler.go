package handler

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Pinger is anything whose readiness can be probed.
type Pinger interface {
	Ready(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness endpoints.
type HealthHandler struct {
	ServerName string
	Pinger     Pinger
	Logger     *zap.SugaredLogger
}

func NewHealthHandler(serverName string, pinger Pinger, logger *zap.SugaredLogger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &HealthHandler{ServerName: serverName, Pinger: pinger, Logger: logger}
}

// HandleRoot names the instance that answered, which is handy behind a load balancer.
func (h *HealthHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "Response from " + h.ServerName})
}

func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandler) HandleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.Pinger.Ready(ctx); err != nil {
		h.Logger.Warnw("readiness check failed", "error", err)
		writeJSONResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ready"})
}
