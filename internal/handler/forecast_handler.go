package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fakhrymubarak/weather-forecast-redis/internal/middleware"
	"github.com/fakhrymubarak/weather-forecast-redis/internal/model"
	"github.com/fakhrymubarak/weather-forecast-redis/internal/service"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate = validator.New()

type forecastQuery struct {
	Location string `validate:"required,max=200"`
}

type ForecastHandler struct {
	ForecastService service.ForecastServiceInterface
	Logger          *zap.SugaredLogger
}

func NewForecastHandler(svc service.ForecastServiceInterface, logger *zap.SugaredLogger) *ForecastHandler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &ForecastHandler{
		ForecastService: svc,
		Logger:          logger,
	}
}

func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, statusCode int, errMsg string) {
	writeJSONResponse(w, statusCode, model.Response{
		Error:   &errMsg,
		Message: "Error",
	})
}

// HandleForecast serves GET /weather?location=<name>.
func (h *ForecastHandler) HandleForecast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	query := forecastQuery{Location: r.URL.Query().Get("location")}
	if err := validate.Struct(query); err != nil {
		writeError(w, http.StatusBadRequest, "Missing or invalid 'location' query parameter")
		return
	}

	payload, origin, err := h.ForecastService.Resolve(r.Context(), query.Location)
	if err != nil {
		status := statusForError(err)
		h.Logger.Warnw("forecast resolution failed",
			"location", query.Location,
			"stage", model.StageOf(err),
			"status", status,
			"request_id", middleware.RequestIDFromContext(r.Context()),
			"error", err,
		)
		writeError(w, status, err.Error())
		return
	}

	if origin == model.OriginCache {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	writeJSONResponse(w, http.StatusOK, model.Response{
		Data:    payload,
		Origin:  origin.String(),
		Message: "Success",
	})
}

// statusForError maps resolution failures onto HTTP status codes so callers can
// tell a missing place from a failing upstream.
func statusForError(err error) int {
	var re *model.ResolutionError
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &re) && re.Kind == model.KindUpstreamUnavailable:
		if re.Timeout() {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
