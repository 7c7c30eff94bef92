package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"

	"github.com/fakhrymubarak/weather-forecast-redis/internal/model"
)

var (
	errMissingForecastURL = errors.New("points response has no properties.forecast")
	errInvalidDocument    = errors.New("forecast response is not a JSON document")
)

const geoJSON = "application/geo+json"

// WeatherGovClient talks to api.weather.gov. It serves both the grid point
// lookup and the forecast retrieval; each stage has its own breaker.
type WeatherGovClient struct {
	baseURL  string
	points   *upstream
	forecast *upstream
}

func NewWeatherGovClient(baseURL string, opts Options) *WeatherGovClient {
	return &WeatherGovClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		points:   newUpstream(model.StageGridPoint, opts),
		forecast: newUpstream(model.StageForecast, opts),
	}
}

// ResolveGrid looks up the forecast resource of the grid cell containing coord.
// The coordinate text is substituted as-is; weather.gov decides whether it is valid.
func (c *WeatherGovClient) ResolveGrid(ctx context.Context, coord model.Coordinate) (model.GridLocator, error) {
	target := c.baseURL + "/points/" + url.PathEscape(coord.Lat) + "," + url.PathEscape(coord.Lon)
	res, err := c.points.get(ctx, target, geoJSON)
	if err != nil {
		return "", err
	}

	var points model.PointsResponse
	if err := json.Unmarshal(res.body, &points); err != nil {
		return "", model.NewUpstreamUnavailable(model.StageGridPoint, res.status, err)
	}
	if points.Properties.Forecast == "" {
		return "", model.NewUpstreamUnavailable(model.StageGridPoint, res.status, errMissingForecastURL)
	}
	return model.GridLocator(points.Properties.Forecast), nil
}

// FetchForecast retrieves the document behind locator and returns it unmodified.
func (c *WeatherGovClient) FetchForecast(ctx context.Context, locator model.GridLocator) (model.ForecastPayload, error) {
	res, err := c.forecast.get(ctx, string(locator), geoJSON)
	if err != nil {
		return nil, err
	}
	if !json.Valid(res.body) {
		return nil, model.NewUpstreamUnavailable(model.StageForecast, res.status, errInvalidDocument)
	}
	return model.ForecastPayload(res.body), nil
}
