package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"

	"github.com/fakhrymubarak/weather-forecast-redis/internal/model"
)

var errMissingCoordinate = errors.New("best match has no coordinate")

// NominatimGeocoder resolves place names through the OpenStreetMap Nominatim search API.
type NominatimGeocoder struct {
	baseURL  string
	upstream *upstream
}

func NewNominatimGeocoder(baseURL string, opts Options) *NominatimGeocoder {
	return &NominatimGeocoder{
		baseURL:  strings.TrimRight(baseURL, "/"),
		upstream: newUpstream(model.StageGeocode, opts),
	}
}

// Geocode returns the coordinate of the best match for location. Only the first
// candidate is requested and used, even when several rank equally.
func (g *NominatimGeocoder) Geocode(ctx context.Context, location string) (model.Coordinate, error) {
	if strings.TrimSpace(location) == "" {
		return model.Coordinate{}, model.NewInvalidInput(model.StageGeocode, "empty location")
	}

	query := url.Values{}
	query.Set("q", location)
	query.Set("format", "json")
	query.Set("limit", "1")

	res, err := g.upstream.get(ctx, g.baseURL+"/search?"+query.Encode(), "application/json")
	if err != nil {
		return model.Coordinate{}, err
	}

	var places []model.NominatimPlace
	if err := json.Unmarshal(res.body, &places); err != nil {
		return model.Coordinate{}, model.NewUpstreamUnavailable(model.StageGeocode, res.status, err)
	}
	if len(places) == 0 {
		return model.Coordinate{}, model.NewNotFound(model.StageGeocode)
	}

	best := places[0]
	if best.Lat == "" || best.Lon == "" {
		return model.Coordinate{}, model.NewUpstreamUnavailable(model.StageGeocode, res.status, errMissingCoordinate)
	}
	return model.Coordinate{Lat: best.Lat, Lon: best.Lon}, nil
}
