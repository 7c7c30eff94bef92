package model

import (
	"encoding/json"
	"strings"

	"golang.org/x/text/cases"
)

// NormalizeLocation trims surrounding whitespace and case-folds the rest, so
// " Boston " and "BOSTON" name the same place everywhere a location is keyed.
func NormalizeLocation(location string) string {
	return cases.Fold().String(strings.TrimSpace(location))
}

// Coordinate is a latitude/longitude pair exactly as the geocoder returned it.
// The values are never parsed, only substituted into the grid point request.
type Coordinate struct {
	Lat string
	Lon string
}

func (c Coordinate) String() string {
	return c.Lat + "," + c.Lon
}

// GridLocator is the forecast resource URL produced by the grid point lookup.
type GridLocator string

// ForecastPayload is the forecast document as served by the upstream, byte for byte.
type ForecastPayload []byte

// MarshalJSON embeds the payload as raw JSON instead of base64.
func (p ForecastPayload) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("null"), nil
	}
	return json.RawMessage(p).MarshalJSON()
}

// Origin tells whether a payload was served from the cache or freshly fetched.
type Origin int

const (
	OriginFresh Origin = iota
	OriginCache
)

func (o Origin) String() string {
	if o == OriginCache {
		return "cache"
	}
	return "api"
}

// Label is the bracketed prefix printed by the CLI.
func (o Origin) Label() string {
	if o == OriginCache {
		return "[Cache]"
	}
	return "[API]"
}
