package gps

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// RouteProvider supplies waypoints and elevations for a start/end pair.
// FetchRoute returns ErrNoRoute when there is no viable route.
type RouteProvider interface {
	FetchRoute(ctx context.Context, start, end LatLon) (Directions, error)
	FetchElevations(ctx context.Context, points []LatLon) ([]float64, error)
}

// ParseLatLon parses a string like "37.4178,-122.0860"
func ParseLatLon(input string) (LatLon, error) {
	parts := strings.Split(input, ",")
	if len(parts) != 2 {
		return LatLon{}, fmt.Errorf("invalid coordinate: %s", input)
	}

	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lon, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return LatLon{}, fmt.Errorf("invalid lat/lon: %s", input)
	}

	return LatLon{Lat: lat, Lon: lon}, nil
}

// String formats the pair the way routing services expect it
func (p LatLon) String() string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lon, 'f', -1, 64)
}
