package gps

import (
	"math"
	"testing"
)

func TestToCartesian(t *testing.T) {
	tests := []struct {
		name          string
		lat, lon, alt float64
		want          CartesianPoint
	}{
		{"mountain view", 37.4178134, -122.086011, 3.45, CartesianPoint{-2694180.667, -4297222.330, 3854325.576}},
		{"below ellipsoid", 37.4211366, -122.0936967, -10.0, CartesianPoint{-2694632.326, -4296661.975, 3854610.329}},
		{"shanghai", 31.230441, 121.467685, 4.5, CartesianPoint{-2849585.509, 4655993.331, 3287769.376}},
		{"equator prime meridian", 0, 0, 0, CartesianPoint{semiMajorAxis, 0, 0}},
	}

	const tolerance = 5e-3
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToCartesian(tt.lat, tt.lon, tt.alt)
			if math.Abs(got.X-tt.want.X) > tolerance ||
				math.Abs(got.Y-tt.want.Y) > tolerance ||
				math.Abs(got.Z-tt.want.Z) > tolerance {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestToGeodeticRoundTrip(t *testing.T) {
	tests := []struct {
		lat, lon, alt float64
	}{
		{37.4178134, -122.086011, 3.45},
		{37.4211366, -122.0936967, -10.0},
		{31.230441, 121.467685, 4.5},
		{-33.8688, 151.2093, 58},
		{0, 0, 0},
		{89.9, 45, 1000},
		{-75.25, -179.5, 250},
	}

	for _, tt := range tests {
		c := ToCartesian(tt.lat, tt.lon, tt.alt)
		got := ToGeodetic(c.X, c.Y, c.Z)

		if math.Abs(got.Latitude-tt.lat) > 1e-5 {
			t.Errorf("Latitude: expected %f, got %f", tt.lat, got.Latitude)
		}
		if math.Abs(got.Longitude-tt.lon) > 1e-5 {
			t.Errorf("Longitude: expected %f, got %f", tt.lon, got.Longitude)
		}
		if math.Abs(got.Altitude-tt.alt) > 1e-3 {
			t.Errorf("Altitude: expected %f, got %f", tt.alt, got.Altitude)
		}
	}
}

func TestToGeodeticOrigin(t *testing.T) {
	for _, p := range []CartesianPoint{{0, 0, 0}, {1e-4, 0, -1e-4}} {
		got := ToGeodetic(p.X, p.Y, p.Z)
		want := GeoPoint{Latitude: 0, Longitude: 0, Altitude: -6378137.0}
		if got != want {
			t.Errorf("Expected %+v for %+v, got %+v", want, p, got)
		}
	}
}

func TestGreatCircleDistance(t *testing.T) {
	sf := LatLon{Lat: 37.7749, Lon: -122.4194}
	if d := GreatCircleDistance(sf, sf); d != 0 {
		t.Errorf("Expected 0 for identical points, got %f", d)
	}

	// One degree of latitude on a 6371 km sphere
	d := GreatCircleDistance(LatLon{Lat: 0, Lon: 0}, LatLon{Lat: 1, Lon: 0})
	want := 6371000 * math.Pi / 180
	if math.Abs(d-want) > 1e-6 {
		t.Errorf("Expected %f, got %f", want, d)
	}

	// Symmetric
	la := LatLon{Lat: 34.0522, Lon: -118.2437}
	if math.Abs(GreatCircleDistance(sf, la)-GreatCircleDistance(la, sf)) > 1e-9 {
		t.Error("Distance should be symmetric")
	}
}

func TestNewLocation(t *testing.T) {
	loc := NewLocation(37.4178134, -122.086011, 3.45)

	if loc.Latitude() != 37.4178134 || loc.Longitude() != -122.086011 || loc.Altitude() != 3.45 {
		t.Errorf("Unexpected geodetic values %+v", loc.Geodetic())
	}
	if loc.Cartesian() != ToCartesian(37.4178134, -122.086011, 3.45) {
		t.Errorf("Cartesian value should match ToCartesian, got %+v", loc.Cartesian())
	}
	if loc.LatLon() != (LatLon{Lat: 37.4178134, Lon: -122.086011}) {
		t.Errorf("Unexpected LatLon %+v", loc.LatLon())
	}
}
