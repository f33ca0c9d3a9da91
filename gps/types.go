package gps

import "time"

// GeoPoint is a geodetic position on the WGS-84 ellipsoid
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`  // degrees
	Longitude float64 `json:"longitude"` // degrees
	Altitude  float64 `json:"altitude"`  // meters
}

// CartesianPoint is an Earth-Centered Earth-Fixed position in meters
type CartesianPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// LatLon is the two dimensional pair exchanged with routing services
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lng"`
}

// Location pairs a geodetic point with its ECEF equivalent. The conversion
// runs once, in NewLocation, and a Location cannot be changed afterwards.
type Location struct {
	geo  GeoPoint
	ecef CartesianPoint
}

// NewLocation builds a Location from latitude and longitude in degrees and altitude in meters
func NewLocation(lat, lon, alt float64) Location {
	return Location{
		geo:  GeoPoint{Latitude: lat, Longitude: lon, Altitude: alt},
		ecef: ToCartesian(lat, lon, alt),
	}
}

// LocationFromCartesian builds a Location from ECEF coordinates
func LocationFromCartesian(x, y, z float64) Location {
	return Location{
		geo:  ToGeodetic(x, y, z),
		ecef: CartesianPoint{X: x, Y: y, Z: z},
	}
}

func (l Location) Geodetic() GeoPoint        { return l.geo }
func (l Location) Cartesian() CartesianPoint { return l.ecef }
func (l Location) Latitude() float64         { return l.geo.Latitude }
func (l Location) Longitude() float64        { return l.geo.Longitude }
func (l Location) Altitude() float64         { return l.geo.Altitude }
func (l Location) LatLon() LatLon            { return LatLon{Lat: l.geo.Latitude, Lon: l.geo.Longitude} }

// TrackPoint represents a point in a GPS track
type TrackPoint struct {
	Lat       float64   `xml:"lat,attr"`
	Lon       float64   `xml:"lon,attr"`
	Elevation float64   `xml:"ele"`
	Time      time.Time `xml:"time"`
}

// Directions is what a routing service returns for a start/end pair
type Directions struct {
	Waypoints []LatLon  `json:"waypoints"`
	Distances []float64 `json:"distances"` // meters, one per step
	Durations []float64 `json:"durations"` // seconds, one per step
	Polyline  string    `json:"polyline"`
}

// MotionSample is one row of a motion file
type MotionSample struct {
	Time float64
	CartesianPoint
}
