package gps

import "math"

// WGS-84 ellipsoid parameters
const (
	semiMajorAxis = 6378137.0       // meters
	eccentricity  = 0.0818191908426 // first eccentricity
	eccentricity2 = eccentricity * eccentricity

	earthRadius = 6371000 // mean radius in meters, used for great-circle distances

	geodeticTolerance     = 1e-3
	maxGeodeticIterations = 100
)

// ToCartesian converts geodetic latitude and longitude in degrees and altitude
// in meters to ECEF coordinates
func ToCartesian(lat, lon, alt float64) CartesianPoint {
	latRad := lat * math.Pi / 180
	lonRad := lon * math.Pi / 180

	sinLat := math.Sin(latRad)
	n := primeVerticalRadius(sinLat)

	return CartesianPoint{
		X: (n + alt) * math.Cos(latRad) * math.Cos(lonRad),
		Y: (n + alt) * math.Cos(latRad) * math.Sin(lonRad),
		Z: ((1-eccentricity2)*n + alt) * sinLat,
	}
}

// ToGeodetic converts ECEF coordinates back to latitude and longitude in
// degrees and altitude in meters. Points within a millimeter of the Earth's
// center map to (0, 0, -6378137).
func ToGeodetic(x, y, z float64) GeoPoint {
	if math.Sqrt(x*x+y*y+z*z) < geodeticTolerance {
		return GeoPoint{Latitude: 0, Longitude: 0, Altitude: -semiMajorAxis}
	}

	rho2 := x*x + y*y
	dz := eccentricity2 * z

	var zdz, nh, n float64
	for i := 0; i < maxGeodeticIterations; i++ {
		zdz = z + dz
		nh = math.Sqrt(rho2 + zdz*zdz)
		sinLat := zdz / nh
		n = primeVerticalRadius(sinLat)
		next := n * eccentricity2 * sinLat
		if math.Abs(dz-next) < geodeticTolerance {
			break
		}
		dz = next
	}

	return GeoPoint{
		Latitude:  math.Atan2(zdz, math.Sqrt(rho2)) * 180 / math.Pi,
		Longitude: math.Atan2(y, x) * 180 / math.Pi,
		Altitude:  nh - n,
	}
}

func primeVerticalRadius(sinLat float64) float64 {
	return semiMajorAxis / math.Sqrt(1-eccentricity2*sinLat*sinLat)
}

// GreatCircleDistance calculates the distance in meters between two points using the Haversine formula
func GreatCircleDistance(from, to LatLon) float64 {
	lat1Rad := from.Lat * math.Pi / 180
	lat2Rad := to.Lat * math.Pi / 180
	deltaLat := (to.Lat - from.Lat) * math.Pi / 180
	deltaLon := (to.Lon - from.Lon) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// Bearing returns the initial great circle bearing from one point to another
// in degrees, normalized to [0, 360)
func Bearing(from, to LatLon) float64 {
	lat1Rad := from.Lat * math.Pi / 180
	lat2Rad := to.Lat * math.Pi / 180
	deltaLonRad := (to.Lon - from.Lon) * math.Pi / 180

	y := math.Sin(deltaLonRad) * math.Cos(lat2Rad)
	x := math.Cos(lat1Rad)*math.Sin(lat2Rad) - math.Sin(lat1Rad)*math.Cos(lat2Rad)*math.Cos(deltaLonRad)

	bearing := math.Atan2(y, x) * 180 / math.Pi
	if bearing < 0 {
		bearing += 360
	}
	return bearing
}
