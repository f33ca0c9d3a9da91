package gps

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// metersPerSecondToKnots converts ground speed for NMEA output
const metersPerSecondToKnots = 1.94384

// DefaultSatellites is the satellite count reported in GGA sentences
const DefaultSatellites = 8

// Fix is one receiver position report, the unit of NMEA output
type Fix struct {
	Time       time.Time
	Latitude   float64 // degrees
	Longitude  float64 // degrees
	Altitude   float64 // meters
	Speed      float64 // knots
	Course     float64 // degrees from true north
	Satellites int
}

// calculateChecksum calculates the NMEA checksum for a sentence
func calculateChecksum(sentence string) string {
	var checksum byte
	for i := 1; i < len(sentence); i++ { // Skip the '$' character
		checksum ^= sentence[i]
	}
	return fmt.Sprintf("%02X", checksum)
}

// formatNMEA formats a complete NMEA sentence with checksum
func formatNMEA(sentence string) string {
	checksum := calculateChecksum(sentence)
	return fmt.Sprintf("%s*%s\r\n", sentence, checksum)
}

// nmeaLatitude renders latitude as DDMM.MMMM,H
func nmeaLatitude(lat float64) string {
	deg, minutes := degreesMinutes(lat)
	hem := "N"
	if lat < 0 {
		hem = "S"
	}
	return fmt.Sprintf("%02d%07.4f,%s", deg, minutes, hem)
}

// nmeaLongitude renders longitude as DDDMM.MMMM,H
func nmeaLongitude(lon float64) string {
	deg, minutes := degreesMinutes(lon)
	hem := "E"
	if lon < 0 {
		hem = "W"
	}
	return fmt.Sprintf("%03d%07.4f,%s", deg, minutes, hem)
}

// degreesMinutes splits an angle into whole degrees and minutes rounded
// to four decimals, carrying into the degrees when minutes reach 60
func degreesMinutes(angle float64) (int, float64) {
	abs := math.Abs(angle)
	deg := int(abs)
	minutes := math.Round((abs-float64(deg))*60*1e4) / 1e4
	if minutes >= 60 {
		deg++
		minutes = 0
	}
	return deg, minutes
}

// GGA returns the fix data sentence
func (f Fix) GGA() string {
	sentence := fmt.Sprintf("$GPGGA,%s,%s,%s,1,%02d,1.2,%.1f,M,0.0,M,,",
		f.Time.UTC().Format("150405"),
		nmeaLatitude(f.Latitude), nmeaLongitude(f.Longitude),
		f.Satellites, f.Altitude)
	return formatNMEA(sentence)
}

// RMC returns the recommended minimum sentence
func (f Fix) RMC() string {
	utc := f.Time.UTC()
	sentence := fmt.Sprintf("$GPRMC,%s,A,%s,%s,%.1f,%.1f,%s,,,A",
		utc.Format("150405"),
		nmeaLatitude(f.Latitude), nmeaLongitude(f.Longitude),
		f.Speed, f.Course,
		utc.Format("020106"))
	return formatNMEA(sentence)
}

// VTG returns the track made good and ground speed sentence
func (f Fix) VTG() string {
	// 1 knot = 1.852 km/h
	sentence := fmt.Sprintf("$GPVTG,%.1f,T,,M,%.1f,N,%.1f,K,A", f.Course, f.Speed, f.Speed*1.852)
	return formatNMEA(sentence)
}

// GLL returns the geographic position sentence, time to hundredths of a second
func (f Fix) GLL() string {
	utc := f.Time.UTC()
	timeStr := fmt.Sprintf("%02d%02d%02d.%02d",
		utc.Hour(), utc.Minute(), utc.Second(), utc.Nanosecond()/10000000) // HHMMSS.SS

	sentence := fmt.Sprintf("$GPGLL,%s,%s,%s,A,A",
		nmeaLatitude(f.Latitude), nmeaLongitude(f.Longitude), timeStr)
	return formatNMEA(sentence)
}

// Sentences returns the sentences emitted for every fix, in output order
func (f Fix) Sentences() string {
	var b strings.Builder
	b.WriteString(f.GGA())
	b.WriteString(f.RMC())
	b.WriteString(f.VTG())
	b.WriteString(f.GLL())
	return b.String()
}

// Fixes turns the trajectory into receiver fixes starting at start. Samples
// of an upsampled trajectory are one sample period apart; raw route points
// are one second apart. Speed and course point towards the next sample, and
// the last fix repeats them.
func (t *Trajectory) Fixes(start time.Time) []Fix {
	period := 1.0
	if t.timing != nil {
		period = 1 / t.timing.Frequency
	}
	offsets := make([]float64, len(t.Points))
	for i := range offsets {
		offsets[i] = float64(i) * period
	}
	return buildFixes(t.Points, offsets, start)
}

// FixesFromMotion turns motion file samples into receiver fixes, converting
// each ECEF sample back to geodetic coordinates
func FixesFromMotion(samples []MotionSample, start time.Time) []Fix {
	points := make([]Location, len(samples))
	offsets := make([]float64, len(samples))
	for i, s := range samples {
		points[i] = LocationFromCartesian(s.X, s.Y, s.Z)
		offsets[i] = s.Time
	}
	return buildFixes(points, offsets, start)
}

func buildFixes(points []Location, offsets []float64, start time.Time) []Fix {
	fixes := make([]Fix, len(points))
	var speed, course float64
	for i, p := range points {
		if i < len(points)-1 {
			next := points[i+1]
			if dt := offsets[i+1] - offsets[i]; dt > 0 {
				speed = GreatCircleDistance(p.LatLon(), next.LatLon()) / dt * metersPerSecondToKnots
			}
			if p.LatLon() != next.LatLon() {
				course = Bearing(p.LatLon(), next.LatLon())
			}
		}
		fixes[i] = Fix{
			Time:       start.Add(time.Duration(offsets[i] * float64(time.Second))),
			Latitude:   p.Latitude(),
			Longitude:  p.Longitude(),
			Altitude:   p.Altitude(),
			Speed:      speed,
			Course:     course,
			Satellites: DefaultSatellites,
		}
	}
	return fixes
}
