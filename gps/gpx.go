package gps

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// GPX represents the root GPX document structure
type GPX struct {
	XMLName xml.Name `xml:"gpx"`
	Version string   `xml:"version,attr"`
	Creator string   `xml:"creator,attr"`
	Xmlns   string   `xml:"xmlns,attr"`
	Track   Track    `xml:"trk"`
}

// Track represents a GPX track
type Track struct {
	Name         string       `xml:"name"`
	TrackSegment TrackSegment `xml:"trkseg"`
}

// TrackSegment represents a segment of a GPX track
type TrackSegment struct {
	TrackPoints []TrackPoint `xml:"trkpt"`
}

// gpxDocument is the decoding view of a GPX file. Elevation is optional on
// every sample, and a file may carry several tracks, segments and routes.
type gpxDocument struct {
	XMLName xml.Name   `xml:"gpx"`
	Tracks  []gpxTrack `xml:"trk"`
	Routes  []gpxRoute `xml:"rte"`
}

type gpxTrack struct {
	Name     string       `xml:"name"`
	Segments []gpxSegment `xml:"trkseg"`
}

type gpxSegment struct {
	Points []gpxPoint `xml:"trkpt"`
}

type gpxRoute struct {
	Name   string     `xml:"name"`
	Points []gpxPoint `xml:"rtept"`
}

type gpxPoint struct {
	Lat       float64   `xml:"lat,attr"`
	Lon       float64   `xml:"lon,attr"`
	Elevation *float64  `xml:"ele"`
	Time      time.Time `xml:"time"`
}

// GPXWriter handles writing GPS data to a GPX file
type GPXWriter struct {
	filename string
	gpx      *GPX
	file     *os.File
}

// NewGPXWriter creates a new GPX writer
func NewGPXWriter(filename string) (*GPXWriter, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create GPX file %s: %w", filename, err)
	}

	gpx := &GPX{
		Version: "1.1",
		Creator: "geobeam",
		Xmlns:   "http://www.topografix.com/GPX/1/1",
		Track: Track{
			Name: "geobeam trajectory",
			TrackSegment: TrackSegment{
				TrackPoints: []TrackPoint{},
			},
		},
	}

	writer := &GPXWriter{
		filename: filename,
		gpx:      gpx,
		file:     file,
	}

	return writer, nil
}

// AddTrackPoint adds a new track point to the GPX file
func (w *GPXWriter) AddTrackPoint(lat, lon, elevation float64, timestamp time.Time) {
	trackPoint := TrackPoint{
		Lat:       lat,
		Lon:       lon,
		Elevation: elevation,
		Time:      timestamp.UTC(),
	}

	w.gpx.Track.TrackSegment.TrackPoints = append(w.gpx.Track.TrackSegment.TrackPoints, trackPoint)
}

// WriteToFile writes the current GPX data to the file
func (w *GPXWriter) WriteToFile() error {
	// Seek to the beginning of the file
	_, err := w.file.Seek(0, 0)
	if err != nil {
		return fmt.Errorf("failed to seek to beginning of file: %w", err)
	}

	// Truncate the file to remove any existing content
	err = w.file.Truncate(0)
	if err != nil {
		return fmt.Errorf("failed to truncate file: %w", err)
	}

	// Write XML header
	_, err = w.file.WriteString(xml.Header)
	if err != nil {
		return fmt.Errorf("failed to write XML header: %w", err)
	}

	// Marshal and write the GPX data
	encoder := xml.NewEncoder(w.file)
	encoder.Indent("", "  ")
	err = encoder.Encode(w.gpx)
	if err != nil {
		return fmt.Errorf("failed to encode GPX data: %w", err)
	}

	// Flush to ensure data is written
	err = w.file.Sync()
	if err != nil {
		return fmt.Errorf("failed to sync file: %w", err)
	}

	return nil
}

// Close closes the GPX file
func (w *GPXWriter) Close() error {
	if w.file != nil {
		// Write final data before closing
		err := w.WriteToFile()
		if err != nil {
			w.file.Close()
			return err
		}
		return w.file.Close()
	}
	return nil
}

// GetTrackPointCount returns the number of track points currently stored
func (w *GPXWriter) GetTrackPointCount() int {
	return len(w.gpx.Track.TrackSegment.TrackPoints)
}

// ReadGPXFile reads the first track segment of a GPX file. Samples without an
// elevation take the altitude of the previous sample, or 0 for the first. If
// the file has no track, the first route is used instead.
func ReadGPXFile(filename string) ([]TrackPoint, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".gpx", ".xml":
	default:
		return nil, fmt.Errorf("%s: %w", filename, ErrUnsupportedTrackFile)
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open GPX file %s: %w", filename, err)
	}
	defer file.Close()

	var doc gpxDocument
	decoder := xml.NewDecoder(file)
	err = decoder.Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GPX file %s: %w", filename, err)
	}

	var samples []gpxPoint
	if len(doc.Tracks) > 0 && len(doc.Tracks[0].Segments) > 0 {
		samples = doc.Tracks[0].Segments[0].Points
	} else if len(doc.Tracks) == 0 && len(doc.Routes) > 0 {
		samples = doc.Routes[0].Points
	}

	if len(samples) == 0 {
		return nil, fmt.Errorf("%s: %w", filename, ErrNoTrackData)
	}

	points := make([]TrackPoint, len(samples))
	altitude := 0.0
	for i, p := range samples {
		if p.Elevation != nil {
			altitude = *p.Elevation
		}
		points[i] = TrackPoint{
			Lat:       p.Lat,
			Lon:       p.Lon,
			Elevation: altitude,
			Time:      p.Time,
		}
	}

	return points, nil
}

// WriteGPX exports the trajectory as a GPX track. Samples of an upsampled
// trajectory are stamped one sample period apart from start; raw route points
// all carry start. It returns the number of track points written.
func (t *Trajectory) WriteGPX(filename string, start time.Time) (int, error) {
	writer, err := NewGPXWriter(filename)
	if err != nil {
		return 0, err
	}

	var period time.Duration
	if t.timing != nil {
		period = time.Duration(float64(time.Second) / t.timing.Frequency)
	}
	for i, p := range t.Points {
		writer.AddTrackPoint(p.Latitude(), p.Longitude(), p.Altitude(), start.Add(time.Duration(i)*period))
	}

	count := writer.GetTrackPointCount()
	return count, writer.Close()
}
