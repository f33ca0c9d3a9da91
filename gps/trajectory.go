package gps

import (
	"context"
	"fmt"
)

// Timing is the sampling a trajectory was upsampled with
type Timing struct {
	Speed     float64 `json:"speed"`     // meters per second
	Frequency float64 `json:"frequency"` // samples per second
}

// Trajectory is an ordered list of locations with the separation between each
// consecutive pair. A trajectory without timing is a raw route; one with
// timing has been upsampled and each point is one sample.
type Trajectory struct {
	Points    []Location
	Distances []float64
	timing    *Timing
}

// NewTrajectory creates a raw trajectory. There must be exactly one distance
// per consecutive pair of points.
func NewTrajectory(points []Location, distances []float64) (*Trajectory, error) {
	if len(points) == 0 {
		return nil, ErrEmptyTrajectory
	}
	if len(distances) != len(points)-1 {
		return nil, fmt.Errorf("%w: %d points, %d distances", ErrInvalidTrajectory, len(points), len(distances))
	}
	return &Trajectory{Points: points, Distances: distances}, nil
}

// FromStartEnd asks the provider for a route and its elevations and builds a raw trajectory
func FromStartEnd(ctx context.Context, provider RouteProvider, start, end LatLon) (*Trajectory, error) {
	directions, err := provider.FetchRoute(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch route: %w", err)
	}
	if len(directions.Waypoints) == 0 {
		return nil, ErrNoRoute
	}

	elevations, err := provider.FetchElevations(ctx, directions.Waypoints)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch elevations: %w", err)
	}
	if len(elevations) != len(directions.Waypoints) {
		return nil, fmt.Errorf("%w: %d waypoints, %d elevations", ErrElevationMismatch, len(directions.Waypoints), len(elevations))
	}

	points := make([]Location, len(directions.Waypoints))
	for i, wp := range directions.Waypoints {
		points[i] = NewLocation(wp.Lat, wp.Lon, elevations[i])
	}
	return NewTrajectory(points, directions.Distances)
}

// FromTrack builds a raw trajectory from recorded track points, measuring the
// distance between samples along the great circle
func FromTrack(track []TrackPoint) (*Trajectory, error) {
	if len(track) == 0 {
		return nil, ErrNoTrackData
	}

	points := make([]Location, len(track))
	distances := make([]float64, 0, len(track)-1)
	for i, tp := range track {
		points[i] = NewLocation(tp.Lat, tp.Lon, tp.Elevation)
		if i > 0 {
			prev := track[i-1]
			distances = append(distances, GreatCircleDistance(
				LatLon{Lat: prev.Lat, Lon: prev.Lon},
				LatLon{Lat: tp.Lat, Lon: tp.Lon},
			))
		}
	}
	return NewTrajectory(points, distances)
}

// FromGPXFile reads a GPX file and builds a raw trajectory from its first track segment
func FromGPXFile(path string) (*Trajectory, error) {
	track, err := ReadGPXFile(path)
	if err != nil {
		return nil, err
	}
	return FromTrack(track)
}

// FromStartEndTimed builds a route and upsamples it in one step
func FromStartEndTimed(ctx context.Context, provider RouteProvider, start, end LatLon, cfg RouteConfig) (*Trajectory, error) {
	raw, err := FromStartEnd(ctx, provider, start, end)
	if err != nil {
		return nil, err
	}
	return raw.Upsample(cfg.Speed, cfg.Frequency)
}

// FromGPXFileTimed reads a GPX file and upsamples it in one step
func FromGPXFileTimed(path string, cfg RouteConfig) (*Trajectory, error) {
	raw, err := FromGPXFile(path)
	if err != nil {
		return nil, err
	}
	return raw.Upsample(cfg.Speed, cfg.Frequency)
}

// Len returns the number of points
func (t *Trajectory) Len() int {
	return len(t.Points)
}

func (t *Trajectory) Start() Location {
	return t.Points[0]
}

func (t *Trajectory) End() Location {
	return t.Points[len(t.Points)-1]
}

// Timing returns the sampling of an upsampled trajectory
func (t *Trajectory) Timing() (Timing, bool) {
	if t.timing == nil {
		return Timing{}, false
	}
	return *t.timing, true
}

// IsTimed reports whether the trajectory has been upsampled
func (t *Trajectory) IsTimed() bool {
	return t.timing != nil
}

// Length returns the total distance covered in meters
func (t *Trajectory) Length() float64 {
	total := 0.0
	for _, d := range t.Distances {
		total += d
	}
	return total
}

// Duration returns the playback time in seconds of an upsampled trajectory, or zero for a raw one
func (t *Trajectory) Duration() float64 {
	if t.timing == nil || len(t.Points) == 0 {
		return 0
	}
	return float64(len(t.Points)-1) / t.timing.Frequency
}
