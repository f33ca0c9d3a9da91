package gps

import "errors"

// Common errors returned while building and sampling trajectories
var (
	ErrNoRoute              = errors.New("no route found between start and end")
	ErrNoTrackData          = errors.New("no track data found")
	ErrUnsupportedTrackFile = errors.New("track file must have a .gpx or .xml extension")
	ErrElevationMismatch    = errors.New("elevation count does not match waypoint count")
	ErrInvalidTrajectory    = errors.New("trajectory needs at least one point and one distance per segment")
	ErrEmptyTrajectory      = errors.New("trajectory has no points")
	ErrAlreadyTimed         = errors.New("trajectory has already been upsampled")
	ErrInvalidSpeed         = errors.New("speed must be positive")
	ErrInvalidFrequency     = errors.New("frequency must be positive")
	ErrInvalidMotionRow     = errors.New("motion file row must have four columns")
)
