package gps

// Transport speeds in meters per second
const (
	WalkingSpeed = 1.4
	RunningSpeed = 2.5
	BikingSpeed  = 7.0
)

// MotionSampleRate is the number of rows per second the simulator reads from a motion file
const MotionSampleRate = 10

// RouteConfig holds the sampling options used when turning a route into a motion file
type RouteConfig struct {
	Speed     float64 // meters per second
	Frequency float64 // samples per second
}

// DefaultRouteConfig returns a walking pace sampled at the simulator rate
func DefaultRouteConfig() RouteConfig {
	return RouteConfig{
		Speed:     WalkingSpeed,
		Frequency: MotionSampleRate,
	}
}

// Validate checks if the configuration is valid and returns an error if not
func (c *RouteConfig) Validate() error {
	if c.Speed <= 0 {
		return ErrInvalidSpeed
	}
	if c.Frequency <= 0 {
		return ErrInvalidFrequency
	}
	return nil
}
