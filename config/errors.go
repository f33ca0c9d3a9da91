package config

import "errors"

// Common errors returned while loading a session configuration
var (
	ErrMissingSimulatorPath = errors.New("simulator path is required")
	ErrNoSimulations        = errors.New("at least one simulation is required")
	ErrInvalidFrequency     = errors.New("frequency must be positive")
	ErrInvalidSpeed         = errors.New("speed must be positive")
	ErrInvalidBaudRate      = errors.New("baud rate must be positive")
	ErrInvalidSimulation    = errors.New("invalid simulation")
	ErrNoRouteProvider      = errors.New("a maps API key is needed to generate routes from start and end points")
	ErrMotionFileMissing    = errors.New("motion file does not exist")
)
