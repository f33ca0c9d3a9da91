package sim

import "errors"

// Common errors returned by simulations and simulation sets
var (
	ErrEmptySet           = errors.New("simulation set has no simulations")
	ErrNotStarted         = errors.New("simulation has not been started")
	ErrMissingFilePath    = errors.New("dynamic simulation needs a motion file path")
	ErrInvalidRunDuration = errors.New("run duration must be non-negative")
	ErrUnknownKind        = errors.New("unknown simulation kind")
	ErrNotTerminal        = errors.New("input is not a terminal")
)
