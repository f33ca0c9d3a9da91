package maps

import "errors"

var (
	ErrMissingAPIKey = errors.New("maps API key is required")
	ErrAPIStatus     = errors.New("maps API returned an error status")
)
