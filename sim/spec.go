package sim

import (
	"fmt"
	"strconv"
)

// Kind selects how the simulator is told where the receiver is
type Kind int

const (
	// Static broadcasts a fixed latitude/longitude
	Static Kind = iota
	// Dynamic replays a motion file
	Dynamic
)

func (k Kind) String() string {
	switch k {
	case Static:
		return "StaticSimulation"
	case Dynamic:
		return "DynamicSimulation"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Spec describes a single simulator run. Static specs use Latitude and
// Longitude, Dynamic specs use FilePath. A nil RunDuration or Gain leaves
// the simulator default in place.
type Spec struct {
	Kind        Kind     `json:"kind"`
	Latitude    float64  `json:"latitude,omitempty"`
	Longitude   float64  `json:"longitude,omitempty"`
	FilePath    string   `json:"file_path,omitempty"`
	RunDuration *int     `json:"run_duration,omitempty"` // seconds
	Gain        *float64 `json:"gain,omitempty"`
}

// Option sets an optional simulator parameter
type Option func(*Spec)

// WithRunDuration limits the simulator run to the given number of seconds
func WithRunDuration(seconds int) Option {
	return func(s *Spec) {
		s.RunDuration = &seconds
	}
}

// WithGain sets the transmit gain of the radio
func WithGain(gain float64) Option {
	return func(s *Spec) {
		s.Gain = &gain
	}
}

// StaticSpec creates a spec for a fixed location
func StaticSpec(lat, lon float64, opts ...Option) Spec {
	s := Spec{Kind: Static, Latitude: lat, Longitude: lon}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// DynamicSpec creates a spec replaying the motion file at path
func DynamicSpec(path string, opts ...Option) Spec {
	s := Spec{Kind: Dynamic, FilePath: path}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Validate checks if the spec is valid and returns an error if not
func (s Spec) Validate() error {
	switch s.Kind {
	case Static:
	case Dynamic:
		if s.FilePath == "" {
			return ErrMissingFilePath
		}
	default:
		return ErrUnknownKind
	}
	if s.RunDuration != nil && *s.RunDuration < 0 {
		return ErrInvalidRunDuration
	}
	return nil
}

// Args returns the simulator command line arguments. Unset or zero run
// duration and gain are left off so the simulator uses its defaults.
func (s Spec) Args() []string {
	args := []string{"-T", "now"}
	if s.RunDuration != nil && *s.RunDuration != 0 {
		args = append(args, "-d", strconv.Itoa(*s.RunDuration))
	}
	if s.Gain != nil && *s.Gain != 0 {
		args = append(args, "-a", formatFloat(*s.Gain))
	}
	switch s.Kind {
	case Static:
		args = append(args, "-l", formatFloat(s.Latitude)+","+formatFloat(s.Longitude))
	case Dynamic:
		args = append(args, "-u", s.FilePath)
	}
	return args
}

func (s Spec) String() string {
	var target string
	if s.Kind == Dynamic {
		target = "file_path=" + s.FilePath
	} else {
		target = "latitude=" + formatFloat(s.Latitude) + ", longitude=" + formatFloat(s.Longitude)
	}
	return fmt.Sprintf("%s(%s, run_duration=%s, gain=%s)", s.Kind, target, optionalInt(s.RunDuration), optionalFloat(s.Gain))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func optionalFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
