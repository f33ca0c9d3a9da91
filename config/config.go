// Package config loads geobeam session files and turns them into simulation specs.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/Bucknalla/geobeam/gps"
)

// EnvPrefix prefixes environment overrides, e.g. GEOBEAM_MAPS_API_KEY
const EnvPrefix = "GEOBEAM"

// Config is a simulation session
type Config struct {
	Simulator    SimulatorConfig    `mapstructure:"simulator"`
	LogDir       string             `mapstructure:"log_dir"`
	MotionDir    string             `mapstructure:"motion_dir"`
	DefaultSpeed float64            `mapstructure:"default_speed"` // meters per second
	Frequency    float64            `mapstructure:"frequency"`     // motion file samples per second
	Maps         MapsConfig         `mapstructure:"maps"`
	Commands     CommandsConfig     `mapstructure:"commands"`
	HTTP         HTTPConfig         `mapstructure:"http"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Simulations  []SimulationConfig `mapstructure:"simulations"`
}

// SimulatorConfig locates the simulator wrapper script
type SimulatorConfig struct {
	Path string `mapstructure:"path"`
	Dir  string `mapstructure:"dir"`
}

type MapsConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Mode    string `mapstructure:"mode"`
}

// CommandsConfig configures the optional serial command input
type CommandsConfig struct {
	SerialPort string `mapstructure:"serial_port"`
	BaudRate   int    `mapstructure:"baud_rate"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
	Dir   string `mapstructure:"dir"`
}

// SimulationConfig is one entry of the simulation queue. Dynamic entries
// replay FileName from the motion directory, generating it first when
// CreateFile is set, either from a GPX track or from start and end points.
// Static entries broadcast Latitude and Longitude.
type SimulationConfig struct {
	Name    string `mapstructure:"name"`
	Dynamic bool   `mapstructure:"dynamic"`

	FileName      string   `mapstructure:"file_name"`
	CreateFile    bool     `mapstructure:"create_file"`
	Speed         *float64 `mapstructure:"speed"`
	Transport     string   `mapstructure:"transport"` // walking, running or biking
	GPXSourcePath string   `mapstructure:"gpx_source_path"`

	StartLatitude  *float64 `mapstructure:"start_latitude"`
	StartLongitude *float64 `mapstructure:"start_longitude"`
	EndLatitude    *float64 `mapstructure:"end_latitude"`
	EndLongitude   *float64 `mapstructure:"end_longitude"`

	Latitude  *float64 `mapstructure:"latitude"`
	Longitude *float64 `mapstructure:"longitude"`

	RunDuration *int     `mapstructure:"run_duration"`
	Gain        *float64 `mapstructure:"gain"`
}

// TransportSpeeds maps transport names to speeds in meters per second
var TransportSpeeds = map[string]float64{
	"walking": gps.WalkingSpeed,
	"running": gps.RunningSpeed,
	"biking":  gps.BikingSpeed,
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		Simulator: SimulatorConfig{
			Path: "./run_bladerfGPS.sh",
			Dir:  "./bladeGPS",
		},
		LogDir:       "simulation_logs",
		MotionDir:    "user_motion_files",
		DefaultSpeed: gps.WalkingSpeed,
		Frequency:    gps.MotionSampleRate,
		Maps: MapsConfig{
			BaseURL: "https://maps.googleapis.com/maps/api",
			Mode:    "walking",
		},
		Commands: CommandsConfig{BaudRate: 9600},
		Logging:  LoggingConfig{Level: "info"},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("simulator.path", d.Simulator.Path)
	v.SetDefault("simulator.dir", d.Simulator.Dir)
	v.SetDefault("log_dir", d.LogDir)
	v.SetDefault("motion_dir", d.MotionDir)
	v.SetDefault("default_speed", d.DefaultSpeed)
	v.SetDefault("frequency", d.Frequency)
	v.SetDefault("maps.api_key", d.Maps.APIKey)
	v.SetDefault("maps.base_url", d.Maps.BaseURL)
	v.SetDefault("maps.mode", d.Maps.Mode)
	v.SetDefault("commands.serial_port", d.Commands.SerialPort)
	v.SetDefault("commands.baud_rate", d.Commands.BaudRate)
	v.SetDefault("http.addr", d.HTTP.Addr)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.dir", d.Logging.Dir)
}

// Load reads a YAML session file. Any scalar setting can be overridden from
// the environment with the GEOBEAM_ prefix, e.g. GEOBEAM_MAPS_API_KEY.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the whole session, including every simulation entry, and
// returns the first problem found
func (c *Config) Validate() error {
	if c.Simulator.Path == "" {
		return ErrMissingSimulatorPath
	}
	if c.Frequency <= 0 {
		return ErrInvalidFrequency
	}
	if c.DefaultSpeed <= 0 {
		return ErrInvalidSpeed
	}
	if c.Commands.SerialPort != "" && c.Commands.BaudRate <= 0 {
		return ErrInvalidBaudRate
	}
	if len(c.Simulations) == 0 {
		return ErrNoSimulations
	}
	generated := make(map[string]int)
	for i, s := range c.Simulations {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("%w %s: %w", ErrInvalidSimulation, s.label(i), err)
		}
		// Generated motion files must not overwrite each other
		if s.Dynamic && s.CreateFile {
			if first, ok := generated[s.FileName]; ok {
				return fmt.Errorf("%w %s: duplicate file_name %q (also generated by simulation %d)",
					ErrInvalidSimulation, s.label(i), s.FileName, first)
			}
			generated[s.FileName] = i
		}
	}
	return nil
}

// Validate checks a single simulation entry
func (s *SimulationConfig) Validate() error {
	if s.RunDuration != nil && *s.RunDuration < 0 {
		return errors.New("run_duration must be non-negative")
	}

	if !s.Dynamic {
		if s.Latitude == nil || s.Longitude == nil {
			return errors.New("static simulation needs latitude and longitude")
		}
		return nil
	}

	if s.FileName == "" {
		return errors.New("dynamic simulation needs file_name")
	}
	if s.Speed != nil && *s.Speed <= 0 {
		return ErrInvalidSpeed
	}
	if s.Transport != "" {
		if _, ok := TransportSpeeds[s.Transport]; !ok {
			return fmt.Errorf("unknown transport %q", s.Transport)
		}
	}
	if !s.CreateFile {
		return nil
	}
	if s.GPXSourcePath != "" {
		return nil
	}
	if s.StartLatitude == nil || s.StartLongitude == nil || s.EndLatitude == nil || s.EndLongitude == nil {
		return errors.New("create_file needs gpx_source_path or start and end coordinates")
	}
	return nil
}

// usesRoute reports whether the entry needs a routing service
func (s *SimulationConfig) usesRoute() bool {
	return s.Dynamic && s.CreateFile && s.GPXSourcePath == ""
}

func (s *SimulationConfig) label(index int) string {
	if s.Name != "" {
		return fmt.Sprintf("%d (%s)", index, s.Name)
	}
	return fmt.Sprintf("%d", index)
}
