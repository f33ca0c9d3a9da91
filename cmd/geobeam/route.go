package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Bucknalla/geobeam/config"
	"github.com/Bucknalla/geobeam/gps"
	"github.com/Bucknalla/geobeam/gps/maps"
)

var errRouteSource = errors.New("either --gpx or both --start and --end are required")

type routeOptions struct {
	start     string
	end       string
	gpxIn     string
	speed     float64
	frequency float64
	transport string
	raw       bool
	gpxOut    string
	output    string
	apiKey    string
	mapsURL   string
}

func newRouteCmd() *cobra.Command {
	opts := &routeOptions{}
	cmd := &cobra.Command{
		Use:   "route",
		Short: "Build a motion file from a route or a GPX track",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoute(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.start, "start", "", "start point as lat,lon")
	f.StringVar(&opts.end, "end", "", "end point as lat,lon")
	f.StringVar(&opts.gpxIn, "gpx", "", "GPX track to follow instead of a routed path")
	f.Float64Var(&opts.speed, "speed", 0, "speed in meters per second, overrides --transport (default 1.4)")
	f.Float64Var(&opts.frequency, "frequency", gps.MotionSampleRate, "samples per second")
	f.StringVar(&opts.transport, "transport", "", "walking, running or biking")
	f.BoolVar(&opts.raw, "raw", false, "write route points as x,y,z without upsampling")
	f.StringVar(&opts.gpxOut, "gpx-out", "", "also write the trajectory as a GPX track for preview")
	f.StringVarP(&opts.output, "output", "o", "", "output motion file (default: stdout)")
	f.StringVar(&opts.apiKey, "api-key", os.Getenv("GEOBEAM_MAPS_API_KEY"), "maps API key (env GEOBEAM_MAPS_API_KEY)")
	f.StringVar(&opts.mapsURL, "maps-url", maps.DefaultBaseURL, "maps API base URL")
	return cmd
}

// routeSpeed resolves the sampling speed: an explicit speed wins over a
// transport, which wins over walking pace
func routeSpeed(opts *routeOptions) (float64, error) {
	if opts.speed != 0 {
		return opts.speed, nil
	}
	if opts.transport == "" {
		return gps.WalkingSpeed, nil
	}
	speed, ok := config.TransportSpeeds[opts.transport]
	if !ok {
		return 0, fmt.Errorf("unknown transport %q", opts.transport)
	}
	return speed, nil
}

func buildTrajectory(cmd *cobra.Command, opts *routeOptions) (*gps.Trajectory, error) {
	if opts.gpxIn != "" {
		return gps.FromGPXFile(opts.gpxIn)
	}
	if opts.start == "" || opts.end == "" {
		return nil, errRouteSource
	}

	start, err := gps.ParseLatLon(opts.start)
	if err != nil {
		return nil, fmt.Errorf("invalid --start: %w", err)
	}
	end, err := gps.ParseLatLon(opts.end)
	if err != nil {
		return nil, fmt.Errorf("invalid --end: %w", err)
	}

	client, err := maps.New(maps.Config{
		APIKey:  opts.apiKey,
		BaseURL: opts.mapsURL,
		Logger:  slog.Default(),
	})
	if err != nil {
		return nil, err
	}
	return gps.FromStartEnd(cmd.Context(), client, start, end)
}

func runRoute(cmd *cobra.Command, opts *routeOptions) error {
	speed, err := routeSpeed(opts)
	if err != nil {
		return err
	}
	rc := gps.RouteConfig{Speed: speed, Frequency: opts.frequency}
	if err := rc.Validate(); err != nil {
		return err
	}

	trajectory, err := buildTrajectory(cmd, opts)
	if err != nil {
		return err
	}
	if !opts.raw {
		trajectory, err = trajectory.Upsample(rc.Speed, rc.Frequency)
		if err != nil {
			return err
		}
	}

	if opts.output == "" {
		if err := trajectory.WriteCSV(cmd.OutOrStdout()); err != nil {
			return err
		}
	} else if err := trajectory.WriteFile(opts.output); err != nil {
		return err
	}

	gpxPoints := 0
	if opts.gpxOut != "" {
		if gpxPoints, err = trajectory.WriteGPX(opts.gpxOut, time.Now().UTC()); err != nil {
			return err
		}
	}

	stderr := cmd.ErrOrStderr()
	fmt.Fprintf(stderr, "Points: %d\n", trajectory.Len())
	fmt.Fprintf(stderr, "Length: %.1f meters\n", trajectory.Length())
	if trajectory.IsTimed() {
		fmt.Fprintf(stderr, "Duration: %.1f seconds at %.1f m/s\n", trajectory.Duration(), rc.Speed)
	}
	if opts.output != "" {
		fmt.Fprintf(stderr, "Motion file: %s\n", opts.output)
	}
	if opts.gpxOut != "" {
		fmt.Fprintf(stderr, "GPX preview: %s (%d track points)\n", opts.gpxOut, gpxPoints)
	}
	return nil
}
