package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/Bucknalla/geobeam/gps"
	"github.com/Bucknalla/geobeam/sim"
)

// maxConcurrentRoutes bounds the number of motion files generated at once
const maxConcurrentRoutes = 4

// Builder turns a validated Config into simulation specs, generating the
// motion files of dynamic entries that ask for it
type Builder struct {
	Config *Config
	Routes gps.RouteProvider // needed only for entries with start and end points
	Logger *slog.Logger
}

// Specs returns one spec per simulation entry, in order. Every entry is
// checked before any file is generated, and the first failure aborts the
// whole batch.
func (b *Builder) Specs(ctx context.Context) ([]sim.Spec, error) {
	logger := b.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if err := b.Config.Validate(); err != nil {
		return nil, err
	}
	for i := range b.Config.Simulations {
		if b.Config.Simulations[i].usesRoute() && b.Routes == nil {
			return nil, fmt.Errorf("%w %s: %w", ErrInvalidSimulation, b.Config.Simulations[i].label(i), ErrNoRouteProvider)
		}
	}

	specs := make([]sim.Spec, len(b.Config.Simulations))
	for i := range b.Config.Simulations {
		entry := &b.Config.Simulations[i]
		if !entry.Dynamic {
			specs[i] = sim.StaticSpec(*entry.Latitude, *entry.Longitude, b.options(entry)...)
			continue
		}

		path, err := filepath.Abs(filepath.Join(b.Config.MotionDir, entry.FileName))
		if err != nil {
			return nil, fmt.Errorf("%w %s: %w", ErrInvalidSimulation, entry.label(i), err)
		}
		specs[i] = sim.DynamicSpec(path, b.options(entry)...)

		if !entry.CreateFile {
			if _, err := os.Stat(path); err != nil {
				return nil, fmt.Errorf("%w %s: %w: %s", ErrInvalidSimulation, entry.label(i), ErrMotionFileMissing, path)
			}
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentRoutes)
	for i := range b.Config.Simulations {
		entry := &b.Config.Simulations[i]
		if !entry.Dynamic || !entry.CreateFile {
			continue
		}
		path := specs[i].FilePath
		i := i

		g.Go(func() error {
			traj, err := b.generate(ctx, entry)
			if err != nil {
				return fmt.Errorf("%w %s: %w", ErrInvalidSimulation, entry.label(i), err)
			}
			if err := traj.WriteFile(path); err != nil {
				return err
			}
			logger.Info("motion file written", "name", entry.Name, "path", path, "points", traj.Len(), "seconds", traj.Duration())
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return specs, nil
}

func (b *Builder) generate(ctx context.Context, entry *SimulationConfig) (*gps.Trajectory, error) {
	cfg := gps.RouteConfig{
		Speed:     b.speed(entry),
		Frequency: b.Config.Frequency,
	}

	if entry.GPXSourcePath != "" {
		return gps.FromGPXFileTimed(entry.GPXSourcePath, cfg)
	}

	start := gps.LatLon{Lat: *entry.StartLatitude, Lon: *entry.StartLongitude}
	end := gps.LatLon{Lat: *entry.EndLatitude, Lon: *entry.EndLongitude}
	return gps.FromStartEndTimed(ctx, b.Routes, start, end, cfg)
}

func (b *Builder) speed(entry *SimulationConfig) float64 {
	if entry.Speed != nil {
		return *entry.Speed
	}
	if speed, ok := TransportSpeeds[entry.Transport]; ok {
		return speed
	}
	return b.Config.DefaultSpeed
}

func (b *Builder) options(entry *SimulationConfig) []sim.Option {
	var opts []sim.Option
	if entry.RunDuration != nil {
		opts = append(opts, sim.WithRunDuration(*entry.RunDuration))
	}
	if entry.Gain != nil {
		opts = append(opts, sim.WithGain(*entry.Gain))
	}
	return opts
}
