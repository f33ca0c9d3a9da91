package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.bug.st/serial"

	"github.com/Bucknalla/geobeam/gps"
)

type nmeaOptions struct {
	serialPort string
	baudRate   int
	speed      float64
	loop       bool
}

func newNMEACmd() *cobra.Command {
	opts := &nmeaOptions{}
	cmd := &cobra.Command{
		Use:   "nmea <motion.csv | track.gpx>",
		Short: "Play a motion file or GPX track back as NMEA sentences",
		Long: `Nmea replays a motion file or GPX track in real time as NMEA 0183
GGA, RMC, VTG and GLL sentences, on stdout or a serial port, so a trajectory
can be checked with ordinary GPS tooling before it is transmitted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNMEA(cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.serialPort, "serial", "", "Serial port for NMEA output (e.g., /dev/ttyUSB0, COM1)")
	f.IntVar(&opts.baudRate, "baud", 9600, "Serial port baud rate")
	f.Float64Var(&opts.speed, "replay-speed", 1.0, "Replay speed multiplier (1.0=real-time, 2.0=2x speed)")
	f.BoolVar(&opts.loop, "replay-loop", false, "Loop the replay continuously")
	return cmd
}

// loadFixes reads a GPX track or a motion file, by extension
func loadFixes(path string, start time.Time) ([]gps.Fix, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gpx", ".xml":
		trajectory, err := gps.FromGPXFile(path)
		if err != nil {
			return nil, err
		}
		return trajectory.Fixes(start), nil
	default:
		samples, err := gps.ReadMotionFile(path)
		if err != nil {
			return nil, err
		}
		return gps.FixesFromMotion(samples, start), nil
	}
}

func runNMEA(cmd *cobra.Command, path string, opts *nmeaOptions) error {
	if opts.speed <= 0 {
		return errors.New("replay speed must be positive")
	}
	if opts.baudRate <= 0 {
		return errors.New("baud rate must be positive")
	}

	fixes, err := loadFixes(path, time.Now().UTC())
	if err != nil {
		return err
	}

	// Setup output writer (serial port or stdout)
	var nmeaWriter io.Writer = cmd.OutOrStdout()
	if opts.serialPort != "" {
		mode := &serial.Mode{
			BaudRate: opts.baudRate,
			Parity:   serial.NoParity,
			DataBits: 8,
			StopBits: serial.OneStopBit,
		}
		port, err := serial.Open(opts.serialPort, mode)
		if err != nil {
			return fmt.Errorf("failed to open serial port %s: %w", opts.serialPort, err)
		}
		defer port.Close()
		nmeaWriter = port
	}

	// Log to stderr so it doesn't interfere with NMEA output
	stderr := cmd.ErrOrStderr()
	fmt.Fprintf(stderr, "Starting NMEA replay from: %s (%d fixes)\n", path, len(fixes))
	fmt.Fprintf(stderr, "Replay speed: %.1fx\n", opts.speed)
	if opts.serialPort != "" {
		fmt.Fprintf(stderr, "NMEA output: %s (%d baud)\n", opts.serialPort, opts.baudRate)
	} else {
		fmt.Fprintf(stderr, "NMEA output: stdout\n")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = gps.Replay(ctx, nmeaWriter, fixes, gps.ReplayOptions{Speed: opts.speed, Loop: opts.loop})
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return nil
	}
	return err
}
