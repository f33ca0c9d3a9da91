package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/Bucknalla/geobeam/config"
	"github.com/Bucknalla/geobeam/gps"
	"github.com/Bucknalla/geobeam/gps/maps"
	"github.com/Bucknalla/geobeam/internal/logging"
	"github.com/Bucknalla/geobeam/internal/observability"
	"github.com/Bucknalla/geobeam/sim"
	"github.com/Bucknalla/geobeam/web"
)

type runOptions struct {
	httpAddr   string
	serialPort string
	baudRate   int
	logLevel   string
	noKeyboard bool
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run <session.yaml>",
		Short: "Run the simulation queue of a session file",
		Long: `Run builds every simulation of the session file, generating motion files
where asked, and then runs them in order. While running, press n for the next
simulation, p for the previous one and q to quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			applyRunFlags(cmd, cfg, opts)
			return runSession(cmd, cfg, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.httpAddr, "http", "", "serve status, commands and metrics on this address, e.g. :8080")
	f.StringVar(&opts.serialPort, "serial", "", "serial port sending n, p and q commands (e.g., /dev/ttyUSB0, COM1)")
	f.IntVar(&opts.baudRate, "baud", 9600, "serial port baud rate")
	f.StringVar(&opts.logLevel, "log-level", "info", "debug, info, warn or error")
	f.BoolVar(&opts.noKeyboard, "no-keyboard", false, "ignore the terminal, take commands from serial and HTTP only")
	return cmd
}

// applyRunFlags lets explicit flags override the session file
func applyRunFlags(cmd *cobra.Command, cfg *config.Config, opts *runOptions) {
	f := cmd.Flags()
	if f.Changed("http") {
		cfg.HTTP.Addr = opts.httpAddr
	}
	if f.Changed("serial") {
		cfg.Commands.SerialPort = opts.serialPort
	}
	if f.Changed("baud") {
		cfg.Commands.BaudRate = opts.baudRate
	}
	if f.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}
}

func runSession(cmd *cobra.Command, cfg *config.Config, opts *runOptions) error {
	logger := logging.New(logging.Config{
		Level:   cfg.Logging.Level,
		Dir:     cfg.Logging.Dir,
		Console: cmd.ErrOrStderr(),
	})
	defer logger.Close()
	slog.SetDefault(logger.Logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var routes gps.RouteProvider
	if cfg.Maps.APIKey != "" {
		client, err := maps.New(maps.Config{
			APIKey:  cfg.Maps.APIKey,
			BaseURL: cfg.Maps.BaseURL,
			Mode:    cfg.Maps.Mode,
			Logger:  logger.Logger,
		})
		if err != nil {
			return err
		}
		routes = client
	}

	builder := &config.Builder{Config: cfg, Routes: routes, Logger: logger.Logger}
	specs, err := builder.Specs(ctx)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	collector, err := observability.NewSetCollector(registry)
	if err != nil {
		return err
	}

	sources, closeSources, err := openCommandSources(cfg, opts, logger.Logger)
	if err != nil {
		return err
	}
	defer closeSources()

	var webCommands *sim.ChannelSource
	if cfg.HTTP.Addr != "" {
		webCommands = sim.NewChannelSource(16)
		sources = append(sources, webCommands)
	}

	launcher := &sim.ExecLauncher{
		Path:   cfg.Simulator.Path,
		Dir:    cfg.Simulator.Dir,
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
		Logger: logger.Logger,
	}
	sb := sim.NewSetBuilder(launcher)
	for _, spec := range specs {
		sb.Add(spec)
	}
	set := sb.Build(
		sim.WithLogDir(cfg.LogDir),
		sim.WithCommands(sim.Merge(sources...)),
		sim.WithOutput(cmd.OutOrStdout()),
		sim.WithLogger(logger.Logger),
		sim.WithRecorder(collector),
	)

	if webCommands != nil {
		server := web.NewServer(web.Config{
			Addr:    cfg.HTTP.Addr,
			Metrics: collector.Handler(),
			Logger:  logger.Logger,
		}, set, webCommands)
		go func() {
			if err := server.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("web server stopped", "err", err)
			}
		}()
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Loaded %d simulations, run log: %s\n", len(specs), set.LogPath())
	fmt.Fprintf(cmd.ErrOrStderr(), "Press n for next, p for previous, q to quit\n\n")
	return set.Run(ctx)
}

// openCommandSources opens the terminal and serial inputs. The returned
// close function restores the terminal.
func openCommandSources(cfg *config.Config, opts *runOptions, logger *slog.Logger) ([]sim.CommandSource, func(), error) {
	var sources []sim.CommandSource
	var closers []func() error
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if !opts.noKeyboard {
		keyboard, err := sim.OpenKeyboard(os.Stdin)
		switch {
		case err == nil:
			sources = append(sources, keyboard)
			closers = append(closers, keyboard.Close)
		case errors.Is(err, sim.ErrNotTerminal):
			logger.Info("stdin is not a terminal, reading commands line by line")
			sources = append(sources, sim.NewReaderSource(os.Stdin))
		default:
			return nil, func() {}, err
		}
	}

	if cfg.Commands.SerialPort != "" {
		port, err := sim.OpenSerialSource(cfg.Commands.SerialPort, cfg.Commands.BaudRate)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		sources = append(sources, port)
		closers = append(closers, port.Close)
		logger.Info("serial commands enabled", "port", cfg.Commands.SerialPort, "baud", cfg.Commands.BaudRate)
	}

	return sources, closeAll, nil
}
