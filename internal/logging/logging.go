// Package logging builds the structured logger shared by the geobeam commands.
package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFileName is the name of the rotating log file inside Config.Dir
const LogFileName = "geobeam.slog"

// Config controls basic logger behaviour.
type Config struct {
	Level   string    // debug, info, warn, error
	Dir     string    // directory for the rotating JSON log; empty disables it
	Console io.Writer // optional human-readable copy, usually os.Stderr
}

// Logger is a slog.Logger that owns its log file
type Logger struct {
	*slog.Logger
	LogFile string
	file    *lumberjack.Logger
}

// New constructs a logger writing JSON to a rotating file in cfg.Dir and text
// to cfg.Console. With neither set, records are discarded.
func New(cfg Config) *Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handlers []slog.Handler
	l := &Logger{}
	if cfg.Dir != "" {
		l.file = &lumberjack.Logger{
			Filename:   filepath.Join(cfg.Dir, LogFileName),
			MaxSize:    32, // MB
			MaxBackups: 3,
			MaxAge:     14,
		}
		l.LogFile = l.file.Filename
		handlers = append(handlers, slog.NewJSONHandler(l.file, opts))
	}
	if cfg.Console != nil {
		handlers = append(handlers, slog.NewTextHandler(cfg.Console, opts))
	}
	if len(handlers) == 0 {
		handlers = append(handlers, slog.NewTextHandler(io.Discard, opts))
	}

	l.Logger = slog.New(fanout(handlers))
	l.Debug("logger started",
		slog.Time("start", time.Now()),
		slog.String("GOOS", runtime.GOOS),
		slog.String("GOARCH", runtime.GOARCH))
	return l
}

// Close flushes and closes the log file
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

func parseLevel(level string) slog.Leveler {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// fanout sends every record to all handlers that accept its level
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make(fanout, len(f))
	for i, h := range f {
		next[i] = h.WithAttrs(attrs)
	}
	return next
}

func (f fanout) WithGroup(name string) slog.Handler {
	next := make(fanout, len(f))
	for i, h := range f {
		next[i] = h.WithGroup(name)
	}
	return next
}
