package sim

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultPollInterval is the pause between polls of the operator and the active simulator
const DefaultPollInterval = 10 * time.Millisecond

// LogFileLayout names the run log of a session after its UTC creation time
const LogFileLayout = "GPSSIM-2006-01-02_15-04-05.csv"

// Status is a snapshot of a simulation set
type Status struct {
	SessionID  string    `json:"session_id"`
	Active     int       `json:"active"` // -1 when no simulation is active
	Total      int       `json:"total"`
	Running    bool      `json:"running"`
	Simulation string    `json:"simulation,omitempty"`
	StartedAt  time.Time `json:"started_at,omitempty"`
	LogFile    string    `json:"log_file"`
	Finished   bool      `json:"finished"`
}

// Set runs an ordered queue of simulations one at a time, switching between
// them on operator commands or when the active one finishes
type Set struct {
	mu        sync.RWMutex
	status    Status
	observers []func(Status)

	sims   []*Simulation
	cursor int // -1 when no simulation is active

	id           uuid.UUID
	logDir       string
	logName      string
	commands     CommandSource
	out          io.Writer
	logger       *slog.Logger
	recorder     Recorder
	pollInterval time.Duration
	now          func() time.Time
}

// SetOption configures a Set
type SetOption func(*Set)

// WithLogDir sets the directory the run log is written to
func WithLogDir(dir string) SetOption {
	return func(s *Set) {
		s.logDir = dir
	}
}

// WithCommands sets where operator commands come from
func WithCommands(source CommandSource) SetOption {
	return func(s *Set) {
		s.commands = source
	}
}

// WithOutput sets where operator messages are printed
func WithOutput(w io.Writer) SetOption {
	return func(s *Set) {
		s.out = w
	}
}

func WithLogger(logger *slog.Logger) SetOption {
	return func(s *Set) {
		s.logger = logger
	}
}

func WithRecorder(recorder Recorder) SetOption {
	return func(s *Set) {
		s.recorder = recorder
	}
}

// WithPollInterval sets the pause between loop iterations. Zero polls continuously.
func WithPollInterval(d time.Duration) SetOption {
	return func(s *Set) {
		s.pollInterval = d
	}
}

// WithClock replaces the clock used to name the run log
func WithClock(now func() time.Time) SetOption {
	return func(s *Set) {
		s.now = now
	}
}

// NewSet creates a set over sims. No simulation is active until Run is
// called. The run log name is fixed here from the current UTC time.
func NewSet(sims []*Simulation, opts ...SetOption) *Set {
	s := &Set{
		sims:         sims,
		cursor:       -1,
		id:           uuid.New(),
		logDir:       "simulation_logs",
		commands:     noInput{},
		out:          os.Stdout,
		logger:       slog.Default(),
		recorder:     nopRecorder{},
		pollInterval: DefaultPollInterval,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logName = s.now().UTC().Format(LogFileLayout)
	s.logger = s.logger.With("session_id", s.id.String())

	for _, sim := range s.sims {
		sim.out = s.out
		sim.logger = s.logger
		sim.recorder = s.recorder
	}

	s.status = Status{
		SessionID: s.id.String(),
		Active:    -1,
		Total:     len(sims),
		LogFile:   s.LogPath(),
	}
	return s
}

// LogPath returns the path of the session run log
func (s *Set) LogPath() string {
	return filepath.Join(s.logDir, s.logName)
}

// Current returns the index of the active simulation
func (s *Set) Current() (int, bool) {
	return s.cursor, s.cursor >= 0
}

// Run starts the first simulation and then polls for operator commands and
// for the active simulation finishing until the operator quits, the context
// is cancelled or the last simulation finishes. The active simulation is
// ended and logged before Run returns.
func (s *Set) Run(ctx context.Context) error {
	if len(s.sims) == 0 {
		return ErrEmptySet
	}

	fmt.Fprintln(s.out, separator)
	fmt.Fprintln(s.out, "Press 'n' to go to next sim, 'p' to go to previous sim, or 'q' to quit")
	fmt.Fprintln(s.out, separator)

	s.SwitchTo(0)
	for {
		current := s.sims[s.cursor]
		running := current.IsRunning()
		s.publish(running)

		cmd := s.commands.TryCommand()
		if cmd == Quit || ctx.Err() != nil || (!running && s.cursor >= len(s.sims)-1) {
			current.End()
			s.logCurrent()
			break
		} else if cmd == Next || !running {
			if cmd == Next {
				s.recorder.Switched(SwitchNext)
			} else {
				s.recorder.Switched(SwitchFinished)
			}
			s.SwitchTo(s.cursor + 1)
		} else if cmd == Previous {
			s.recorder.Switched(SwitchPrevious)
			s.SwitchTo(s.cursor - 1)
		} else if s.pollInterval > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(s.pollInterval):
			}
		}
	}

	fmt.Fprintln(s.out, "Simulation set ending...")
	s.cursor = -1
	s.recorder.SetFinished()
	s.update(func(st *Status) {
		st.Active = -1
		st.Running = false
		st.Simulation = ""
		st.StartedAt = time.Time{}
		st.Finished = true
	})
	return nil
}

// SwitchTo ends and logs the active simulation and starts the one at index.
// An index outside the queue only prints a notice and changes nothing.
func (s *Set) SwitchTo(index int) bool {
	if index < 0 {
		fmt.Fprintln(s.out, "\nAlready on first simulation")
		return false
	}
	if index >= len(s.sims) {
		fmt.Fprintln(s.out, "\nAlready on last simulation")
		return false
	}

	if s.cursor >= 0 {
		s.sims[s.cursor].End()
		s.logCurrent()
	}

	next := s.sims[index]
	if err := next.Start(); err != nil {
		s.logger.Error("failed to start simulation", "index", index, "err", err)
	}
	s.cursor = index
	s.recorder.SimulationStarted(index, next.spec.Kind)

	running := next.IsRunning()
	s.update(func(st *Status) {
		st.Active = index
		st.Running = running
		st.Simulation = next.spec.String()
		st.StartedAt = next.startTime
	})
	return true
}

// logCurrent appends the active simulation's record to the run log. The
// file is opened and closed for every record.
func (s *Set) logCurrent() {
	if s.cursor < 0 {
		return
	}
	current := s.sims[s.cursor]

	if err := os.MkdirAll(s.logDir, 0o755); err != nil {
		s.logger.Error("failed to create log directory", "dir", s.logDir, "err", err)
		return
	}

	file, err := os.OpenFile(s.LogPath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		s.logger.Error("failed to open run log", "path", s.LogPath(), "err", err)
		return
	}
	defer file.Close()

	if err := current.LogRun(file); err != nil {
		s.logger.Error("failed to log simulation", "index", s.cursor, "err", err)
	}
}

// Status returns a snapshot of the set. It is safe to call from any goroutine.
func (s *Set) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// AddObserver registers a function called with every status change
func (s *Set) AddObserver(fn func(Status)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

func (s *Set) publish(running bool) {
	s.mu.RLock()
	changed := s.status.Running != running
	s.mu.RUnlock()
	if changed {
		s.update(func(st *Status) {
			st.Running = running
		})
	}
}

func (s *Set) update(fn func(*Status)) {
	s.mu.Lock()
	fn(&s.status)
	status := s.status
	observers := make([]func(Status), len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, observer := range observers {
		go observer(status)
	}
}

// SetBuilder collects simulations in order for a Set
type SetBuilder struct {
	launcher Launcher
	sims     []*Simulation
}

// NewSetBuilder creates a builder whose simulations all use launcher
func NewSetBuilder(launcher Launcher) *SetBuilder {
	return &SetBuilder{launcher: launcher}
}

// AddStatic appends a fixed location simulation
func (b *SetBuilder) AddStatic(lat, lon float64, opts ...Option) *SetBuilder {
	b.sims = append(b.sims, New(StaticSpec(lat, lon, opts...), b.launcher))
	return b
}

// AddDynamic appends a motion file simulation
func (b *SetBuilder) AddDynamic(path string, opts ...Option) *SetBuilder {
	b.sims = append(b.sims, New(DynamicSpec(path, opts...), b.launcher))
	return b
}

// Add appends a simulation for an arbitrary spec
func (b *SetBuilder) Add(spec Spec) *SetBuilder {
	b.sims = append(b.sims, New(spec, b.launcher))
	return b
}

func (b *SetBuilder) Build(opts ...SetOption) *Set {
	return NewSet(b.sims, opts...)
}
