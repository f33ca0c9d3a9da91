package sim

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
)

// TimeFormat is the ISO-8601 layout used for run log timestamps (UTC)
const TimeFormat = "2006-01-02T15:04:05.000000"

// motionRowsPerSecond is the sampling rate of motion files
const motionRowsPerSecond = 10

const separator = "------------------------------------------------"

// Simulation is one entry of a simulation set: a spec plus at most one live
// simulator process
type Simulation struct {
	spec     Spec
	launcher Launcher
	proc     Process

	runID     uuid.UUID
	startTime time.Time
	endTime   time.Time

	out      io.Writer
	logger   *slog.Logger
	recorder Recorder
	now      func() time.Time
	sleep    func(time.Duration)
}

// New creates an idle simulation for spec, started through launcher
func New(spec Spec, launcher Launcher) *Simulation {
	return &Simulation{
		spec:     spec,
		launcher: launcher,
		out:      os.Stdout,
		logger:   slog.Default(),
		recorder: nopRecorder{},
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// Spec returns the run parameters
func (s *Simulation) Spec() Spec {
	return s.spec
}

// StartTime returns when the simulation was last started, or the zero time
func (s *Simulation) StartTime() time.Time {
	return s.startTime
}

// EndTime returns when the simulation was last ended, or the zero time
func (s *Simulation) EndTime() time.Time {
	return s.endTime
}

// Start records the start time and launches the simulator. Calling Start on
// a running simulation launches a second process and loses the first handle.
func (s *Simulation) Start() error {
	s.startTime = s.now().UTC()
	s.runID = uuid.New()

	proc, err := s.launcher.Launch(s.spec.Args())
	if err != nil {
		s.proc = nil
		return fmt.Errorf("failed to start %s: %w", s.spec.Kind, err)
	}
	s.proc = proc

	s.logger.Info("simulation started", "run_id", s.runID, "spec", s.spec.String())
	return nil
}

// IsRunning reports whether the simulator process is still executing
func (s *Simulation) IsRunning() bool {
	return s.proc != nil && s.proc.Alive()
}

// End records the end time and shuts the simulator down. While the process
// is alive it is asked to quit, then terminated, then killed, with a one
// second pause after each step.
func (s *Simulation) End() {
	s.endTime = s.now().UTC()

	if s.proc != nil {
		s.logUsage()
	}

	for s.IsRunning() {
		s.signal("quit", s.proc.Quit)
		fmt.Fprintln(s.out, "Quitting simulation...")
		s.sleep(time.Second)

		if s.proc.Alive() {
			fmt.Fprintln(s.out, "Terminating subprocess...")
			s.signal("terminate", s.proc.Terminate)
			s.sleep(time.Second)
		}
		if s.proc.Alive() {
			fmt.Fprintln(s.out, "Killing subprocess...")
			s.signal("kill", s.proc.Kill)
			s.sleep(time.Second)
		}
	}
	s.proc = nil

	fmt.Fprintln(s.out, "Subprocess closed.")
	fmt.Fprintln(s.out, separator)

	s.recorder.SimulationEnded(s.spec.Kind, s.elapsed())
	s.logger.Info("simulation ended", "run_id", s.runID, "elapsed", s.elapsed())
}

func (s *Simulation) signal(name string, send func() error) {
	s.recorder.ShutdownSignal(name)
	if err := send(); err != nil {
		s.logger.Warn("failed to signal simulator", "run_id", s.runID, "signal", name, "err", err)
	}
}

func (s *Simulation) logUsage() {
	reporter, ok := s.proc.(usageReporter)
	if !ok {
		return
	}
	usage, err := reporter.Usage()
	if err != nil {
		s.logger.Debug("failed to sample simulator usage", "run_id", s.runID, "err", err)
		return
	}
	s.logger.Info("simulator usage", "run_id", s.runID, "cpu_percent", usage.CPUPercent, "rss_bytes", usage.RSSBytes)
}

func (s *Simulation) elapsed() time.Duration {
	if s.startTime.IsZero() || s.endTime.IsZero() {
		return 0
	}
	return s.endTime.Sub(s.startTime)
}

// LogRun appends a record of the last run to w: a blank line, then a field
// row and a value row. A dynamic run is followed by the rows of its motion
// file covering the time it was actually on air.
func (s *Simulation) LogRun(w io.Writer) error {
	if s.startTime.IsZero() {
		return ErrNotStarted
	}

	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}

	fields := []string{"simulation_type"}
	values := []string{s.spec.Kind.String()}
	switch s.spec.Kind {
	case Static:
		fields = append(fields, "latitude", "longitude")
		values = append(values, formatFloat(s.spec.Latitude), formatFloat(s.spec.Longitude))
	case Dynamic:
		fields = append(fields, "file_path")
		values = append(values, s.spec.FilePath)
	}
	fields = append(fields, "run_duration", "gain", "start_time", "end_time")
	values = append(values,
		optionalInt(s.spec.RunDuration),
		optionalFloat(s.spec.Gain),
		s.startTime.Format(TimeFormat),
		formatTime(s.endTime),
	)

	writer := csv.NewWriter(w)
	writer.Write(fields)
	writer.Write(values)
	if s.spec.Kind == Dynamic {
		writer.Write([]string{"time_from_zero", "x", "y", "z"})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to write run log: %w", err)
	}

	if s.spec.Kind == Dynamic {
		return s.copyMotionWindow(w)
	}
	return nil
}

// copyMotionWindow copies the first elapsed*10 lines of the motion file verbatim
func (s *Simulation) copyMotionWindow(w io.Writer) error {
	file, err := os.Open(s.spec.FilePath)
	if err != nil {
		return fmt.Errorf("failed to open motion file %s: %w", s.spec.FilePath, err)
	}
	defer file.Close()

	lines := int(s.elapsed().Seconds() * motionRowsPerSecond)
	reader := bufio.NewReader(file)
	for i := 0; i < lines; i++ {
		line, err := reader.ReadString('\n')
		if line != "" {
			if _, werr := io.WriteString(w, line); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read motion file %s: %w", s.spec.FilePath, err)
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimeFormat)
}
