package sim

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"github.com/shirou/gopsutil/v3/process"
)

// Process is a handle to a running simulator
type Process interface {
	// Alive reports whether the process is still executing. It never blocks.
	Alive() bool
	// Quit asks the simulator to stop through its input channel
	Quit() error
	// Terminate sends SIGTERM
	Terminate() error
	// Kill stops the process immediately
	Kill() error
}

// Launcher starts simulator processes
type Launcher interface {
	Launch(args []string) (Process, error)
}

// ResourceUsage is a point-in-time sample of a simulator's resource consumption
type ResourceUsage struct {
	CPUPercent float64
	RSSBytes   uint64
}

// usageReporter is implemented by processes that can report resource usage
type usageReporter interface {
	Usage() (ResourceUsage, error)
}

// ExecLauncher runs the simulator wrapper script as a child process
type ExecLauncher struct {
	Path   string // simulator executable, e.g. ./run_bladerfGPS.sh
	Dir    string // working directory of the child
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// Launch starts the simulator with args. It returns as soon as the child is
// running; a background goroutine reaps it when it exits.
func (l *ExecLauncher) Launch(args []string) (Process, error) {
	cmd := exec.Command(l.Path, args...)
	cmd.Dir = l.Dir
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open simulator stdin: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start simulator %s: %w", l.Path, err)
	}

	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	p := &execProcess{
		cmd:   cmd,
		stdin: stdin,
		done:  make(chan struct{}),
	}
	go func() {
		err := cmd.Wait()
		logger.Debug("simulator exited", "pid", cmd.Process.Pid, "err", err)
		close(p.done)
	}()

	logger.Info("simulator started", "path", l.Path, "dir", l.Dir, "args", args, "pid", cmd.Process.Pid)
	return p, nil
}

type execProcess struct {
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	done      chan struct{}
	closeOnce sync.Once
}

func (p *execProcess) Alive() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// Quit writes the quit key to the simulator and closes its input
func (p *execProcess) Quit() error {
	_, err := io.WriteString(p.stdin, "q")
	p.closeOnce.Do(func() {
		p.stdin.Close()
	})
	return err
}

func (p *execProcess) Terminate() error {
	return p.cmd.Process.Signal(syscall.SIGTERM)
}

func (p *execProcess) Kill() error {
	err := p.cmd.Process.Kill()
	if err == os.ErrProcessDone {
		return nil
	}
	return err
}

func (p *execProcess) Usage() (ResourceUsage, error) {
	proc, err := process.NewProcess(int32(p.cmd.Process.Pid))
	if err != nil {
		return ResourceUsage{}, err
	}
	cpu, err := proc.CPUPercent()
	if err != nil {
		return ResourceUsage{}, err
	}
	mem, err := proc.MemoryInfo()
	if err != nil {
		return ResourceUsage{}, err
	}
	return ResourceUsage{CPUPercent: cpu, RSSBytes: mem.RSS}, nil
}
