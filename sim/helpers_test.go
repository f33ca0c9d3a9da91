package sim

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeProcess either follows a scripted sequence of liveness polls, repeating
// the last value, or stays alive until it is told to quit
type fakeProcess struct {
	mu         sync.Mutex
	script     []bool
	running    bool
	ignoreQuit bool

	polls      int
	quits      int
	terminates int
	kills      int
}

func scriptedProcess(polls ...bool) *fakeProcess {
	return &fakeProcess{script: polls}
}

func runningProcess() *fakeProcess {
	return &fakeProcess{running: true}
}

func (p *fakeProcess) Alive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	defer func() { p.polls++ }()

	if len(p.script) > 0 {
		if p.polls < len(p.script) {
			return p.script[p.polls]
		}
		return p.script[len(p.script)-1]
	}
	return p.running
}

func (p *fakeProcess) Quit() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.quits++
	if !p.ignoreQuit {
		p.running = false
	}
	return nil
}

func (p *fakeProcess) Terminate() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.terminates++
	p.running = false
	return nil
}

func (p *fakeProcess) Kill() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.kills++
	p.running = false
	return nil
}

// fakeLauncher hands out queued processes, or a fresh running process once
// the queue is empty
type fakeLauncher struct {
	mu        sync.Mutex
	processes []*fakeProcess
	failures  map[int]bool // launch numbers that fail
	launched  []*fakeProcess
	args      [][]string
}

var errLaunch = errors.New("launch failed")

func (l *fakeLauncher) Launch(args []string) (Process, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := len(l.args)
	l.args = append(l.args, args)
	if l.failures[n] {
		return nil, errLaunch
	}

	var p *fakeProcess
	if len(l.processes) > 0 {
		p = l.processes[0]
		l.processes = l.processes[1:]
	} else {
		p = runningProcess()
	}
	l.launched = append(l.launched, p)
	return p, nil
}

type sleepRecorder struct {
	sleeps []time.Duration
}

func (r *sleepRecorder) sleep(d time.Duration) {
	r.sleeps = append(r.sleeps, d)
}

// fixedClock returns times starting at start and advancing by step on every call
func fixedClock(start time.Time, step time.Duration) func() time.Time {
	current := start.Add(-step)
	return func() time.Time {
		current = current.Add(step)
		return current
	}
}

type countingRecorder struct {
	mu       sync.Mutex
	started  []int
	ended    int
	switches map[string]int
	signals  map[string]int
	finished int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{switches: map[string]int{}, signals: map[string]int{}}
}

func (r *countingRecorder) SimulationStarted(index int, kind Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, index)
}

func (r *countingRecorder) SimulationEnded(kind Kind, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ended++
}

func (r *countingRecorder) Switched(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.switches[reason]++
}

func (r *countingRecorder) ShutdownSignal(signal string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signals[signal]++
}

func (r *countingRecorder) SetFinished() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished++
}

// waitFor polls cond until it holds or the timeout passes
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("Timed out waiting for condition")
		}
		time.Sleep(time.Millisecond)
	}
}
