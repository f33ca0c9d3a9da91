package sim

import (
	"bytes"
	"context"
	"errors"
	"os"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"
)

type testSet struct {
	set      *Set
	launcher *fakeLauncher
	commands *ChannelSource
	out      *bytes.Buffer
	recorder *countingRecorder
}

func newTestSet(t *testing.T, launcher *fakeLauncher, specs ...Spec) *testSet {
	t.Helper()
	ts := &testSet{
		launcher: launcher,
		commands: NewChannelSource(16),
		out:      &bytes.Buffer{},
		recorder: newCountingRecorder(),
	}

	sims := make([]*Simulation, len(specs))
	for i, spec := range specs {
		sims[i] = New(spec, launcher)
		sims[i].sleep = func(time.Duration) {}
	}

	ts.set = NewSet(sims,
		WithLogDir(t.TempDir()),
		WithCommands(ts.commands),
		WithOutput(ts.out),
		WithRecorder(ts.recorder),
		WithPollInterval(0),
		WithClock(func() time.Time { return testStart }),
	)
	return ts
}

func (ts *testSet) logContents(t *testing.T) string {
	t.Helper()
	content, err := os.ReadFile(ts.set.LogPath())
	if err != nil {
		t.Fatalf("Failed to read run log: %v", err)
	}
	return string(content)
}

func (ts *testSet) run(t *testing.T, ctx context.Context) {
	t.Helper()
	if err := ts.set.Run(ctx); err != nil {
		t.Fatalf("Run() = %v", err)
	}
}

func TestNewSet(t *testing.T) {
	ts := newTestSet(t, &fakeLauncher{}, StaticSpec(1, 2))

	if _, active := ts.set.Current(); active {
		t.Error("Expected no active simulation before Run")
	}
	if !strings.HasSuffix(ts.set.LogPath(), "GPSSIM-2024-01-15_10-30-00.csv") {
		t.Errorf("Unexpected log path %s", ts.set.LogPath())
	}

	status := ts.set.Status()
	if status.Active != -1 || status.Total != 1 {
		t.Errorf("Expected active -1 of 1, got %d of %d", status.Active, status.Total)
	}
	if status.SessionID == "" {
		t.Error("Expected a session ID")
	}
}

func TestRunEmptySet(t *testing.T) {
	ts := newTestSet(t, &fakeLauncher{})
	if err := ts.set.Run(context.Background()); !errors.Is(err, ErrEmptySet) {
		t.Errorf("Expected ErrEmptySet, got %v", err)
	}
}

func TestRunAdvancesWhenSimulationsFinish(t *testing.T) {
	launcher := &fakeLauncher{processes: []*fakeProcess{scriptedProcess(false), scriptedProcess(false)}}
	ts := newTestSet(t, launcher, StaticSpec(1, 2), DynamicSpec(writeMotionFile(t, 10)))

	ts.run(t, context.Background())

	if len(launcher.args) != 2 {
		t.Fatalf("Expected 2 launches, got %d", len(launcher.args))
	}
	if launcher.args[0][2] != "-l" || launcher.args[1][2] != "-u" {
		t.Errorf("Expected static then dynamic launch, got %v", launcher.args)
	}
	if _, active := ts.set.Current(); active {
		t.Error("Expected no active simulation after Run")
	}

	log := ts.logContents(t)
	if strings.Count(log, "StaticSimulation") != 1 || strings.Count(log, "DynamicSimulation") != 1 {
		t.Errorf("Expected one record per simulation, got:\n%s", log)
	}
	if got := ts.recorder.switches[SwitchFinished]; got != 1 {
		t.Errorf("Expected 1 finished switch, got %d", got)
	}
	if !strings.Contains(ts.out.String(), "Simulation set ending...") {
		t.Error("Expected set ending message")
	}
}

func TestRunOperatorNavigation(t *testing.T) {
	launcher := &fakeLauncher{}
	ts := newTestSet(t, launcher, StaticSpec(1, 1), StaticSpec(2, 2), StaticSpec(3, 3))

	ts.commands.Send(Next)
	ts.commands.Send(Previous)
	ts.commands.Send(Quit)
	ts.run(t, context.Background())

	if len(launcher.args) != 3 {
		t.Fatalf("Expected 3 launches, got %d", len(launcher.args))
	}
	for i, want := range []string{"1,1", "2,2", "1,1"} {
		if got := launcher.args[i][3]; got != want {
			t.Errorf("Launch %d: expected location %s, got %s", i, want, got)
		}
	}

	// Every launched process was shut down before the next one started
	for i, p := range launcher.launched {
		if p.quits != 1 || p.running {
			t.Errorf("Process %d: expected one quit and stopped, got quits=%d running=%v", i, p.quits, p.running)
		}
	}

	if got := strings.Count(ts.logContents(t), "simulation_type"); got != 3 {
		t.Errorf("Expected 3 run records, got %d", got)
	}
	if want := []int{0, 1, 0}; !slices.Equal(ts.recorder.started, want) {
		t.Errorf("Expected started %v, got %v", want, ts.recorder.started)
	}
	if ts.recorder.switches[SwitchNext] != 1 || ts.recorder.switches[SwitchPrevious] != 1 {
		t.Errorf("Unexpected switches %v", ts.recorder.switches)
	}
	if ts.recorder.finished != 1 {
		t.Errorf("Expected 1 finished set, got %d", ts.recorder.finished)
	}
}

func TestRunAtEnds(t *testing.T) {
	launcher := &fakeLauncher{}
	ts := newTestSet(t, launcher, StaticSpec(1, 1))

	ts.commands.Send(Previous)
	ts.commands.Send(Next)
	ts.commands.Send(Quit)
	ts.run(t, context.Background())

	for _, want := range []string{"Already on first simulation", "Already on last simulation"} {
		if !strings.Contains(ts.out.String(), want) {
			t.Errorf("Expected output to contain %q", want)
		}
	}
	if len(launcher.args) != 1 {
		t.Errorf("Expected 1 launch, got %d", len(launcher.args))
	}
	if got := strings.Count(ts.logContents(t), "simulation_type"); got != 1 {
		t.Errorf("Expected 1 run record, got %d", got)
	}
}

func TestRunContextCancelled(t *testing.T) {
	launcher := &fakeLauncher{}
	ts := newTestSet(t, launcher, StaticSpec(1, 1), StaticSpec(2, 2))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ts.run(t, ctx)

	if len(launcher.launched) != 1 {
		t.Fatalf("Expected 1 launch, got %d", len(launcher.launched))
	}
	if launcher.launched[0].quits != 1 {
		t.Errorf("Expected the process to be quit, got %d quits", launcher.launched[0].quits)
	}
	if _, active := ts.set.Current(); active {
		t.Error("Expected no active simulation after cancel")
	}
}

func TestRunSkipsSimulationThatFailsToLaunch(t *testing.T) {
	launcher := &fakeLauncher{
		failures:  map[int]bool{0: true},
		processes: []*fakeProcess{scriptedProcess(false)},
	}
	ts := newTestSet(t, launcher, StaticSpec(1, 1), StaticSpec(2, 2))

	ts.run(t, context.Background())

	if len(launcher.args) != 2 {
		t.Errorf("Expected 2 launch attempts, got %d", len(launcher.args))
	}
	if want := []int{0, 1}; !slices.Equal(ts.recorder.started, want) {
		t.Errorf("Expected started %v, got %v", want, ts.recorder.started)
	}
}

func TestSwitchToOutOfRange(t *testing.T) {
	launcher := &fakeLauncher{}
	ts := newTestSet(t, launcher, StaticSpec(1, 1), StaticSpec(2, 2))

	if ts.set.SwitchTo(-1) || ts.set.SwitchTo(2) {
		t.Error("Expected out of range switches to fail")
	}
	if _, active := ts.set.Current(); active {
		t.Error("Expected no active simulation")
	}
	if len(launcher.args) != 0 {
		t.Errorf("Expected no launches, got %d", len(launcher.args))
	}

	if !ts.set.SwitchTo(1) {
		t.Fatal("Expected switch to 1 to succeed")
	}
	if index, active := ts.set.Current(); !active || index != 1 {
		t.Errorf("Expected active simulation 1, got %d (active=%v)", index, active)
	}

	// Nothing was active before, so nothing was logged
	if _, err := os.Stat(ts.set.LogPath()); !os.IsNotExist(err) {
		t.Errorf("Expected no run log yet, got %v", err)
	}

	if ts.set.SwitchTo(5) {
		t.Error("Expected switch to 5 to fail")
	}
	if index, _ := ts.set.Current(); index != 1 {
		t.Errorf("Expected simulation 1 to stay active, got %d", index)
	}
}

func TestStatusObservers(t *testing.T) {
	launcher := &fakeLauncher{}
	ts := newTestSet(t, launcher, StaticSpec(1, 1), StaticSpec(2, 2))

	var mu sync.Mutex
	var seen []Status
	ts.set.AddObserver(func(s Status) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, s)
	})

	ts.set.SwitchTo(1)
	status := ts.set.Status()
	if status.Active != 1 || !status.Running {
		t.Errorf("Expected simulation 1 running, got %+v", status)
	}
	if !strings.Contains(status.Simulation, "latitude=2") {
		t.Errorf("Unexpected simulation description %q", status.Simulation)
	}

	waitFor(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 1
	})
}

func TestSetBuilder(t *testing.T) {
	launcher := &fakeLauncher{}
	set := NewSetBuilder(launcher).
		AddDynamic("walk.csv").
		AddDynamic("walk.csv", WithRunDuration(30), WithGain(-2)).
		AddStatic(27.417747, -112.086086, WithRunDuration(10), WithGain(-2)).
		Build(WithLogDir(t.TempDir()))

	if len(set.sims) != 3 {
		t.Fatalf("Expected 3 simulations, got %d", len(set.sims))
	}
	if set.sims[0].Spec().Kind != Dynamic || set.sims[2].Spec().Kind != Static {
		t.Error("Simulations built in the wrong order")
	}
	if got := *set.sims[1].Spec().RunDuration; got != 30 {
		t.Errorf("Expected run duration 30, got %d", got)
	}
	if set.cursor != -1 {
		t.Errorf("Expected cursor -1, got %d", set.cursor)
	}
}
