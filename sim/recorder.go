package sim

import "time"

// Recorder receives lifecycle events from simulations and sets
type Recorder interface {
	SimulationStarted(index int, kind Kind)
	SimulationEnded(kind Kind, elapsed time.Duration)
	Switched(reason string)
	ShutdownSignal(signal string)
	SetFinished()
}

// Reasons passed to Recorder.Switched
const (
	SwitchNext     = "next"
	SwitchPrevious = "previous"
	SwitchFinished = "finished"
)

type nopRecorder struct{}

func (nopRecorder) SimulationStarted(int, Kind)         {}
func (nopRecorder) SimulationEnded(Kind, time.Duration) {}
func (nopRecorder) Switched(string)                     {}
func (nopRecorder) ShutdownSignal(string)               {}
func (nopRecorder) SetFinished()                        {}
