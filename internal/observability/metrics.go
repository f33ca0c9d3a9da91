// Package observability exposes Prometheus metrics for a simulation set.
package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Bucknalla/geobeam/sim"
)

// SetCollector bundles the simulation set metrics. It implements sim.Recorder.
type SetCollector struct {
	gatherer prometheus.Gatherer

	ActiveIndex     prometheus.Gauge
	Switches        *prometheus.CounterVec
	Runs            *prometheus.CounterVec
	RunDurations    prometheus.Histogram
	ShutdownSignals *prometheus.CounterVec
	SetsFinished    prometheus.Counter
}

var _ sim.Recorder = (*SetCollector)(nil)

// NewSetCollector registers the metrics against reg, defaulting to the
// global Prometheus registry when nil.
func NewSetCollector(reg prometheus.Registerer) (*SetCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &SetCollector{
		gatherer: gatherer,
		ActiveIndex: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "geobeam_active_simulation_index",
			Help: "Index of the active simulation in the set, -1 when none is active.",
		}),
		Switches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "geobeam_simulation_switches_total",
			Help: "Switches between simulations, labeled by reason.",
		}, []string{"reason"}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "geobeam_simulation_runs_total",
			Help: "Simulator runs started, labeled by simulation type.",
		}, []string{"type"}),
		RunDurations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "geobeam_simulation_run_seconds",
			Help:    "Wall clock duration of simulator runs.",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800, 3600},
		}),
		ShutdownSignals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "geobeam_shutdown_signals_total",
			Help: "Signals sent to simulator processes while ending them, labeled by signal.",
		}, []string{"signal"}),
		SetsFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "geobeam_simulation_sets_finished_total",
			Help: "Simulation sets that ran to completion.",
		}),
	}
	c.ActiveIndex.Set(-1)

	for _, collector := range []prometheus.Collector{
		c.ActiveIndex, c.Switches, c.Runs, c.RunDurations, c.ShutdownSignals, c.SetsFinished,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}
	return c, nil
}

// Handler exposes the registered metrics.
func (c *SetCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

func (c *SetCollector) SimulationStarted(index int, kind sim.Kind) {
	c.ActiveIndex.Set(float64(index))
	c.Runs.WithLabelValues(kind.String()).Inc()
}

func (c *SetCollector) SimulationEnded(kind sim.Kind, elapsed time.Duration) {
	c.RunDurations.Observe(elapsed.Seconds())
}

func (c *SetCollector) Switched(reason string) {
	c.Switches.WithLabelValues(reason).Inc()
}

func (c *SetCollector) ShutdownSignal(signal string) {
	c.ShutdownSignals.WithLabelValues(signal).Inc()
}

func (c *SetCollector) SetFinished() {
	c.ActiveIndex.Set(-1)
	c.SetsFinished.Inc()
}
