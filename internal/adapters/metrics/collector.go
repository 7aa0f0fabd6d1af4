// Package metrics records bring-up runs as Prometheus metrics.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/felixgeelhaar/bringup/internal/domain/bringup"
)

const namespace = "bringup"

// Step results used as label values.
const (
	ResultSucceeded = "succeeded"
	ResultFailed    = "failed"
)

// Collector implements bringup.Observer using Prometheus.
// Each Collector owns its registry, so several can coexist in one process.
type Collector struct {
	registry *prometheus.Registry

	runsStarted    *prometheus.CounterVec
	runsFinished   *prometheus.CounterVec
	runsInProgress prometheus.Gauge
	lastRunSuccess *prometheus.GaugeVec
	runDuration    *prometheus.HistogramVec
	stepsExecuted  *prometheus.CounterVec
	stepDuration   *prometheus.HistogramVec
	planSteps      *prometheus.GaugeVec
}

// NewCollector creates a Collector with a fresh registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		runsStarted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_started_total",
				Help:      "Total number of bring-up runs started",
			},
			[]string{"plan"},
		),
		runsFinished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_finished_total",
				Help:      "Total number of bring-up runs finished, by terminal state",
			},
			[]string{"plan", "state"},
		),
		runsInProgress: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "runs_in_progress",
				Help:      "Number of bring-up runs currently executing",
			},
		),
		lastRunSuccess: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_succeeded",
				Help:      "1 if the most recent run of the plan succeeded, 0 otherwise",
			},
			[]string{"plan"},
		),
		runDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Bring-up run duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"plan"},
		),
		stepsExecuted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "steps_executed_total",
				Help:      "Total number of step actions run, by category and result",
			},
			[]string{"category", "result"},
		),
		stepDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "step_duration_seconds",
				Help:      "Step action duration in seconds",
				Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
			},
			[]string{"category"},
		),
		planSteps: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "plan_steps",
				Help:      "Number of steps in the plan",
			},
			[]string{"plan"},
		),
	}
}

// Registry returns the registry holding the collector's metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RunStarted records the start of a run.
func (c *Collector) RunStarted(plan *bringup.Plan, _ string) {
	c.runsStarted.WithLabelValues(plan.Name()).Inc()
	c.planSteps.WithLabelValues(plan.Name()).Set(float64(plan.Len()))
	c.runsInProgress.Inc()
}

// StepFinished records one executed step.
func (c *Collector) StepFinished(_ string, outcome bringup.StepOutcome) {
	result := ResultSucceeded
	if !outcome.Success() {
		result = ResultFailed
	}
	c.stepsExecuted.WithLabelValues(outcome.Category.String(), result).Inc()
	c.stepDuration.WithLabelValues(outcome.Category.String()).Observe(outcome.Duration.Seconds())
}

// RunFinished records the terminal state of a run.
func (c *Collector) RunFinished(report *bringup.Report) {
	c.runsInProgress.Dec()
	c.runsFinished.WithLabelValues(report.Plan, report.State.String()).Inc()
	c.runDuration.WithLabelValues(report.Plan).Observe(report.Duration.Seconds())

	success := 0.0
	if report.Succeeded() {
		success = 1
	}
	c.lastRunSuccess.WithLabelValues(report.Plan).Set(success)
}

// WriteTextfile writes all metrics in the Prometheus text format, e.g. for
// the node_exporter textfile collector. The write is atomic.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics file: %w", err)
	}
	return nil
}

var _ bringup.Observer = (*Collector)(nil)
