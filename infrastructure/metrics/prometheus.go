package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"ui_flow_runner/domain/entities"
	"ui_flow_runner/domain/interfaces"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusRecorder counts steps and scenario outcomes on its own registry
type PrometheusRecorder struct {
	registry *prometheus.Registry

	scenarios *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	steps     *prometheus.CounterVec
}

// NewPrometheusRecorder - creates new recorder with a private registry
func NewPrometheusRecorder() *PrometheusRecorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &PrometheusRecorder{
		registry: registry,
		scenarios: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "flowrunner",
				Name:      "scenarios_total",
				Help:      "Total number of scenarios run, by outcome",
			},
			[]string{"outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "flowrunner",
				Name:      "scenario_duration_seconds",
				Help:      "Scenario wall-clock duration in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.5, 2, 8), // 0.5s to ~64s
			},
			[]string{"outcome"},
		),
		steps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "flowrunner",
				Name:      "steps_total",
				Help:      "Total number of steps completed, by action",
			},
			[]string{"action"},
		),
	}
}

// ObserveStep - counts one completed step
func (r *PrometheusRecorder) ObserveStep(action entities.StepAction) {
	r.steps.WithLabelValues(string(action)).Inc()
}

// ObserveResult - counts a finished scenario and records its duration
func (r *PrometheusRecorder) ObserveResult(result entities.RunResult) {
	outcome := string(result.Outcome)
	r.scenarios.WithLabelValues(outcome).Inc()
	r.duration.WithLabelValues(outcome).Observe(result.Elapsed.Seconds())
}

// Registry - exposes the registry the metrics live on
func (r *PrometheusRecorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile - writes every metric in the text exposition format, for the
// node exporter textfile collector
func (r *PrometheusRecorder) WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create metrics directory: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

var _ interfaces.Recorder = (*PrometheusRecorder)(nil)
