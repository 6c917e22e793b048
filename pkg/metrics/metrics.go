// Package metrics exposes pipeline run metrics in the Prometheus format.
//
// Metrics:
//   - swaggitor_pipeline_runs_total: finished runs by trigger event and outcome
//   - swaggitor_pipeline_run_duration_seconds: run duration by last stage reached
//   - swaggitor_pipeline_diagnostics_total: published diagnostics
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggitor/swaggitor/pkg/pipeline"
)

const namespace = "swaggitor"

// Collector records pipeline runs. It implements pipeline.Observer.
type Collector struct {
	registry *prometheus.Registry

	runsTotal        *prometheus.CounterVec
	runDuration      *prometheus.HistogramVec
	diagnosticsTotal prometheus.Counter
}

// NewCollector creates the pipeline metrics and registers them with registry.
// A nil registry gets a fresh one.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	c := &Collector{
		registry: registry,
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "runs_total",
				Help:      "Total number of finished validation runs",
			},
			[]string{"event", "outcome"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "run_duration_seconds",
				Help:      "Duration of validation runs in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10), // 100µs to 26s
			},
			[]string{"stage"},
		),
		diagnosticsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "diagnostics_total",
				Help:      "Total number of published diagnostics",
			},
		),
	}
	registry.MustRegister(c.runsTotal, c.runDuration, c.diagnosticsTotal)
	return c
}

// RunFinished records one finished run
func (c *Collector) RunFinished(event pipeline.Event, result *pipeline.Result) {
	c.runsTotal.WithLabelValues(event.String(), result.OutcomeLabel()).Inc()
	c.runDuration.WithLabelValues(string(result.Stage)).Observe(result.Duration.Seconds())
	if !result.Stale && result.Err == nil {
		c.diagnosticsTotal.Add(float64(len(result.Diagnostics)))
	}
}

// Handler returns an HTTP handler for the metrics endpoint
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}
