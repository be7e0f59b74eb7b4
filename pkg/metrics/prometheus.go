// Package metrics records provisioning step outcomes as Prometheus metrics.
//
// Provisioning is a one-shot process, so metrics are not served; they are
// written in the node_exporter textfile format at the end of a run.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "takopi"

// Step duration buckets in seconds. Agent installers and JDK downloads take
// minutes on slow links.
var defaultBuckets = []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600}

// ProvisionMetrics wraps the collectors of a provisioning run.
type ProvisionMetrics struct {
	registry *prometheus.Registry

	stepDuration *prometheus.HistogramVec
	stepsTotal   *prometheus.CounterVec
	lastRun      prometheus.Gauge
}

// New creates metrics on a private registry.
func New(buckets []float64) *ProvisionMetrics {
	if len(buckets) == 0 {
		buckets = defaultBuckets
	}

	pm := &ProvisionMetrics{
		registry: prometheus.NewRegistry(),

		stepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: "provision",
				Name:      "step_duration_seconds",
				Help:      "Duration of provisioning steps",
				Buckets:   buckets,
			},
			[]string{"step", "method", "status"},
		),

		stepsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "provision",
				Name:      "steps_total",
				Help:      "Provisioning steps by outcome",
			},
			[]string{"status"},
		),

		lastRun: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: "provision",
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time the last provisioning run finished",
			},
		),
	}

	pm.registry.MustRegister(pm.stepDuration, pm.stepsTotal, pm.lastRun)
	return pm
}

// ObserveStep records one step outcome. Skipped steps are counted but have
// no duration sample.
func (pm *ProvisionMetrics) ObserveStep(step, method, status string, d time.Duration) {
	pm.stepsTotal.WithLabelValues(status).Inc()
	if status == "skipped" || status == "pending" {
		return
	}
	pm.stepDuration.WithLabelValues(step, method, status).Observe(d.Seconds())
}

// RunFinished stamps the end of a run.
func (pm *ProvisionMetrics) RunFinished(at time.Time) {
	pm.lastRun.Set(float64(at.Unix()))
}

// Registry returns the private registry.
func (pm *ProvisionMetrics) Registry() *prometheus.Registry {
	return pm.registry
}

// WriteTextfile writes every metric to path atomically.
func (pm *ProvisionMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, pm.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
