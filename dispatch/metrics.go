// metrics.go - Prometheus-Metriken des Dispatchers
package dispatch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	statusCompleted = "completed"
	statusFailed    = "failed"
)

// Metrics tracks submitted, pending and completed tasks. A nil *Metrics records
// nothing.
type Metrics struct {
	submitted *prometheus.CounterVec
	completed *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	pending   prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg. A nil reg leaves
// them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		submitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fanny_tasks_submitted_total",
				Help: "Total number of tasks submitted to the dispatcher.",
			},
			[]string{"task"},
		),
		completed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fanny_tasks_completed_total",
				Help: "Total number of tasks that finished, by outcome.",
			},
			[]string{"task", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fanny_task_duration_seconds",
				Help:    "Time spent executing a task against its network.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"task"},
		),
		pending: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "fanny_tasks_pending",
				Help: "Number of tasks waiting for their network.",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(m.submitted, m.completed, m.duration, m.pending)
	}
	return m
}

func (m *Metrics) taskSubmitted(name string) {
	if m == nil {
		return
	}
	m.submitted.WithLabelValues(name).Inc()
}

func (m *Metrics) taskDone(name string, err error, d time.Duration) {
	if m == nil {
		return
	}
	status := statusCompleted
	if err != nil {
		status = statusFailed
	}
	m.completed.WithLabelValues(name, status).Inc()
	m.duration.WithLabelValues(name).Observe(d.Seconds())
}

func (m *Metrics) setPending(n int) {
	if m == nil {
		return
	}
	m.pending.Set(float64(n))
}
