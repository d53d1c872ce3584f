package prometheus

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DefaultRegistry is the default Prometheus registry
	DefaultRegistry = prometheus.NewRegistry()

	// DefaultRegisterer is the default Prometheus registerer
	DefaultRegisterer = prometheus.WrapRegistererWith(prometheus.Labels{"service": "promisekeeper"}, DefaultRegistry)

	metricsOnce sync.Once
	metrics     *Metrics
)

// Metrics holds all Prometheus metrics for a PromiseKeeper.
type Metrics struct {
	// Task lifecycle metrics
	TasksSubmitted prometheus.Counter
	TasksCompleted prometheus.Counter
	TasksFailed    prometheus.Counter
	TaskDuration   prometheus.Histogram

	// Notify callback metrics
	NotifyFailures prometheus.Counter

	// Pool metrics
	QueueDepth     prometheus.Gauge
	InFlightTasks  prometheus.Gauge
	WorkersRunning prometheus.Gauge
}

// GetMetrics returns the global metrics instance.
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = NewMetrics(DefaultRegisterer)
	})
	return metrics
}

// NewMetrics creates a new metrics collection registered on the given
// registerer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = DefaultRegisterer
	}

	return &Metrics{
		TasksSubmitted: promauto.With(registerer).NewCounter(
			prometheus.CounterOpts{
				Name: "promisekeeper_tasks_submitted_total",
				Help: "Total number of tasks submitted",
			},
		),
		TasksCompleted: promauto.With(registerer).NewCounter(
			prometheus.CounterOpts{
				Name: "promisekeeper_tasks_completed_total",
				Help: "Total number of tasks that finished normally",
			},
		),
		TasksFailed: promauto.With(registerer).NewCounter(
			prometheus.CounterOpts{
				Name: "promisekeeper_tasks_failed_total",
				Help: "Total number of tasks that finished with a captured failure",
			},
		),
		TaskDuration: promauto.With(registerer).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "promisekeeper_task_duration_seconds",
				Help:    "Task execution duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		NotifyFailures: promauto.With(registerer).NewCounter(
			prometheus.CounterOpts{
				Name: "promisekeeper_notify_failures_total",
				Help: "Total number of notify callbacks that panicked",
			},
		),
		QueueDepth: promauto.With(registerer).NewGauge(
			prometheus.GaugeOpts{
				Name: "promisekeeper_queue_depth",
				Help: "Number of tasks currently queued",
			},
		),
		InFlightTasks: promauto.With(registerer).NewGauge(
			prometheus.GaugeOpts{
				Name: "promisekeeper_inflight_tasks",
				Help: "Number of tasks currently executing",
			},
		),
		WorkersRunning: promauto.With(registerer).NewGauge(
			prometheus.GaugeOpts{
				Name: "promisekeeper_workers_running",
				Help: "Number of running worker goroutines",
			},
		),
	}
}

// ObserveTask records one finished task execution.
func (m *Metrics) ObserveTask(duration time.Duration, err error) {
	m.TaskDuration.Observe(duration.Seconds())
	if err != nil {
		m.TasksFailed.Inc()
	} else {
		m.TasksCompleted.Inc()
	}
}
