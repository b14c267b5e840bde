// Package metrics holds the Prometheus instruments of the server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterRequests       *prometheus.CounterVec
	CounterWorkoutsSaved  prometheus.Counter
	CounterDeliveries     *prometheus.CounterVec
	CounterLoadFailures   prometheus.Counter
	CounterRequestsPanics prometheus.Counter

	// gauges
	GaugeRecords  prometheus.Gauge
	GaugeRequests prometheus.Gauge

	// histograms
	HistRequestDuration  *prometheus.HistogramVec
	HistDeliveryDuration prometheus.Histogram
}

// NewRegistry returns a registry with the Go runtime and process collectors
// plus any extra collectors, such as the database pool.
func NewRegistry(extra ...prometheus.Collector) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	for _, c := range extra {
		reg.MustRegister(c)
	}
	return reg
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("liftlog", "test", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "requests_total",
		Help:      "The total number of incoming requests",
	}, []string{"method", "route", "status"})
	counterWorkoutsSaved := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "workouts_saved_total",
		Help:      "The total number of saved workouts",
	})
	counterDeliveries := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "webhook_deliveries_total",
		Help:      "Webhook delivery attempts by result",
	}, []string{"result"})
	counterLoadFailures := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "store_load_failures_total",
		Help:      "Times the workout store could not be decoded",
	})
	counterRequestsPanics := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "handle_request_panic_total",
		Help:      "The total number of recovered handler panics",
	})

	gaugeRecords := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "workout_records",
		Help:      "Number of workout records in the store",
	})
	gaugeRequests := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "current_requests",
		Help:      "Current number of requests served",
	})

	histRequestDuration := factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
			Name:      "request_duration_seconds",
			Help:      "Duration of requests in seconds",
		},
		[]string{"route"},
	)
	histDeliveryDuration := factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			Name:      "webhook_duration_seconds",
			Help:      "Duration of webhook calls in seconds",
		},
	)

	return &Manager{
		CounterRequests:       counterRequests,
		CounterWorkoutsSaved:  counterWorkoutsSaved,
		CounterDeliveries:     counterDeliveries,
		CounterLoadFailures:   counterLoadFailures,
		CounterRequestsPanics: counterRequestsPanics,
		GaugeRecords:          gaugeRecords,
		GaugeRequests:         gaugeRequests,
		HistRequestDuration:   histRequestDuration,
		HistDeliveryDuration:  histDeliveryDuration,
	}
}

// ObserveDelivery counts one webhook attempt.
func (m *Manager) ObserveDelivery(ok bool, seconds float64) {
	result := "failure"
	if ok {
		result = "success"
	}
	m.CounterDeliveries.WithLabelValues(result).Inc()
	m.HistDeliveryDuration.Observe(seconds)
}
