package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BackendMetrics tracks calls made to the analysis backend.
type BackendMetrics struct {
	callTotal    *prometheus.CounterVec
	callDuration *prometheus.HistogramVec
	callInFlight prometheus.Gauge
}

func NewBackendMetrics(registry prometheus.Registerer, service string) *BackendMetrics {
	callTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "blood",
			Subsystem: "backend",
			Name:      "calls_total",
			Help:      "Total backend calls by operation and status code.",
		},
		[]string{"service", "operation", "status"},
	)
	callDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "blood",
			Subsystem: "backend",
			Name:      "call_duration_seconds",
			Help:      "Backend call duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"service", "operation"},
	)
	callInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "blood",
			Subsystem: "backend",
			Name:      "calls_in_flight",
			Help:      "Number of in-flight backend calls.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(callTotal, callDuration, callInFlight)

	return &BackendMetrics{
		callTotal:    callTotal,
		callDuration: callDuration,
		callInFlight: callInFlight,
	}
}

// StartCall returns a func that records the outcome of the call.
func (m *BackendMetrics) StartCall(service, operation string) func(statusCode int, err error) {
	start := time.Now()
	m.callInFlight.Inc()
	return func(statusCode int, err error) {
		m.callInFlight.Dec()

		status := strconv.Itoa(statusCode)
		if statusCode == 0 {
			status = "transport_error"
			if err == nil {
				status = "ok"
			}
		}
		m.callTotal.WithLabelValues(service, operation, status).Inc()
		m.callDuration.WithLabelValues(service, operation).Observe(time.Since(start).Seconds())
	}
}
