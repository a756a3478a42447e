package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace     = "netplan"
	httpSubsystem = "http"
)

// requestLatencyBuckets spans cached health probes up to full capacity plans
// over the larger seeded topologies
var requestLatencyBuckets = []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

// responseSizeBuckets spans error bodies up to full topology documents and
// routing tables for every device
var responseSizeBuckets = []float64{128, 512, 2048, 8192, 32768, 131072, 524288}

func (r *Registry) initHTTPMetrics() {
	factory := promauto.With(r.registry)
	labels := []string{"method", "path", "status"}

	r.HTTPRequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: httpSubsystem,
		Name:      "requests_total",
		Help:      "HTTP requests served, by method, route pattern and status",
	}, labels)

	r.HTTPRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: httpSubsystem,
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds, including the analysis behind it",
		Buckets:   requestLatencyBuckets,
	}, labels)

	r.HTTPRequestsInFlight = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: httpSubsystem,
		Name:      "requests_in_flight",
		Help:      "HTTP requests currently being processed",
	})

	r.HTTPResponseSizeBytes = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: httpSubsystem,
		Name:      "response_size_bytes",
		Help:      "HTTP response body size in bytes, by method and route pattern",
		Buckets:   responseSizeBuckets,
	}, []string{"method", "path"})
}
