package api

import (
	"context"
	"time"

	"github.com/dd0wney/cluso-netplan/pkg/metrics"
)

// metricsRecorder feeds the HTTP middleware into the Prometheus registry
type metricsRecorder struct {
	registry *metrics.Registry
}

func (m metricsRecorder) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.registry.RecordHTTPRequest(method, path, status, duration)
}

func (m metricsRecorder) RecordResponseSize(method, path string, size float64) {
	m.registry.HTTPResponseSizeBytes.WithLabelValues(method, path).Observe(size)
}

func (m metricsRecorder) IncHTTPRequestsInFlight() { m.registry.HTTPRequestsInFlight.Inc() }

func (m metricsRecorder) DecHTTPRequestsInFlight() { m.registry.HTTPRequestsInFlight.Dec() }

// systemMetricsInterval is how often runtime gauges are refreshed
const systemMetricsInterval = 10 * time.Second

// updateMetricsPeriodically refreshes uptime and runtime gauges until ctx ends
func (s *Server) updateMetricsPeriodically(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	s.metricsRegistry.UpdateSystemMetrics(s.startTime)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.metricsRegistry.UpdateSystemMetrics(s.startTime)
		}
	}
}
