package metrics

import (
	"time"
)

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordAnalysis records one analysis run
func (r *Registry) RecordAnalysis(operation, status string, duration time.Duration) {
	r.AnalysesTotal.WithLabelValues(operation, status).Inc()
	r.AnalysisDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordPathSearch records a path search; result is "found" or "none"
func (r *Registry) RecordPathSearch(algorithm string, found bool) {
	result := "none"
	if found {
		result = "found"
	}
	r.PathSearchesTotal.WithLabelValues(algorithm, result).Inc()
}

// RecordPlan records the outcome of a capacity plan
func (r *Registry) RecordPlan(candidates, upgrades, bottlenecks int) {
	r.PlanCandidates.Observe(float64(candidates))
	r.UpgradesProposedTotal.Add(float64(upgrades))
	r.BottlenecksFoundTotal.Add(float64(bottlenecks))
}

// RecordActivation records a topology activation attempt
func (r *Registry) RecordActivation(success bool) {
	if success {
		r.TopologyActivationsTotal.WithLabelValues("success").Inc()
	} else {
		r.TopologyActivationsTotal.WithLabelValues("error").Inc()
	}
}

// RecordBandwidthUpdates records the outcome of a bandwidth refresh
func (r *Registry) RecordBandwidthUpdates(updated, failed int) {
	r.BandwidthUpdatesTotal.WithLabelValues("updated").Add(float64(updated))
	r.BandwidthUpdatesTotal.WithLabelValues("error").Add(float64(failed))
}

// UpdateTopologyMetrics updates the gauges describing the active topology
func (r *Registry) UpdateTopologyMetrics(devices, links, isps, issues, congested int, version uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.TopologyDevices.Set(float64(devices))
	r.TopologyLinks.Set(float64(links))
	r.TopologyISPs.Set(float64(isps))
	r.TopologyIssues.Set(float64(issues))
	r.CongestedLinks.Set(float64(congested))
	r.TopologyVersion.Set(float64(version))
}

// ResetTopologyMetrics zeroes the topology gauges when nothing is active
func (r *Registry) ResetTopologyMetrics() {
	r.UpdateTopologyMetrics(0, 0, 0, 0, 0, 0)
}
