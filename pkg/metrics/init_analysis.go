package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initAnalysisMetrics() {
	r.AnalysesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netplan_analyses_total",
			Help: "Total number of analyses run, by operation and status",
		},
		[]string{"operation", "status"},
	)

	r.AnalysisDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "netplan_analysis_duration_seconds",
			Help:    "Analysis duration in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
		[]string{"operation"},
	)

	r.PathSearchesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netplan_path_searches_total",
			Help: "Total number of path searches, by algorithm and result",
		},
		[]string{"algorithm", "result"},
	)

	r.PlanCandidates = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "netplan_plan_candidates",
			Help:    "Number of route analyses returned per capacity plan",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)

	r.UpgradesProposedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "netplan_upgrades_proposed_total",
			Help: "Total number of link upgrades proposed by capacity plans",
		},
	)

	r.BottlenecksFoundTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "netplan_bottlenecks_found_total",
			Help: "Total number of bottleneck links reported by capacity plans",
		},
	)

	r.UnreachableRoutesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "netplan_unreachable_routes_total",
			Help: "Total number of unreachable ISP routes in generated routing tables",
		},
	)
}
