package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initTopologyMetrics() {
	r.TopologyDevices = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netplan_topology_devices",
			Help: "Number of devices in the active topology",
		},
	)

	r.TopologyLinks = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netplan_topology_links",
			Help: "Number of links in the active topology",
		},
	)

	r.TopologyISPs = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netplan_topology_isps",
			Help: "Number of ISP egress devices in the active topology",
		},
	)

	r.TopologyIssues = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netplan_topology_issues",
			Help: "Number of records ignored while indexing the active topology",
		},
	)

	r.TopologyVersion = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netplan_topology_version",
			Help: "Version of the active topology view",
		},
	)

	r.TopologyActivationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netplan_topology_activations_total",
			Help: "Total number of topology activations",
		},
		[]string{"status"},
	)

	r.BandwidthUpdatesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netplan_bandwidth_updates_total",
			Help: "Total number of link bandwidth samples received",
		},
		[]string{"result"},
	)

	r.CongestedLinks = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netplan_congested_links",
			Help: "Number of links above the bottleneck utilisation threshold",
		},
	)
}
