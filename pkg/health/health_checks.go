package health

import (
	"context"
	"runtime"
	"time"

	"github.com/dd0wney/cluso-netplan/pkg/topology"
)

// Common health check functions

// SimpleCheck creates a simple health check that always returns healthy
func SimpleCheck(name string) CheckFunc {
	return func(ctx context.Context) Check {
		return Check{
			Name:        name,
			Status:      StatusHealthy,
			LastChecked: time.Now(),
		}
	}
}

// TopologyCheck reports whether a topology is active. An active topology
// whose index skipped broken records is degraded, not unhealthy: analyses
// still run over the usable part.
func TopologyCheck(view func() *topology.View) CheckFunc {
	return func(ctx context.Context) Check {
		check := Check{
			Name:    "topology",
			Details: make(map[string]any),
		}

		v := view()
		if v == nil {
			check.Status = StatusUnhealthy
			check.Message = "No active topology"
			return check
		}

		issues := len(v.Index.Issues())
		check.Details["topology_id"] = v.Topology.ID
		check.Details["version"] = v.Version
		check.Details["devices"] = len(v.Index.Devices())
		check.Details["links"] = len(v.Index.Links())
		check.Details["isps"] = len(v.Index.ISPs())
		check.Details["issues"] = issues

		switch {
		case len(v.Index.ISPs()) == 0:
			check.Status = StatusDegraded
			check.Message = "Active topology has no ISP egress"
		case issues > 0:
			check.Status = StatusDegraded
			check.Message = "Active topology has ignored records"
		default:
			check.Status = StatusHealthy
			check.Message = "Topology active"
		}
		return check
	}
}

// SourceCheck creates a health check for the topology source
func SourceCheck(name string, ping func(ctx context.Context) error) CheckFunc {
	return func(ctx context.Context) Check {
		check := Check{
			Name:    "source",
			Details: map[string]any{"kind": name},
		}

		if ping == nil {
			check.Status = StatusHealthy
			check.Message = "Built-in source"
			return check
		}

		if err := ping(ctx); err != nil {
			check.Status = StatusUnhealthy
			check.Message = err.Error()
		} else {
			check.Status = StatusHealthy
			check.Message = "Connected"
		}

		return check
	}
}

// RuntimeMemory reads heap allocation and OS memory from the Go runtime
func RuntimeMemory() (alloc, sys uint64) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc, m.Sys
}

// MemoryCheck creates a health check for memory usage
func MemoryCheck(getUsage func() (alloc, sys uint64)) CheckFunc {
	return func(ctx context.Context) Check {
		check := Check{
			Name:    "memory",
			Details: make(map[string]any),
		}

		alloc, sys := getUsage()

		check.Details["alloc_bytes"] = alloc
		check.Details["sys_bytes"] = sys

		if sys == 0 {
			check.Status = StatusHealthy
			check.Message = "Memory usage unknown"
			return check
		}

		usagePercent := float64(alloc) / float64(sys) * 100
		if usagePercent > 90 {
			check.Status = StatusDegraded
			check.Message = "High memory usage"
		} else {
			check.Status = StatusHealthy
			check.Message = "Memory usage normal"
		}

		return check
	}
}
