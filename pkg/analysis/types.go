// Package analysis runs the path, routing, capacity and usage computations
// against the active topology and records their metrics. It is the single
// entry point shared by the HTTP, GraphQL and terminal front ends.
package analysis

import (
	"errors"
	"time"

	"github.com/dd0wney/cluso-netplan/pkg/cost"
	"github.com/dd0wney/cluso-netplan/pkg/planning"
	"github.com/dd0wney/cluso-netplan/pkg/routing"
	"github.com/dd0wney/cluso-netplan/pkg/topology"
)

var (
	// ErrTopologyNotActive is returned when a write names a topology other
	// than the active one
	ErrTopologyNotActive = errors.New("topology is not the active topology")
)

// Algorithm names the search used for a path query
type Algorithm string

const (
	AlgorithmBFS      Algorithm = "bfs"
	AlgorithmDijkstra Algorithm = "dijkstra"
)

// Operation labels used for analysis metrics
const (
	OpPath      = "path"
	OpShortest  = "shortest_path"
	OpRoutes    = "routes"
	OpPlan      = "capacity_plan"
	OpUsage     = "usage"
	OpBandwidth = "bandwidth"
	OpTables    = "routing_tables"
)

// PathResult is the outcome of a path query
type PathResult struct {
	Algorithm Algorithm `json:"algorithm"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Found     bool      `json:"found"`
	Path      []string  `json:"path"`
	Names     []string  `json:"names"`
	// Links holds the cheapest link used for each hop
	Links []string `json:"links"`
	Hops  int      `json:"hops"`
	// Weight is the summed search weight, unbounded when nothing was found
	Weight cost.Amount `json:"weight"`
}

// RoutingTable is the routing table of one device
type RoutingTable struct {
	DeviceID string          `json:"deviceId"`
	Device   string          `json:"device"`
	Routes   []routing.Route `json:"routes"`
}

// Plan is one capacity planning run
type Plan struct {
	RunID       string              `json:"runId"`
	TopologyID  string              `json:"topologyId"`
	Version     uint64              `json:"version"`
	Request     planning.Request    `json:"request"`
	Analyses    []planning.Analysis `json:"analyses"`
	GeneratedAt time.Time           `json:"generatedAt"`
}

// Best returns the top ranked analysis, if any
func (p *Plan) Best() (planning.Analysis, bool) {
	if len(p.Analyses) == 0 {
		return planning.Analysis{}, false
	}
	return p.Analyses[0], true
}

// BandwidthOutcome is the result of a bandwidth refresh. Persisted reports
// whether the source also stored the new values.
type BandwidthOutcome struct {
	topology.BandwidthResult
	Persisted bool   `json:"persisted"`
	Version   uint64 `json:"version"`
}

// TopologyStats summarises the active topology
type TopologyStats struct {
	TopologyID string `json:"topologyId"`
	Version    uint64 `json:"version"`
	Devices    int    `json:"devices"`
	Links      int    `json:"links"`
	ISPs       int    `json:"isps"`
	Issues     int    `json:"issues"`
	Congested  int    `json:"congested"`
	Connected  bool   `json:"connected"`
}
