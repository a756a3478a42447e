package api

import (
	"github.com/dd0wney/cluso-netplan/pkg/analysis"
	"github.com/dd0wney/cluso-netplan/pkg/health"
	"github.com/dd0wney/cluso-netplan/pkg/routing"
	"github.com/dd0wney/cluso-netplan/pkg/topology"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	health.Response
	Version string `json:"version"`
}

// TopologiesResponse lists the catalog
type TopologiesResponse struct {
	Topologies []topology.Summary `json:"topologies"`
	Count      int                `json:"count"`
}

// ActivateResponse reports a topology activation
type ActivateResponse struct {
	TopologyID string           `json:"topologyId"`
	Version    uint64           `json:"version"`
	Devices    int              `json:"devices"`
	Links      int              `json:"links"`
	ISPs       int              `json:"isps"`
	Issues     []topology.Issue `json:"issues"`
}

// RoutesResponse is a device routing table
type RoutesResponse struct {
	DeviceID string          `json:"deviceId"`
	Routes   []routing.Route `json:"routes"`
}

// RoutingTablesResponse holds the routing table of every non-ISP device
type RoutingTablesResponse struct {
	Tables []analysis.RoutingTable `json:"tables"`
	Count  int                     `json:"count"`
}

// LinkUsageResponse lists the links above a utilisation threshold
type LinkUsageResponse struct {
	Threshold float64              `json:"threshold"`
	Links     []topology.LinkUsage `json:"links"`
	Count     int                  `json:"count"`
}
