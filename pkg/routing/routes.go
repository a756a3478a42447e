// Package routing derives per-device routing tables toward the ISP egresses.
package routing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dd0wney/cluso-netplan/pkg/algorithms"
	"github.com/dd0wney/cluso-netplan/pkg/cost"
	"github.com/dd0wney/cluso-netplan/pkg/logging"
	"github.com/dd0wney/cluso-netplan/pkg/topology"
)

const (
	// DefaultDestination is the destination of the synthetic default route
	DefaultDestination = "0.0.0.0/0"

	// Unreachable is the next hop of routes without a path
	Unreachable = "Unreachable"

	// NoInterface is the interface of routes without a path
	NoInterface = "N/A"

	// PathSeparator joins device names in rendered paths
	PathSeparator = " → "
)

// Route is one routing table entry
type Route struct {
	Destination string      `json:"destination"`
	NextHop     string      `json:"nextHop"`
	Interface   string      `json:"interface"`
	Metric      cost.Amount `json:"metric"`
	Path        string      `json:"path,omitempty"`
}

// Reachable reports whether the route has a next hop
func (r Route) Reachable() bool {
	return r.NextHop != Unreachable
}

// Generator builds routing tables with a cost model
type Generator struct {
	model  *cost.Model
	logger logging.Logger
}

// NewGenerator creates a generator. A nil model uses cost.Default.
func NewGenerator(model *cost.Model, logger logging.Logger) *Generator {
	if model == nil {
		model = cost.Default()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Generator{model: model, logger: logger.With(logging.Component("routing"))}
}

// GenerateRoutes builds the routing table of a device with the default model
func GenerateRoutes(idx *topology.Index, deviceID string) ([]Route, error) {
	return NewGenerator(nil, nil).Generate(idx, deviceID)
}

// Generate returns one route per ISP ordered by metric, followed by a default
// route through the best ISP when that ISP is reachable. The table is always
// computed from scratch.
func (g *Generator) Generate(idx *topology.Index, deviceID string) ([]Route, error) {
	if idx == nil || !idx.HasDevice(deviceID) {
		return nil, fmt.Errorf("routes for %q: %w", deviceID, topology.ErrDeviceNotFound)
	}

	routes := make([]Route, 0, len(idx.ISPs())+1)
	for _, isp := range idx.ISPs() {
		routes = append(routes, g.routeTo(idx, deviceID, isp))
	}

	sort.SliceStable(routes, func(i, j int) bool {
		return cost.Less(float64(routes[i].Metric), float64(routes[j].Metric))
	})

	if len(routes) > 0 && routes[0].Reachable() {
		best := routes[0]
		routes = append(routes, Route{
			Destination: DefaultDestination,
			NextHop:     best.NextHop,
			Interface:   best.Interface,
			Metric:      best.Metric,
		})
	}

	g.logger.Debug("routes generated", logging.DeviceID(deviceID), logging.Count(len(routes)))
	return routes, nil
}

func (g *Generator) routeTo(idx *topology.Index, deviceID string, isp *topology.Device) Route {
	r := Route{
		Destination: fmt.Sprintf("%s (%s)", isp.Label(), isp.ID),
		NextHop:     Unreachable,
		Interface:   NoInterface,
		Metric:      cost.Unbounded,
	}

	path, weight := algorithms.WeightedShortestPath(idx, deviceID, isp.ID, g.model.SearchWeight)
	if len(path) <= 1 {
		return r
	}

	names := make([]string, len(path))
	for i, id := range path {
		names[i] = idx.DeviceName(id)
	}

	r.NextHop = idx.DeviceName(path[1])
	r.Interface = g.interfaceLabel(idx, path[0], path[1])
	r.Metric = cost.Amount(cost.RoundTo(weight, 1))
	r.Path = strings.Join(names, PathSeparator)
	return r
}

// interfaceLabel names the local port of the first hop, or the link itself
// when the link attaches to the device directly
func (g *Generator) interfaceLabel(idx *topology.Index, from, to string) string {
	edge, ok := idx.EdgeBetween(from, to, g.model.SearchWeight)
	if !ok {
		return NoInterface
	}
	if edge.LocalPort != "" {
		if p, found := idx.Port(edge.LocalPort); found && p.Name != "" {
			return p.Name
		}
		return edge.LocalPort
	}
	return "if-" + edge.Link.ID
}
