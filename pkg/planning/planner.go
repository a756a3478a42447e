package planning

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dd0wney/cluso-netplan/pkg/algorithms"
	"github.com/dd0wney/cluso-netplan/pkg/cost"
	"github.com/dd0wney/cluso-netplan/pkg/logging"
	"github.com/dd0wney/cluso-netplan/pkg/topology"
)

// PathSeparator joins device names in rendered paths
const PathSeparator = " → "

// Planner produces capacity analyses against a topology index
type Planner struct {
	model  *cost.Model
	logger logging.Logger
}

// NewPlanner creates a planner. A nil model uses cost.Default and a nil logger
// discards output.
func NewPlanner(model *cost.Model, logger logging.Logger) *Planner {
	if model == nil {
		model = cost.Default()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Planner{model: model, logger: logger.With(logging.Component("planner"))}
}

// PlanCapacity plans with the default cost model
func PlanCapacity(idx *topology.Index, req Request) ([]Analysis, error) {
	return NewPlanner(nil, nil).Plan(idx, req)
}

// Plan evaluates every candidate route from req.DeviceID to every ISP and
// returns them ranked: feasible first, then those needing no upgrade, then by
// total cost. Routes with an identical device path are reported once.
func (p *Planner) Plan(idx *topology.Index, req Request) ([]Analysis, error) {
	if err := checkRequest(idx, req); err != nil {
		return nil, err
	}

	log := p.logger.With(
		logging.DeviceID(req.DeviceID),
		logging.Float64("required_mbps", req.RequiredMbps),
		logging.String("mode", string(req.mode())))

	isps := idx.ISPs()
	if len(isps) == 0 {
		log.Warn("no ISP devices in topology")
		return []Analysis{}, nil
	}

	var analyses []Analysis
	switch req.mode() {
	case ModeDirect:
		for _, isp := range isps {
			analyses = append(analyses, p.analyzeDirect(idx, req, isp))
		}
	default:
		for _, cp := range idx.DevicesOfType(topology.DeviceRouter, topology.DeviceSwitch) {
			if cp.ID == req.DeviceID {
				continue
			}
			for _, isp := range isps {
				analyses = append(analyses, p.analyzeVia(idx, req, cp, isp))
			}
		}
	}

	analyses = dedupe(analyses)
	rank(analyses)

	log.Debug("capacity plan computed", logging.Count(len(analyses)))
	return analyses, nil
}

func (r Request) mode() Mode {
	if r.Mode == "" {
		return ModeViaConnectionPoint
	}
	return r.Mode
}

func checkRequest(idx *topology.Index, req Request) error {
	switch {
	case idx == nil:
		return fmt.Errorf("%w: no topology", ErrInvalidRequest)
	case !idx.HasDevice(req.DeviceID):
		return fmt.Errorf("%w: device %q: %v", ErrInvalidRequest, req.DeviceID, topology.ErrDeviceNotFound)
	case !(req.RequiredMbps > 0) || math.IsInf(req.RequiredMbps, 1):
		return fmt.Errorf("%w: required capacity must be a positive number of Mbps", ErrInvalidRequest)
	case !req.Mode.Valid():
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidRequest, req.Mode)
	}
	return nil
}

// analyzeVia evaluates device -> connection point -> ISP
func (p *Planner) analyzeVia(idx *topology.Index, req Request, cp, isp *topology.Device) Analysis {
	a := Analysis{
		RouteName:       fmt.Sprintf("Via %s%s%s", cp.Label(), PathSeparator, isp.Label()),
		ConnectionPoint: cp.ID,
		ISP:             isp.ID,
	}

	toConnection := algorithms.FindPath(idx, req.DeviceID, cp.ID)
	toISP := algorithms.FindPath(idx, cp.ID, isp.ID)
	if len(toConnection) < 2 || len(toISP) < 2 {
		return infeasible(a)
	}

	// the connection point ends the first leg and starts the second
	devices := make([]string, 0, len(toConnection)+len(toISP)-1)
	devices = append(devices, toConnection...)
	devices = append(devices, toISP[1:]...)

	return p.evaluate(idx, req, a, devices, ConnectionSetupCost)
}

// analyzeDirect evaluates device -> ISP
func (p *Planner) analyzeDirect(idx *topology.Index, req Request, isp *topology.Device) Analysis {
	a := Analysis{
		RouteName: fmt.Sprintf("Direct%s%s", PathSeparator, isp.Label()),
		ISP:       isp.ID,
	}

	devices := algorithms.FindPath(idx, req.DeviceID, isp.ID)
	if len(devices) < 2 {
		return infeasible(a)
	}
	return p.evaluate(idx, req, a, devices, 0)
}

// evaluate checks every hop of a complete device path against the requirement
func (p *Planner) evaluate(idx *topology.Index, req Request, a Analysis, devices []string, setup float64) Analysis {
	a.Bottlenecks = []Bottleneck{}
	a.Upgrades = []Upgrade{}

	var linkCost, upgradeCost float64
	for i := 0; i+1 < len(devices); i++ {
		from, to := devices[i], devices[i+1]
		edge, ok := idx.EdgeBetween(from, to, p.model.SearchWeight)
		if !ok {
			return infeasible(a)
		}
		l := edge.Link
		description := idx.DeviceName(from) + " ↔ " + idx.DeviceName(to)
		available := l.Available()

		if available < req.RequiredMbps {
			usage := math.Max(0, finite(l.CurrentBandwidth))
			proposal := cost.Upgrade(finite(l.MaxBandwidth), usage+req.RequiredMbps)
			a.NeedsUpgrade = true
			a.Upgrades = append(a.Upgrades, Upgrade{
				LinkID:      l.ID,
				Description: description,
				Proposal:    proposal,
			})
			upgradeCost += proposal.Cost
		}

		if percent := l.UsagePercent(); percent > BottleneckPercent {
			a.Bottlenecks = append(a.Bottlenecks, Bottleneck{
				LinkID:            l.ID,
				Description:       description,
				CurrentUsage:      math.Round(percent),
				AvailableCapacity: available,
			})
		}

		linkCost += p.model.QualityCost(l)
	}

	names := make([]string, len(devices))
	for i, id := range devices {
		names[i] = idx.DeviceName(id)
	}

	a.Devices = devices
	a.Path = strings.Join(names, PathSeparator)
	a.Feasible = true
	a.TotalCost = cost.Amount(math.Round(linkCost + upgradeCost + setup))
	a.Status = status(a)
	return a
}

func infeasible(a Analysis) Analysis {
	a.Path = NoPathDescription
	a.Devices = []string{}
	a.Feasible = false
	a.NeedsUpgrade = false
	a.TotalCost = cost.Unbounded
	a.Bottlenecks = []Bottleneck{}
	a.Upgrades = []Upgrade{}
	a.Status = StatusNoRoute
	return a
}

func status(a Analysis) Status {
	switch {
	case !a.Feasible:
		return StatusNoRoute
	case a.NeedsUpgrade:
		return StatusNeedsUpgrade
	case len(a.Bottlenecks) > 0:
		return StatusPotentialIssues
	default:
		return StatusOptimal
	}
}

// dedupe keeps the first analysis for every distinct device path. Infeasible
// analyses have no path and are keyed by route name instead.
func dedupe(analyses []Analysis) []Analysis {
	seen := make(map[string]bool, len(analyses))
	out := make([]Analysis, 0, len(analyses))
	for _, a := range analyses {
		key := "route:" + a.RouteName
		if a.Feasible {
			key = "path:" + strings.Join(a.Devices, "\x00")
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a)
	}
	return out
}

func rank(analyses []Analysis) {
	sort.SliceStable(analyses, func(i, j int) bool {
		a, b := analyses[i], analyses[j]
		if a.Feasible != b.Feasible {
			return a.Feasible
		}
		if a.NeedsUpgrade != b.NeedsUpgrade {
			return !a.NeedsUpgrade
		}
		return cost.Less(float64(a.TotalCost), float64(b.TotalCost))
	})
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
