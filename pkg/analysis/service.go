package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-netplan/pkg/algorithms"
	"github.com/dd0wney/cluso-netplan/pkg/cost"
	"github.com/dd0wney/cluso-netplan/pkg/logging"
	"github.com/dd0wney/cluso-netplan/pkg/metrics"
	"github.com/dd0wney/cluso-netplan/pkg/parallel"
	"github.com/dd0wney/cluso-netplan/pkg/planning"
	"github.com/dd0wney/cluso-netplan/pkg/routing"
	"github.com/dd0wney/cluso-netplan/pkg/source"
	"github.com/dd0wney/cluso-netplan/pkg/topology"
)

// Options configures a Service. Zero values fall back to defaults.
type Options struct {
	Store   *topology.Store
	Source  source.Source
	Model   *cost.Model
	Metrics *metrics.Registry
	Logger  logging.Logger
	// Workers bounds the goroutines used by RoutingTables, GOMAXPROCS when zero
	Workers int
}

// Service executes analyses against the active topology
type Service struct {
	store   *topology.Store
	source  source.Source
	model   *cost.Model
	planner *planning.Planner
	routes  *routing.Generator
	metrics *metrics.Registry
	logger  logging.Logger
	workers int
}

// New creates a service
func New(opts Options) *Service {
	logger := logging.OrDefault(opts.Logger)
	model := opts.Model
	if model == nil {
		model = cost.Default()
	}
	store := opts.Store
	if store == nil {
		store = topology.NewStore(opts.Source, logger)
	}
	return &Service{
		store:   store,
		source:  opts.Source,
		model:   model,
		planner: planning.NewPlanner(model, logger),
		routes:  routing.NewGenerator(model, logger),
		metrics: opts.Metrics,
		logger:  logger.With(logging.Component("analysis")),
		workers: opts.Workers,
	}
}

// Store returns the topology store
func (s *Service) Store() *topology.Store { return s.store }

// Model returns the cost model
func (s *Service) Model() *cost.Model { return s.model }

// Generator returns the routing table generator
func (s *Service) Generator() *routing.Generator { return s.routes }

// Source returns the configured source, or nil
func (s *Service) Source() source.Source { return s.source }

// View returns the active view or topology.ErrNoActiveTopology
func (s *Service) View() (*topology.View, error) {
	return s.store.Current()
}

// Topologies lists the catalog, marking the active topology
func (s *Service) Topologies(ctx context.Context) ([]topology.Summary, error) {
	return s.store.List(ctx)
}

// Topology returns a topology document. The active topology is served from
// memory so it reflects applied bandwidth refreshes.
func (s *Service) Topology(ctx context.Context, id string) (*topology.Topology, error) {
	if v := s.store.View(); v != nil && v.Topology.ID == id {
		return v.Topology.Clone(), nil
	}
	if s.source == nil {
		return nil, fmt.Errorf("topology %q: %w", id, topology.ErrTopologyNotFound)
	}
	return s.source.Load(ctx, id)
}

// Activate makes the topology with the given id the active one
func (s *Service) Activate(ctx context.Context, id string) (*topology.View, error) {
	v, err := s.store.Activate(ctx, id)
	if s.metrics != nil {
		s.metrics.RecordActivation(err == nil)
	}
	if err != nil {
		return nil, err
	}
	s.publishStats(v)
	return v, nil
}

// Replace installs t as the active topology without consulting the source
func (s *Service) Replace(t *topology.Topology) (*topology.View, error) {
	v, err := s.store.Replace(t)
	if s.metrics != nil {
		s.metrics.RecordActivation(err == nil)
	}
	if err != nil {
		return nil, err
	}
	s.publishStats(v)
	return v, nil
}

// ApplyBandwidth refreshes link utilisation of the active topology and, when
// the source supports it, persists the new values. topologyID must name the
// active topology.
func (s *Service) ApplyBandwidth(ctx context.Context, topologyID string, updates []topology.BandwidthUpdate) (BandwidthOutcome, error) {
	start := time.Now()
	v, err := s.store.Current()
	if err != nil {
		s.record(OpBandwidth, err, start)
		return BandwidthOutcome{}, err
	}
	if v.Topology.ID != topologyID {
		err = fmt.Errorf("bandwidth for %q: %w", topologyID, ErrTopologyNotActive)
		s.record(OpBandwidth, err, start)
		return BandwidthOutcome{}, err
	}

	res, err := s.store.ApplyBandwidth(updates)
	if err != nil {
		s.record(OpBandwidth, err, start)
		return BandwidthOutcome{}, err
	}
	out := BandwidthOutcome{BandwidthResult: res}

	if w, ok := s.source.(source.BandwidthWriter); ok && res.UpdatedLinks > 0 {
		if _, werr := w.WriteBandwidth(ctx, topologyID, updates); werr != nil {
			s.logger.Warn("bandwidth not persisted",
				logging.TopologyID(topologyID),
				logging.Error(werr))
		} else {
			out.Persisted = true
		}
	}

	if s.metrics != nil {
		s.metrics.RecordBandwidthUpdates(res.UpdatedLinks, res.Errors)
	}
	cur := s.store.View()
	if cur != nil {
		out.Version = cur.Version
		s.publishStats(cur)
	}
	s.record(OpBandwidth, nil, start)
	return out, nil
}

// Path finds a path between two devices of the active topology
func (s *Service) Path(from, to string, algo Algorithm) (PathResult, error) {
	op := OpPath
	if algo == AlgorithmDijkstra {
		op = OpShortest
	}
	start := time.Now()

	v, err := s.store.Current()
	if err == nil {
		err = requireDevices(v.Index, from, to)
	}
	if err != nil {
		s.record(op, err, start)
		return PathResult{}, err
	}

	res := PathResult{Algorithm: algo, From: from, To: to, Weight: cost.Unbounded}
	var path []string
	switch algo {
	case AlgorithmBFS:
		path = algorithms.FindPath(v.Index, from, to)
	case AlgorithmDijkstra:
		path, _ = algorithms.WeightedShortestPath(v.Index, from, to, s.model.SearchWeight)
	default:
		err = fmt.Errorf("unknown algorithm %q", algo)
		s.record(op, err, start)
		return PathResult{}, err
	}

	if path != nil {
		res.Found = true
		res.Path = path
		res.Hops = len(path) - 1
		res.Names = make([]string, len(path))
		for i, id := range path {
			res.Names[i] = v.Index.DeviceName(id)
		}
		res.Links = make([]string, 0, res.Hops)
		for i := 0; i+1 < len(path); i++ {
			if e, ok := v.Index.EdgeBetween(path[i], path[i+1], s.model.SearchWeight); ok {
				res.Links = append(res.Links, e.Link.ID)
			}
		}
		if w, ok := algorithms.PathWeight(v.Index, path, s.model.SearchWeight); ok {
			res.Weight = cost.Amount(cost.RoundTo(w, 2))
		}
	}

	if s.metrics != nil {
		s.metrics.RecordPathSearch(string(algo), res.Found)
	}
	s.record(op, nil, start)
	return res, nil
}

// Routes builds the routing table of a device
func (s *Service) Routes(deviceID string) ([]routing.Route, error) {
	start := time.Now()
	v, err := s.store.Current()
	if err == nil {
		err = requireDevices(v.Index, deviceID)
	}
	if err != nil {
		s.record(OpRoutes, err, start)
		return nil, err
	}

	routes, err := s.routes.Generate(v.Index, deviceID)
	if err == nil && s.metrics != nil {
		for _, r := range routes {
			if !r.Reachable() {
				s.metrics.UnreachableRoutesTotal.Inc()
			}
		}
	}
	s.record(OpRoutes, err, start)
	return routes, err
}

// RoutingTables builds the routing table of every non-ISP device of the
// active topology, in device order. Tables are computed concurrently against
// a single view.
func (s *Service) RoutingTables(ctx context.Context) ([]RoutingTable, error) {
	start := time.Now()
	v, err := s.store.Current()
	if err != nil {
		s.record(OpTables, err, start)
		return nil, err
	}

	devices := make([]*topology.Device, 0, len(v.Index.Devices()))
	for _, d := range v.Index.Devices() {
		if d.Type != topology.DeviceISP {
			devices = append(devices, d)
		}
	}

	tables, err := parallel.Map(ctx, s.workers, s.logger, devices, func(d *topology.Device) (RoutingTable, error) {
		routes, err := s.routes.Generate(v.Index, d.ID)
		if err != nil {
			return RoutingTable{}, err
		}
		return RoutingTable{DeviceID: d.ID, Device: d.Label(), Routes: routes}, nil
	})
	s.record(OpTables, err, start)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("routing tables generated",
		logging.TopologyID(v.Topology.ID),
		logging.Count(len(tables)),
		logging.Latency(time.Since(start)))
	return tables, nil
}

// Plan runs the capacity planner for req against the active topology
func (s *Service) Plan(req planning.Request) (*Plan, error) {
	start := time.Now()
	v, err := s.store.Current()
	if err == nil {
		err = requireDevices(v.Index, req.DeviceID)
	}
	if err != nil {
		s.record(OpPlan, err, start)
		return nil, err
	}

	analyses, err := s.planner.Plan(v.Index, req)
	if err != nil {
		s.record(OpPlan, err, start)
		return nil, err
	}

	plan := &Plan{
		RunID:       uuid.NewString(),
		TopologyID:  v.Topology.ID,
		Version:     v.Version,
		Request:     req,
		Analyses:    analyses,
		GeneratedAt: time.Now().UTC(),
	}

	if s.metrics != nil {
		upgrades, bottlenecks := 0, 0
		for _, a := range analyses {
			upgrades += len(a.Upgrades)
			bottlenecks += len(a.Bottlenecks)
		}
		s.metrics.RecordPlan(len(analyses), upgrades, bottlenecks)
	}
	s.logger.Info("capacity plan completed",
		logging.String("run_id", plan.RunID),
		logging.TopologyID(plan.TopologyID),
		logging.DeviceID(req.DeviceID),
		logging.Count(len(analyses)),
		logging.Latency(time.Since(start)))
	s.record(OpPlan, nil, start)
	return plan, nil
}

// CongestedLinks returns the links of the active topology whose utilisation
// exceeds thresholdPercent
func (s *Service) CongestedLinks(thresholdPercent float64) ([]topology.LinkUsage, error) {
	start := time.Now()
	v, err := s.store.Current()
	if err != nil {
		s.record(OpUsage, err, start)
		return nil, err
	}
	out := topology.LinksByUsage(v.Index, thresholdPercent)
	s.record(OpUsage, nil, start)
	return out, nil
}

// DeviceUsage sums the bandwidth on the links of a device
func (s *Service) DeviceUsage(deviceID string) (topology.DeviceUsage, error) {
	start := time.Now()
	v, err := s.store.Current()
	if err != nil {
		s.record(OpUsage, err, start)
		return topology.DeviceUsage{}, err
	}
	u, err := topology.UsageOf(v.Index, deviceID)
	s.record(OpUsage, err, start)
	return u, err
}

// Stats summarises the active topology
func (s *Service) Stats() (TopologyStats, error) {
	v, err := s.store.Current()
	if err != nil {
		return TopologyStats{}, err
	}
	return statsOf(v), nil
}

func statsOf(v *topology.View) TopologyStats {
	return TopologyStats{
		TopologyID: v.Topology.ID,
		Version:    v.Version,
		Devices:    len(v.Index.Devices()),
		Links:      len(v.Index.Links()),
		ISPs:       len(v.Index.ISPs()),
		Issues:     len(v.Index.Issues()),
		Congested:  len(topology.LinksByUsage(v.Index, planning.BottleneckPercent)),
		Connected:  algorithms.IsConnected(v.Index),
	}
}

func (s *Service) publishStats(v *topology.View) {
	st := statsOf(v)
	if s.metrics != nil {
		s.metrics.UpdateTopologyMetrics(st.Devices, st.Links, st.ISPs, st.Issues, st.Congested, st.Version)
	}
	if !st.Connected {
		s.logger.Warn("active topology is not connected", logging.TopologyID(st.TopologyID))
	}
}

func (s *Service) record(op string, err error, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordAnalysis(op, outcome(err), time.Since(start))
}

// outcome maps an error to the status label of analysis metrics
func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, topology.ErrNoActiveTopology):
		return "no_topology"
	case errors.Is(err, topology.ErrDeviceNotFound), errors.Is(err, planning.ErrInvalidRequest):
		return "invalid"
	default:
		return "error"
	}
}

func requireDevices(idx *topology.Index, ids ...string) error {
	for _, id := range ids {
		if !idx.HasDevice(id) {
			return fmt.Errorf("device %q: %w", id, topology.ErrDeviceNotFound)
		}
	}
	return nil
}
