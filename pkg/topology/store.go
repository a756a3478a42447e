package topology

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dd0wney/cluso-netplan/pkg/logging"
)

// Loader fetches topologies from wherever they are kept
type Loader interface {
	List(ctx context.Context) ([]Summary, error)
	Load(ctx context.Context, id string) (*Topology, error)
}

// View is an immutable snapshot of the active topology together with its index.
// Everything reachable from a View is read-only.
type View struct {
	Topology *Topology
	Index    *Index
	Version  uint64
	LoadedAt time.Time
}

// Store owns the active topology. Readers take a View and compute against it;
// writers build a new topology and index off to the side and publish them in a
// single atomic swap, so no computation ever observes a half-applied change.
type Store struct {
	mu      sync.Mutex // serialises writers
	current atomic.Pointer[View]
	version uint64
	loader  Loader
	logger  logging.Logger
}

// NewStore creates a store backed by loader. loader may be nil when topologies
// are only installed with Replace.
func NewStore(loader Loader, logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Store{
		loader: loader,
		logger: logger.With(logging.Component("topology-store")),
	}
}

// View returns the active view, or nil when nothing is active
func (s *Store) View() *View {
	return s.current.Load()
}

// Current returns the active view or ErrNoActiveTopology
func (s *Store) Current() (*View, error) {
	v := s.current.Load()
	if v == nil {
		return nil, ErrNoActiveTopology
	}
	return v, nil
}

// List returns the catalog from the loader, marking the active topology
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	if s.loader == nil {
		if v := s.View(); v != nil {
			sum := v.Topology.Summary()
			sum.Active = true
			return []Summary{sum}, nil
		}
		return []Summary{}, nil
	}

	list, err := s.loader.List(ctx)
	if err != nil {
		return nil, newError("List", "topology", "", err)
	}
	if v := s.View(); v != nil {
		for i := range list {
			list[i].Active = list[i].ID == v.Topology.ID
		}
	}
	return list, nil
}

// Activate loads the topology with the given id and makes it the active one
func (s *Store) Activate(ctx context.Context, id string) (*View, error) {
	if s.loader == nil {
		return nil, newError("Activate", "topology", id, ErrNoTopologySource)
	}

	timer := logging.StartTimer(s.logger, "topology activated", logging.TopologyID(id))
	t, err := s.loader.Load(ctx, id)
	if err != nil {
		timer.EndError(err)
		return nil, newError("Activate", "topology", id, err)
	}

	v, err := s.Replace(t)
	if err != nil {
		timer.EndError(err)
		return nil, err
	}
	timer.End(logging.Int("devices", len(t.Devices)), logging.Int("links", len(t.Links)))
	return v, nil
}

// Replace installs t as the active topology. The store keeps its own copy.
func (s *Store) Replace(t *Topology) (*View, error) {
	if err := checkTopology(t); err != nil {
		id := ""
		if t != nil {
			id = t.ID
		}
		return nil, newError("Replace", "topology", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.publish(t.Clone()), nil
}

// Clear drops the active topology
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Store(nil)
}

// ApplyBandwidth overwrites currentBandwidth for the named links of the active
// topology. Unknown links and unusable samples are reported in the result and
// do not prevent the remaining updates from being applied.
func (s *Store) ApplyBandwidth(updates []BandwidthUpdate) (BandwidthResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current.Load()
	if cur == nil {
		return BandwidthResult{}, newError("ApplyBandwidth", "topology", "", ErrNoActiveTopology)
	}

	next := cur.Topology.Clone()
	pos := make(map[string]int, len(next.Links))
	for i, l := range next.Links {
		if _, seen := pos[l.ID]; !seen {
			pos[l.ID] = i
		}
	}

	res := BandwidthResult{
		TopologyID:   next.ID,
		TotalLinks:   len(next.Links),
		ErrorDetails: []string{},
	}
	for _, u := range updates {
		i, ok := pos[u.LinkID]
		if !ok {
			res.ErrorDetails = append(res.ErrorDetails, fmt.Sprintf("link %s: %v", u.LinkID, ErrLinkNotFound))
			continue
		}
		if math.IsNaN(u.CurrentBandwidth) || math.IsInf(u.CurrentBandwidth, 0) {
			res.ErrorDetails = append(res.ErrorDetails, fmt.Sprintf("link %s: %v", u.LinkID, ErrInvalidBandwidth))
			continue
		}
		next.Links[i].CurrentBandwidth = math.Max(0, u.CurrentBandwidth)
		res.UpdatedLinks++
	}
	res.Errors = len(res.ErrorDetails)

	if res.UpdatedLinks > 0 {
		s.publish(next)
	}
	s.logger.Info("bandwidth refresh applied",
		logging.TopologyID(next.ID),
		logging.Int("updated_links", res.UpdatedLinks),
		logging.Int("errors", res.Errors))
	if res.Errors > 0 {
		s.logger.Warn("bandwidth refresh had errors",
			logging.TopologyID(next.ID),
			logging.Any("details", res.ErrorDetails))
	}
	return res, nil
}

// publish indexes t and swaps it in; callers hold s.mu
func (s *Store) publish(t *Topology) *View {
	s.version++
	v := &View{
		Topology: t,
		Index:    BuildIndex(t, s.logger),
		Version:  s.version,
		LoadedAt: time.Now(),
	}
	s.current.Store(v)
	return v
}

func checkTopology(t *Topology) error {
	if t == nil {
		return fmt.Errorf("%w: nil topology", ErrInvalidTopology)
	}
	if t.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidTopology)
	}
	if len(t.Devices) == 0 {
		return fmt.Errorf("%w: no devices", ErrInvalidTopology)
	}
	return nil
}
