package source

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"sync"

	"github.com/dd0wney/cluso-netplan/pkg/topology"
)

//go:embed seeds/*.yaml
var seedFS embed.FS

// DefaultSeed is the topology activated when nothing else is configured
const DefaultSeed = "sanLuis"

// Seeds serves the built-in regional topologies. Bandwidth written to it is
// kept in memory for the life of the process.
type Seeds struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*topology.Topology
}

// NewSeeds parses the embedded topologies
func NewSeeds() (*Seeds, error) {
	return loadSeeds(seedFS, "seeds")
}

func loadSeeds(fsys fs.FS, dir string) (*Seeds, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read seeds: %w", err)
	}

	s := &Seeds{byID: make(map[string]*topology.Topology)}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := fs.ReadFile(fsys, dir+"/"+e.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read seed %s: %w", e.Name(), err)
		}
		t, err := Decode(data, DetectFormat(e.Name()))
		if err != nil {
			return nil, fmt.Errorf("seed %s: %w", e.Name(), err)
		}
		if _, dup := s.byID[t.ID]; dup {
			return nil, fmt.Errorf("seed %s: duplicate topology id %q", e.Name(), t.ID)
		}
		s.byID[t.ID] = t
		s.order = append(s.order, t.ID)
	}

	// the default seed leads the catalog
	sort.SliceStable(s.order, func(i, j int) bool {
		return s.order[i] == DefaultSeed && s.order[j] != DefaultSeed
	})
	return s, nil
}

// Name implements Source
func (s *Seeds) Name() string { return KindSeeds }

// List implements topology.Loader
func (s *Seeds) List(ctx context.Context) ([]topology.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]topology.Summary, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id].Summary())
	}
	return out, nil
}

// Load implements topology.Loader. Each call returns a fresh copy.
func (s *Seeds) Load(ctx context.Context, id string) (*topology.Topology, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("seed %q: %w", id, topology.ErrTopologyNotFound)
	}
	return t.Clone(), nil
}

// WriteBandwidth implements BandwidthWriter
func (s *Seeds) WriteBandwidth(ctx context.Context, topologyID string, updates []topology.BandwidthUpdate) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.byID[topologyID]
	if !ok {
		return 0, fmt.Errorf("seed %q: %w", topologyID, topology.ErrTopologyNotFound)
	}
	next := t.Clone()
	n := applyUpdates(next, updates)
	s.byID[topologyID] = next
	return n, nil
}
