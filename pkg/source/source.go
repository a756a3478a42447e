// Package source loads topologies from embedded seeds, a directory of
// documents or PostgreSQL, and persists bandwidth refreshes back to them.
package source

import (
	"context"
	"errors"

	"github.com/dd0wney/cluso-netplan/pkg/topology"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported topology document format")
	ErrReadOnly          = errors.New("topology source is read-only")
)

// Kinds of source selectable in configuration
const (
	KindSeeds    = "seeds"
	KindDir      = "dir"
	KindPostgres = "postgres"
)

// Source is a named topology catalog
type Source interface {
	topology.Loader
	Name() string
}

// BandwidthWriter persists refreshed link utilisation
type BandwidthWriter interface {
	// WriteBandwidth stores the updates and returns how many links changed
	WriteBandwidth(ctx context.Context, topologyID string, updates []topology.BandwidthUpdate) (int, error)
}

// Pinger is implemented by sources that can check their backing store
type Pinger interface {
	Ping(ctx context.Context) error
}

// applyUpdates overwrites currentBandwidth on t in place and returns the
// number of links changed. Unknown links are ignored.
func applyUpdates(t *topology.Topology, updates []topology.BandwidthUpdate) int {
	pos := make(map[string]int, len(t.Links))
	for i, l := range t.Links {
		if _, seen := pos[l.ID]; !seen {
			pos[l.ID] = i
		}
	}
	n := 0
	for _, u := range updates {
		if i, ok := pos[u.LinkID]; ok {
			t.Links[i].CurrentBandwidth = u.CurrentBandwidth
			n++
		}
	}
	return n
}
