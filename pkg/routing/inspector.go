package routing

import (
	"sync"

	"github.com/dd0wney/cluso-netplan/pkg/topology"
)

// Inspector holds the single selected device of an interactive session and its
// routing table. Selecting a device is the only thing that recomputes routes.
type Inspector struct {
	mu        sync.RWMutex
	generator *Generator
	view      *topology.View
	selected  *topology.Device
	routes    []Route
}

// NewInspector creates an inspector using g, or the default generator when g
// is nil
func NewInspector(g *Generator) *Inspector {
	if g == nil {
		g = NewGenerator(nil, nil)
	}
	return &Inspector{generator: g}
}

// SelectDevice selects a device of view and regenerates its routing table.
// On error the previous selection is kept.
func (in *Inspector) SelectDevice(view *topology.View, deviceID string) error {
	if view == nil {
		return topology.ErrNoActiveTopology
	}
	d, ok := view.Index.Device(deviceID)
	if !ok {
		return topology.ErrDeviceNotFound
	}
	routes, err := in.generator.Generate(view.Index, deviceID)
	if err != nil {
		return err
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	in.view = view
	in.selected = d
	in.routes = routes
	return nil
}

// Clear drops the selection
func (in *Inspector) Clear() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.view, in.selected, in.routes = nil, nil, nil
}

// Selected returns the selected device, or nil
func (in *Inspector) Selected() *topology.Device {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.selected
}

// Version returns the topology version the selection was made against
func (in *Inspector) Version() uint64 {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if in.view == nil {
		return 0
	}
	return in.view.Version
}

// Routes returns the routing table of the selected device
func (in *Inspector) Routes() []Route {
	in.mu.RLock()
	defer in.mu.RUnlock()
	out := make([]Route, len(in.routes))
	copy(out, in.routes)
	return out
}

// ConnectedDevices returns the distinct neighbours of the selected device in
// link order
func (in *Inspector) ConnectedDevices() []*topology.Device {
	in.mu.RLock()
	defer in.mu.RUnlock()

	out := make([]*topology.Device, 0)
	if in.selected == nil {
		return out
	}
	seen := make(map[string]bool)
	for _, e := range in.view.Index.Neighbors(in.selected.ID) {
		if seen[e.To] {
			continue
		}
		seen[e.To] = true
		if d, ok := in.view.Index.Device(e.To); ok {
			out = append(out, d)
		}
	}
	return out
}
