package topology

import (
	"fmt"

	"github.com/dd0wney/cluso-netplan/pkg/logging"
)

// Edge is one traversable direction of a link in the device adjacency
type Edge struct {
	Link *Link
	// From and To are device ids
	From string
	To   string
	// LocalPort is the port id on the From device, empty for device-direct links
	LocalPort string
}

// Index resolves port-or-device ids to devices and holds the device-level
// adjacency derived from the links. It is immutable once built and safe for
// concurrent readers.
type Index struct {
	topology  *Topology
	devices   map[string]*Device
	order     []string
	ports     map[string]*Port
	portOwner map[string]string
	links     []*Link
	linkByID  map[string]*Link
	adjacency map[string][]Edge
	issues    []Issue
}

// BuildIndex builds the index for t in O(devices + ports + links). Broken
// records are skipped and reported through the logger and Issues(); the build
// itself never fails.
func BuildIndex(t *Topology, logger logging.Logger) *Index {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if t == nil {
		t = &Topology{}
	}

	idx := &Index{
		topology:  t,
		devices:   make(map[string]*Device, len(t.Devices)),
		order:     make([]string, 0, len(t.Devices)),
		ports:     make(map[string]*Port),
		portOwner: make(map[string]string),
		linkByID:  make(map[string]*Link, len(t.Links)),
		adjacency: make(map[string][]Edge, len(t.Devices)),
	}
	log := logger.With(logging.Component("topology-index"), logging.TopologyID(t.ID))

	for i := range t.Devices {
		d := &t.Devices[i]
		if _, dup := idx.devices[d.ID]; dup || d.ID == "" {
			idx.skip(log, IssueDuplicateDevice, d.ID, "device id empty or already defined")
			continue
		}
		idx.devices[d.ID] = d
		idx.order = append(idx.order, d.ID)
	}

	for _, id := range idx.order {
		d := idx.devices[id]
		for j := range d.Ports {
			p := &d.Ports[j]
			owner := p.DeviceID
			if owner == "" {
				owner = d.ID
			}
			if _, ok := idx.devices[owner]; !ok {
				idx.skip(log, IssueOrphanPort, p.ID, fmt.Sprintf("owner device %q does not exist", owner))
				continue
			}
			if _, dup := idx.ports[p.ID]; dup || p.ID == "" {
				idx.skip(log, IssueDuplicatePort, p.ID, "port id empty or already defined")
				continue
			}
			idx.ports[p.ID] = p
			idx.portOwner[p.ID] = owner
		}
	}

	for i := range t.Links {
		l := &t.Links[i]
		if _, dup := idx.linkByID[l.ID]; dup {
			idx.skip(log, IssueDuplicateLink, l.ID, "link id already defined")
			continue
		}
		idx.linkByID[l.ID] = l
		idx.links = append(idx.links, l)

		from, fromPort, okFrom := idx.resolve(l.Source)
		to, toPort, okTo := idx.resolve(l.Target)
		if !okFrom || !okTo {
			idx.skip(log, IssueDanglingLink, l.ID,
				fmt.Sprintf("endpoint %q or %q does not resolve to a device", l.Source.ID, l.Target.ID))
			continue
		}
		if from == to {
			idx.skip(log, IssueSelfLoop, l.ID, fmt.Sprintf("both endpoints on device %q", from))
			continue
		}

		idx.adjacency[from] = append(idx.adjacency[from], Edge{Link: l, From: from, To: to, LocalPort: fromPort})
		idx.adjacency[to] = append(idx.adjacency[to], Edge{Link: l, From: to, To: from, LocalPort: toPort})
	}

	log.Debug("topology indexed",
		logging.Int("devices", len(idx.order)),
		logging.Int("ports", len(idx.ports)),
		logging.Int("links", len(idx.links)),
		logging.Int("skipped", len(idx.issues)))

	return idx
}

func (idx *Index) skip(log logging.Logger, kind IssueKind, id, msg string) {
	idx.issues = append(idx.issues, Issue{Kind: kind, ID: id, Message: msg})
	log.Warn("topology record ignored",
		logging.String("issue", string(kind)),
		logging.String("id", id),
		logging.String("reason", msg))
}

// resolve maps an endpoint to its owning device. The second result is the port
// id when the endpoint referenced a port.
func (idx *Index) resolve(e Endpoint) (deviceID, portID string, ok bool) {
	switch e.Kind {
	case EndpointPort:
		if owner, found := idx.portOwner[e.ID]; found {
			return owner, e.ID, true
		}
	case EndpointDevice:
		if _, found := idx.devices[e.ID]; found {
			return e.ID, "", true
		}
	default:
		if owner, found := idx.portOwner[e.ID]; found {
			return owner, e.ID, true
		}
		if _, found := idx.devices[e.ID]; found {
			return e.ID, "", true
		}
	}
	return "", "", false
}

// DeviceOf resolves a port or device id to the owning device id
func (idx *Index) DeviceOf(id string) (string, bool) {
	d, _, ok := idx.resolve(Ref(id))
	return d, ok
}

// Resolve resolves a link endpoint to the owning device id
func (idx *Index) Resolve(e Endpoint) (string, bool) {
	d, _, ok := idx.resolve(e)
	return d, ok
}

// Topology returns the indexed topology. Callers must not modify it.
func (idx *Index) Topology() *Topology {
	return idx.topology
}

// Device returns the device with the given id
func (idx *Index) Device(id string) (*Device, bool) {
	d, ok := idx.devices[id]
	return d, ok
}

// HasDevice reports whether id names a device
func (idx *Index) HasDevice(id string) bool {
	_, ok := idx.devices[id]
	return ok
}

// DeviceName returns the display label of a device, or the id itself when unknown
func (idx *Index) DeviceName(id string) string {
	if d, ok := idx.devices[id]; ok {
		return d.Label()
	}
	return id
}

// Port returns the port with the given id
func (idx *Index) Port(id string) (*Port, bool) {
	p, ok := idx.ports[id]
	return p, ok
}

// Devices returns the devices in topology order
func (idx *Index) Devices() []*Device {
	out := make([]*Device, 0, len(idx.order))
	for _, id := range idx.order {
		out = append(out, idx.devices[id])
	}
	return out
}

// DevicesOfType returns the devices of the given types in topology order
func (idx *Index) DevicesOfType(types ...DeviceType) []*Device {
	out := make([]*Device, 0)
	for _, id := range idx.order {
		d := idx.devices[id]
		for _, t := range types {
			if d.Type == t {
				out = append(out, d)
				break
			}
		}
	}
	return out
}

// ISPs returns the ISP devices in topology order
func (idx *Index) ISPs() []*Device {
	return idx.DevicesOfType(DeviceISP)
}

// Neighbors returns the traversable edges leaving a device, in link order
func (idx *Index) Neighbors(deviceID string) []Edge {
	return idx.adjacency[deviceID]
}

// LinksBetween returns every traversable link joining two devices, in link order
func (idx *Index) LinksBetween(a, b string) []*Link {
	var out []*Link
	for _, e := range idx.adjacency[a] {
		if e.To == b {
			out = append(out, e.Link)
		}
	}
	return out
}

// EdgeBetween returns the cheapest traversable edge from a to b under weight.
// Ties keep the earlier link.
func (idx *Index) EdgeBetween(a, b string, weight func(*Link) float64) (Edge, bool) {
	var (
		best  Edge
		bestW float64
		found bool
	)
	for _, e := range idx.adjacency[a] {
		if e.To != b {
			continue
		}
		w := weight(e.Link)
		if !found || w < bestW {
			best, bestW, found = e, w, true
		}
	}
	return best, found
}

// Link returns the link with the given id
func (idx *Index) Link(id string) (*Link, bool) {
	l, ok := idx.linkByID[id]
	return l, ok
}

// Links returns all links with a unique id in insertion order, traversable or not
func (idx *Index) Links() []*Link {
	return idx.links
}

// Issues returns the records ignored while building the index
func (idx *Index) Issues() []Issue {
	return idx.issues
}
