// Package topologytest builds small topologies for tests.
package topologytest

import (
	"fmt"

	"github.com/dd0wney/cluso-netplan/pkg/topology"
)

// Builder assembles a topology device by device and link by link
type Builder struct {
	t     *topology.Topology
	index map[string]int
}

// New starts a topology with the given id
func New(id string) *Builder {
	return &Builder{
		t:     &topology.Topology{ID: id, Name: id},
		index: make(map[string]int),
	}
}

// Device adds a device whose name equals its id
func (b *Builder) Device(id string, typ topology.DeviceType) *Builder {
	b.index[id] = len(b.t.Devices)
	b.t.Devices = append(b.t.Devices, topology.Device{ID: id, Name: id, Type: typ})
	return b
}

func (b *Builder) Router(ids ...string) *Builder {
	for _, id := range ids {
		b.Device(id, topology.DeviceRouter)
	}
	return b
}

func (b *Builder) Switch(ids ...string) *Builder {
	for _, id := range ids {
		b.Device(id, topology.DeviceSwitch)
	}
	return b
}

func (b *Builder) ISP(ids ...string) *Builder {
	for _, id := range ids {
		b.Device(id, topology.DeviceISP)
	}
	return b
}

// Link connects two devices through freshly created ports
func (b *Builder) Link(id, from, to, medium string, maxBw, curBw float64) *Builder {
	b.t.Links = append(b.t.Links, topology.Link{
		ID:               id,
		Source:           topology.Ref(b.addPort(from)),
		Target:           topology.Ref(b.addPort(to)),
		Type:             medium,
		MaxBandwidth:     maxBw,
		CurrentBandwidth: curBw,
		Value:            1,
	})
	return b
}

// DirectLink connects two devices by device id, the legacy document shape
func (b *Builder) DirectLink(id, from, to, medium string, maxBw, curBw float64) *Builder {
	b.t.Links = append(b.t.Links, topology.Link{
		ID:               id,
		Source:           topology.Ref(from),
		Target:           topology.Ref(to),
		Type:             medium,
		MaxBandwidth:     maxBw,
		CurrentBandwidth: curBw,
		Value:            1,
	})
	return b
}

func (b *Builder) addPort(deviceID string) string {
	i, ok := b.index[deviceID]
	if !ok {
		// unknown devices produce dangling endpoints on purpose
		return deviceID + ":missing"
	}
	d := &b.t.Devices[i]
	n := len(d.Ports) + 1
	p := topology.Port{
		ID:       fmt.Sprintf("%s:%d", deviceID, n),
		Name:     fmt.Sprintf("eth%d", n),
		Status:   topology.PortActive,
		DeviceID: deviceID,
	}
	d.Ports = append(d.Ports, p)
	return p.ID
}

// Build returns the topology
func (b *Builder) Build() *topology.Topology {
	return b.t.Clone()
}

// Index builds the topology and indexes it without logging
func (b *Builder) Index() *topology.Index {
	return topology.BuildIndex(b.Build(), nil)
}

// Linear returns R1 -(fiber 1000/100)- R2 -(microwave 500/50)- ISP1
func Linear() *Builder {
	return New("linear").
		Router("R1", "R2").
		ISP("ISP1").
		Link("l1", "R1", "R2", "fiber", 1000, 100).
		Link("l2", "R2", "ISP1", "microwave", 500, 50)
}
