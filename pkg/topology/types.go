package topology

import "math"

// DeviceType classifies a device in the topology
type DeviceType string

const (
	DeviceRouter DeviceType = "router"
	DeviceSwitch DeviceType = "switch"
	DeviceISP    DeviceType = "isp"
)

// Valid reports whether t is one of the known device types
func (t DeviceType) Valid() bool {
	switch t {
	case DeviceRouter, DeviceSwitch, DeviceISP:
		return true
	}
	return false
}

// PortStatus is the operational status of a port
type PortStatus string

const (
	PortActive   PortStatus = "active"
	PortInactive PortStatus = "inactive"
	PortError    PortStatus = "error"
)

// Device is a router, switch or ISP egress point
type Device struct {
	ID    string     `json:"id" yaml:"id" validate:"required,max=255"`
	Name  string     `json:"name" yaml:"name" validate:"required,max=255"`
	Type  DeviceType `json:"type" yaml:"type" validate:"required,oneof=router switch isp"`
	Ports []Port     `json:"ports,omitempty" yaml:"ports,omitempty" validate:"dive"`
}

// Label returns the display name, falling back to the id
func (d *Device) Label() string {
	if d.Name != "" {
		return d.Name
	}
	return d.ID
}

// Port is an interface on a device. DeviceID is a non-owning back reference;
// when empty the port belongs to the device listing it.
type Port struct {
	ID       string     `json:"id" yaml:"id" validate:"required,max=255"`
	Name     string     `json:"name" yaml:"name"`
	Status   PortStatus `json:"status,omitempty" yaml:"status,omitempty" validate:"omitempty,oneof=active inactive error"`
	DeviceID string     `json:"deviceId,omitempty" yaml:"deviceId,omitempty"`
}

// Link is an edge between two ports (or, in legacy documents, two devices)
type Link struct {
	ID               string   `json:"id" yaml:"id" validate:"required,max=255"`
	Source           Endpoint `json:"source" yaml:"source"`
	Target           Endpoint `json:"target" yaml:"target"`
	Type             string   `json:"type,omitempty" yaml:"type,omitempty"`
	MaxBandwidth     float64  `json:"maxBandwidth" yaml:"maxBandwidth" validate:"gte=0"`
	CurrentBandwidth float64  `json:"currentBandwidth" yaml:"currentBandwidth"`
	Value            int      `json:"value,omitempty" yaml:"value,omitempty"`
}

// Available returns maxBandwidth - currentBandwidth in Mbps. The result may be
// zero or negative for saturated links; NaN telemetry yields 0.
func (l *Link) Available() float64 {
	a := l.MaxBandwidth - l.CurrentBandwidth
	if math.IsNaN(a) {
		return 0
	}
	return a
}

// UsageRatio returns currentBandwidth/maxBandwidth clamped to [0, +inf).
// A link without a usable capacity reports full usage.
func (l *Link) UsageRatio() float64 {
	if !(l.MaxBandwidth > 0) || math.IsInf(l.MaxBandwidth, 0) {
		return 1
	}
	r := l.CurrentBandwidth / l.MaxBandwidth
	switch {
	case math.IsNaN(r) || math.IsInf(r, 1):
		return 1
	case r < 0:
		return 0
	}
	return r
}

// UsagePercent returns the utilisation as a percentage. A link without
// capacity reports 100.
func (l *Link) UsagePercent() float64 {
	return l.UsageRatio() * 100
}

// Topology is a named collection of devices and links
type Topology struct {
	ID          string   `json:"id" yaml:"id" validate:"required,max=255"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Devices     []Device `json:"devices" yaml:"devices" validate:"dive"`
	Links       []Link   `json:"links" yaml:"links" validate:"dive"`
}

// Summary describes a topology in a catalog listing
type Summary struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Active      bool   `json:"active" yaml:"active"`
}

// Summary returns the catalog entry for t
func (t *Topology) Summary() Summary {
	return Summary{ID: t.ID, Name: t.Name, Description: t.Description}
}

// Clone returns a deep copy of the topology
func (t *Topology) Clone() *Topology {
	if t == nil {
		return nil
	}
	c := &Topology{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Devices:     make([]Device, len(t.Devices)),
		Links:       make([]Link, len(t.Links)),
	}
	for i, d := range t.Devices {
		c.Devices[i] = d
		if d.Ports != nil {
			c.Devices[i].Ports = append([]Port(nil), d.Ports...)
		}
	}
	copy(c.Links, t.Links)
	return c
}

// BandwidthUpdate overwrites the utilised bandwidth of one link
type BandwidthUpdate struct {
	LinkID           string  `json:"linkId" validate:"required"`
	CurrentBandwidth float64 `json:"currentBandwidth"`
}

// BandwidthResult reports the outcome of a bandwidth refresh
type BandwidthResult struct {
	TopologyID   string   `json:"topologyId"`
	TotalLinks   int      `json:"totalLinks"`
	UpdatedLinks int      `json:"updatedLinks"`
	Errors       int      `json:"errors"`
	ErrorDetails []string `json:"errorDetails"`
}
