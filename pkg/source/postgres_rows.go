package source

import "github.com/dd0wney/cluso-netplan/pkg/topology"

type topologyRow struct {
	ID   string
	Name string
}

// nodeRow is one row of nodes LEFT JOIN ports; the port columns are NULL for
// devices without ports
type nodeRow struct {
	NodeID       string
	NodeName     string
	NodeType     string
	PortID       *string
	PortName     *string
	PortStatus   *string
	PortDeviceID *string
}

type linkRow struct {
	ID               string
	SourceID         string
	TargetID         string
	Type             string
	MaxBandwidth     int64
	CurrentBandwidth int64
	Value            int64
}

// assemble groups joined rows into a topology, keeping row order for devices,
// their ports and links. Link endpoints are port ids.
func assemble(head topologyRow, nodes []nodeRow, links []linkRow) *topology.Topology {
	t := &topology.Topology{
		ID:      head.ID,
		Name:    head.Name,
		Devices: make([]topology.Device, 0),
		Links:   make([]topology.Link, 0, len(links)),
	}

	pos := make(map[string]int)
	for _, r := range nodes {
		i, ok := pos[r.NodeID]
		if !ok {
			i = len(t.Devices)
			pos[r.NodeID] = i
			t.Devices = append(t.Devices, topology.Device{
				ID:   r.NodeID,
				Name: r.NodeName,
				Type: topology.DeviceType(r.NodeType),
			})
		}
		if r.PortID == nil {
			continue
		}
		p := topology.Port{ID: *r.PortID, DeviceID: r.NodeID}
		if r.PortName != nil {
			p.Name = *r.PortName
		}
		if r.PortStatus != nil {
			p.Status = topology.PortStatus(*r.PortStatus)
		}
		if r.PortDeviceID != nil {
			p.DeviceID = *r.PortDeviceID
		}
		t.Devices[i].Ports = append(t.Devices[i].Ports, p)
	}

	for _, r := range links {
		value := int(r.Value)
		if value == 0 {
			value = 1
		}
		t.Links = append(t.Links, topology.Link{
			ID:               r.ID,
			Source:           topology.PortRef(r.SourceID),
			Target:           topology.PortRef(r.TargetID),
			Type:             r.Type,
			MaxBandwidth:     float64(r.MaxBandwidth),
			CurrentBandwidth: float64(r.CurrentBandwidth),
			Value:            value,
		})
	}
	return t
}
