package algorithms

import (
	"container/list"

	"github.com/dd0wney/cluso-netplan/pkg/topology"
)

// Component is a set of devices connected to each other by traversable links
type Component struct {
	ID      int      `json:"id"`
	Devices []string `json:"devices"`
	ISPs    []string `json:"isps"`
	Size    int      `json:"size"`
}

// HasEgress reports whether the component contains at least one ISP
func (c *Component) HasEgress() bool {
	return len(c.ISPs) > 0
}

// ComponentsResult partitions the devices of a topology
type ComponentsResult struct {
	Components      []*Component   `json:"components"`
	DeviceComponent map[string]int `json:"deviceComponent"` // device id -> component id
}

// Isolated returns the devices in components without an ISP, grouped by component
func (r *ComponentsResult) Isolated() []string {
	out := make([]string, 0)
	for _, c := range r.Components {
		if !c.HasEgress() {
			out = append(out, c.Devices...)
		}
	}
	return out
}

// ConnectedComponents finds the islands of a topology. Components are numbered
// in the topology order of their first device.
func ConnectedComponents(idx *topology.Index) *ComponentsResult {
	visited := make(map[string]bool)
	result := &ComponentsResult{
		Components:      make([]*Component, 0),
		DeviceComponent: make(map[string]int),
	}

	for _, start := range idx.Devices() {
		if visited[start.ID] {
			continue
		}

		component := &Component{
			ID:      len(result.Components),
			Devices: make([]string, 0),
			ISPs:    make([]string, 0),
		}

		queue := list.New()
		queue.PushBack(start.ID)
		visited[start.ID] = true

		for queue.Len() > 0 {
			deviceID := queue.Remove(queue.Front()).(string)
			component.Devices = append(component.Devices, deviceID)
			result.DeviceComponent[deviceID] = component.ID
			if d, ok := idx.Device(deviceID); ok && d.Type == topology.DeviceISP {
				component.ISPs = append(component.ISPs, deviceID)
			}

			for _, edge := range idx.Neighbors(deviceID) {
				if !visited[edge.To] {
					visited[edge.To] = true
					queue.PushBack(edge.To)
				}
			}
		}

		component.Size = len(component.Devices)
		result.Components = append(result.Components, component)
	}

	return result
}

// IsConnected reports whether every device can reach every other device
func IsConnected(idx *topology.Index) bool {
	return len(ConnectedComponents(idx).Components) <= 1
}
