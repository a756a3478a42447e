package algorithms

import (
	"reflect"
	"testing"

	"github.com/dd0wney/cluso-netplan/pkg/topology/topologytest"
)

func TestConnectedComponents(t *testing.T) {
	idx := topologytest.New("islands").
		Router("R1", "R2", "R3").
		ISP("ISP1").
		Link("l1", "R1", "ISP1", "fiber", 1000, 0).
		Link("l2", "R2", "R3", "fiber", 1000, 0).
		Index()

	result := ConnectedComponents(idx)
	if len(result.Components) != 2 {
		t.Fatalf("Expected 2 components, got %d", len(result.Components))
	}

	first := result.Components[0]
	if !reflect.DeepEqual(first.Devices, []string{"R1", "ISP1"}) || !first.HasEgress() {
		t.Errorf("Unexpected first component %+v", first)
	}
	if result.DeviceComponent["R3"] != 1 {
		t.Errorf("Expected R3 in component 1, got %d", result.DeviceComponent["R3"])
	}
	if got := result.Isolated(); !reflect.DeepEqual(got, []string{"R2", "R3"}) {
		t.Errorf("Isolated() = %v", got)
	}
	if IsConnected(idx) {
		t.Error("Expected topology to be disconnected")
	}
	if !IsConnected(topologytest.Linear().Index()) {
		t.Error("Expected linear topology to be connected")
	}
}
