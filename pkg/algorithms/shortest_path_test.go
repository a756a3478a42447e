package algorithms

import (
	"math"
	"reflect"
	"testing"

	"github.com/dd0wney/cluso-netplan/pkg/cost"
	"github.com/dd0wney/cluso-netplan/pkg/topology"
	"github.com/dd0wney/cluso-netplan/pkg/topology/topologytest"
)

// diamond: A-B-D and A-C-D with an extra long way round A-E-F-D
func diamond() *topologytest.Builder {
	return topologytest.New("diamond").
		Router("A", "B", "C", "D", "E", "F").
		Link("ab", "A", "B", "fiber", 1000, 900).
		Link("ac", "A", "C", "fiber", 1000, 0).
		Link("bd", "B", "D", "fiber", 1000, 900).
		Link("cd", "C", "D", "fiber", 1000, 0).
		Link("ae", "A", "E", "fiber", 1000, 0).
		Link("ef", "E", "F", "fiber", 1000, 0).
		Link("fd", "F", "D", "fiber", 1000, 0)
}

func TestFindPath_SameDevice(t *testing.T) {
	idx := topologytest.Linear().Index()

	path := FindPath(idx, "R1", "R1")
	if !reflect.DeepEqual(path, []string{"R1"}) {
		t.Errorf("Expected [R1], got %v", path)
	}
}

func TestFindPath_UnknownDevice(t *testing.T) {
	idx := topologytest.Linear().Index()

	if path := FindPath(idx, "R1", "nope"); path != nil {
		t.Errorf("Expected nil path, got %v", path)
	}
	if path := FindPath(idx, "nope", "nope"); path != nil {
		t.Errorf("Expected nil path for unknown start, got %v", path)
	}
}

func TestFindPath_FirstDiscoveredWins(t *testing.T) {
	idx := diamond().Index()

	// A-B-D and A-C-D are both two hops; ab was inserted first
	path := FindPath(idx, "A", "D")
	if !reflect.DeepEqual(path, []string{"A", "B", "D"}) {
		t.Errorf("Expected [A B D], got %v", path)
	}
}

func TestFindPath_MatchesHopDistance(t *testing.T) {
	idx := diamond().Index()
	dist := Reachable(idx, "A")

	for _, d := range idx.Devices() {
		path := FindPath(idx, "A", d.ID)
		if path == nil {
			t.Fatalf("no path A -> %s", d.ID)
		}
		if len(path)-1 != dist[d.ID] {
			t.Errorf("A -> %s: %d hops, want %d", d.ID, len(path)-1, dist[d.ID])
		}
	}
}

func TestShortestPath_Linear(t *testing.T) {
	idx := topologytest.Linear().Index()

	path := ShortestPath(idx, "R1", "ISP1")
	if !reflect.DeepEqual(path, []string{"R1", "R2", "ISP1"}) {
		t.Errorf("Expected [R1 R2 ISP1], got %v", path)
	}
}

func TestShortestPath_AvoidsCongestion(t *testing.T) {
	idx := diamond().Index()

	path, weight := WeightedShortestPath(idx, "A", "D", cost.SearchWeight)
	if !reflect.DeepEqual(path, []string{"A", "C", "D"}) {
		t.Errorf("Expected [A C D], got %v", path)
	}
	// two idle fiber gigabit hops
	want := 2 * (10 + 100.0/1000)
	if math.Abs(weight-want) > 1e-9 {
		t.Errorf("Expected weight %v, got %v", want, weight)
	}
}

func TestShortestPath_StableTies(t *testing.T) {
	idx := topologytest.New("tie").
		Router("A", "B", "C", "D").
		Link("ab", "A", "B", "fiber", 1000, 0).
		Link("ac", "A", "C", "fiber", 1000, 0).
		Link("bd", "B", "D", "fiber", 1000, 0).
		Link("cd", "C", "D", "fiber", 1000, 0).
		Index()

	for i := 0; i < 20; i++ {
		path := ShortestPath(idx, "A", "D")
		if !reflect.DeepEqual(path, []string{"A", "B", "D"}) {
			t.Fatalf("run %d: expected [A B D], got %v", i, path)
		}
	}
}

func TestShortestPath_ParallelLinks(t *testing.T) {
	idx := topologytest.New("parallel").
		Router("A", "B").
		Link("busy", "A", "B", "fiber", 100, 99).
		Link("idle", "A", "B", "fiber", 100, 0).
		Index()

	path, weight := WeightedShortestPath(idx, "A", "B", cost.SearchWeight)
	if !reflect.DeepEqual(path, []string{"A", "B"}) {
		t.Fatalf("Expected [A B], got %v", path)
	}
	if math.Abs(weight-11) > 1e-9 {
		t.Errorf("Expected the idle link weight 11, got %v", weight)
	}

	pw, ok := PathWeight(idx, path, cost.SearchWeight)
	if !ok || math.Abs(pw-weight) > 1e-9 {
		t.Errorf("PathWeight = %v, %v; want %v, true", pw, ok, weight)
	}
}

func TestShortestPath_SaturatedLinkStillUsed(t *testing.T) {
	idx := topologytest.New("saturated").
		Router("A").
		ISP("B").
		Link("full", "A", "B", "fiber", 100, 150).
		Index()

	path, weight := WeightedShortestPath(idx, "A", "B", cost.SearchWeight)
	if !reflect.DeepEqual(path, []string{"A", "B"}) {
		t.Fatalf("Expected [A B], got %v", path)
	}
	if math.IsInf(weight, 0) || weight < cost.NoCapacityPenalty {
		t.Errorf("Expected a large finite weight, got %v", weight)
	}
}

func TestShortestPath_DeviceDirectLinks(t *testing.T) {
	idx := topologytest.New("legacy").
		Router("A", "B").
		ISP("X").
		DirectLink("ab", "A", "B", "ethernet", 1000, 0).
		DirectLink("bx", "B", "X", "ethernet", 1000, 0).
		Index()

	if path := ShortestPath(idx, "A", "X"); !reflect.DeepEqual(path, []string{"A", "B", "X"}) {
		t.Errorf("Expected [A B X], got %v", path)
	}
}

func TestDisconnected(t *testing.T) {
	idx := topologytest.New("islands").
		Router("R1", "R2").
		ISP("ISP1", "ISP2").
		Link("l1", "R1", "ISP1", "fiber", 1000, 0).
		Link("l2", "R2", "ISP2", "fiber", 1000, 0).
		Index()

	if path := FindPath(idx, "R1", "ISP2"); path != nil {
		t.Errorf("FindPath: expected nil, got %v", path)
	}
	path, weight := WeightedShortestPath(idx, "R1", "ISP2", cost.SearchWeight)
	if path != nil {
		t.Errorf("ShortestPath: expected nil, got %v", path)
	}
	if !math.IsInf(weight, 1) {
		t.Errorf("Expected +Inf weight, got %v", weight)
	}
}

func TestShortestPath_IgnoresSelfLoopsAndDanglingLinks(t *testing.T) {
	top := topologytest.New("broken").
		Router("A", "B").
		Link("ab", "A", "B", "fiber", 1000, 0).
		Build()
	top.Links = append(top.Links,
		topology.Link{ID: "loop", Source: topology.DeviceRef("A"), Target: topology.DeviceRef("A"), Type: "fiber", MaxBandwidth: 1},
		topology.Link{ID: "ghost", Source: topology.Ref("A"), Target: topology.Ref("Z"), Type: "fiber", MaxBandwidth: 1},
	)
	idx := topology.BuildIndex(top, nil)

	if path := ShortestPath(idx, "A", "B"); !reflect.DeepEqual(path, []string{"A", "B"}) {
		t.Errorf("Expected [A B], got %v", path)
	}
	if path := ShortestPath(idx, "A", "Z"); path != nil {
		t.Errorf("Expected nil path to unknown device, got %v", path)
	}
}

func TestPathWeight_MissingHop(t *testing.T) {
	idx := topologytest.Linear().Index()

	if _, ok := PathWeight(idx, []string{"R1", "ISP1"}, nil); ok {
		t.Error("Expected ok=false for a hop without a link")
	}
	if w, ok := PathWeight(idx, []string{"R1"}, nil); !ok || w != 0 {
		t.Errorf("single device path: got %v, %v", w, ok)
	}
	if _, ok := PathWeight(idx, nil, nil); ok {
		t.Error("Expected ok=false for an empty path")
	}
}

func TestReachable(t *testing.T) {
	idx := topologytest.Linear().Index()

	got := Reachable(idx, "R1")
	want := map[string]int{"R1": 0, "R2": 1, "ISP1": 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Reachable = %v, want %v", got, want)
	}
	if len(Reachable(idx, "missing")) != 0 {
		t.Error("Expected no distances for an unknown device")
	}
}
