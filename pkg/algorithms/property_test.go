package algorithms

import (
	"fmt"
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dd0wney/cluso-netplan/pkg/cost"
	"github.com/dd0wney/cluso-netplan/pkg/topology"
	"github.com/dd0wney/cluso-netplan/pkg/topology/topologytest"
)

const propertyNodes = 7

// randomIndex builds a graph of up to eight devices from encoded device pairs
func randomIndex(pairs []int, usage []float64) *topology.Index {
	b := topologytest.New("random")
	for i := 0; i <= propertyNodes; i++ {
		b.Router(fmt.Sprintf("n%d", i))
	}
	mediums := []string{"fiber", "microwave", "ethernet"}
	for i, p := range pairs {
		from, to := p/(propertyNodes+1), p%(propertyNodes+1)
		b.Link(fmt.Sprintf("l%d", i), fmt.Sprintf("n%d", from), fmt.Sprintf("n%d", to),
			mediums[i%len(mediums)], 100, usage[i%len(usage)]*100)
	}
	return b.Index()
}

// bruteForce returns the cheapest simple path weight between two devices
func bruteForce(idx *topology.Index, start, end string) float64 {
	best := math.Inf(1)
	visited := map[string]bool{start: true}
	var walk func(at string, acc float64)
	walk = func(at string, acc float64) {
		if at == end {
			best = math.Min(best, acc)
			return
		}
		for _, e := range idx.Neighbors(at) {
			if visited[e.To] {
				continue
			}
			visited[e.To] = true
			walk(e.To, acc+cost.SearchWeight(e.Link))
			visited[e.To] = false
		}
	}
	walk(start, 0)
	return best
}

// TestPathProperties checks search results against exhaustive enumeration
func TestPathProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	pairs := gen.SliceOfN(12, gen.IntRange(0, (propertyNodes+1)*(propertyNodes+1)-1))
	usage := gen.SliceOfN(12, gen.Float64Range(0, 1.2))

	properties.Property("dijkstra is optimal", prop.ForAll(
		func(pairs []int, usage []float64) bool {
			idx := randomIndex(pairs, usage)
			for _, s := range idx.Devices() {
				for _, e := range idx.Devices() {
					path, weight := WeightedShortestPath(idx, s.ID, e.ID, cost.SearchWeight)
					want := bruteForce(idx, s.ID, e.ID)
					if math.IsInf(want, 1) {
						if path != nil {
							return false
						}
						continue
					}
					if path == nil || math.Abs(weight-want) > 1e-9 {
						return false
					}
					pw, ok := PathWeight(idx, path, cost.SearchWeight)
					if !ok || math.Abs(pw-weight) > 1e-9 {
						return false
					}
				}
			}
			return true
		},
		pairs, usage,
	))

	properties.Property("bfs is minimal", prop.ForAll(
		func(pairs []int, usage []float64) bool {
			idx := randomIndex(pairs, usage)
			for _, s := range idx.Devices() {
				dist := Reachable(idx, s.ID)
				for _, e := range idx.Devices() {
					path := FindPath(idx, s.ID, e.ID)
					d, reachable := dist[e.ID]
					if !reachable {
						if path != nil {
							return false
						}
						continue
					}
					if len(path)-1 != d || path[0] != s.ID || path[len(path)-1] != e.ID {
						return false
					}
				}
			}
			return true
		},
		pairs, usage,
	))

	properties.TestingRun(t)
}
