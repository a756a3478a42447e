// Package algorithms implements path search over the device adjacency of a
// topology index. Every function is read-only over the index and keeps no
// state between calls.
package algorithms

import (
	"container/heap"
	"container/list"
	"math"

	"github.com/dd0wney/cluso-netplan/pkg/cost"
	"github.com/dd0wney/cluso-netplan/pkg/topology"
)

// WeightFunc prices one traversal of a link. It must return a positive value.
type WeightFunc func(*topology.Link) float64

// FindPath returns the path with the fewest hops between two devices using BFS.
// Among equally short paths the first one discovered in link order wins.
// Returns [start] when start == end and nil when no path exists or either
// device is unknown.
func FindPath(idx *topology.Index, startID, endID string) []string {
	if !idx.HasDevice(startID) || !idx.HasDevice(endID) {
		return nil
	}
	if startID == endID {
		return []string{startID}
	}

	queue := list.New()
	parent := map[string]string{startID: startID} // device -> parent
	queue.PushBack(startID)

	for queue.Len() > 0 {
		currentID := queue.Remove(queue.Front()).(string)

		for _, edge := range idx.Neighbors(currentID) {
			if _, seen := parent[edge.To]; seen {
				continue
			}
			parent[edge.To] = currentID
			if edge.To == endID {
				return reconstructPath(startID, endID, parent)
			}
			queue.PushBack(edge.To)
		}
	}

	return nil
}

// ShortestPath finds the cheapest path between two devices using Dijkstra's
// algorithm weighted by cost.SearchWeight.
func ShortestPath(idx *topology.Index, startID, endID string) []string {
	path, _ := WeightedShortestPath(idx, startID, endID, cost.SearchWeight)
	return path
}

// WeightedShortestPath finds the cheapest path between two devices using
// Dijkstra's algorithm and returns it with its total weight. Equal tentative
// distances are settled in discovery order and a parent is only replaced by a
// strictly cheaper one, so results are stable. The search stops as soon as
// the destination is settled. Returns nil and +Inf when unreachable.
func WeightedShortestPath(idx *topology.Index, startID, endID string, weight WeightFunc) ([]string, float64) {
	if !idx.HasDevice(startID) || !idx.HasDevice(endID) {
		return nil, math.Inf(1)
	}
	if startID == endID {
		return []string{startID}, 0
	}
	if weight == nil {
		weight = cost.SearchWeight
	}

	distances := map[string]float64{startID: 0}
	parent := map[string]string{startID: startID}
	settled := make(map[string]bool)

	pq := &distanceQueue{}
	var seq int
	heap.Push(pq, pqItem{deviceID: startID, distance: 0, seq: seq})

	for pq.Len() > 0 {
		current := heap.Pop(pq).(pqItem)
		if settled[current.deviceID] || current.distance > distances[current.deviceID] {
			continue // stale entry
		}
		settled[current.deviceID] = true

		if current.deviceID == endID {
			return reconstructPath(startID, endID, parent), current.distance
		}

		for _, edge := range idx.Neighbors(current.deviceID) {
			if settled[edge.To] {
				continue
			}
			newDist := current.distance + weight(edge.Link)
			if oldDist, seen := distances[edge.To]; !seen || newDist < oldDist {
				distances[edge.To] = newDist
				parent[edge.To] = current.deviceID
				seq++
				heap.Push(pq, pqItem{deviceID: edge.To, distance: newDist, seq: seq})
			}
		}
	}

	return nil, math.Inf(1)
}

// PathWeight sums the weight of a device path taking the cheapest parallel link
// for every hop. ok is false when some hop has no traversable link.
func PathWeight(idx *topology.Index, path []string, weight WeightFunc) (total float64, ok bool) {
	if weight == nil {
		weight = cost.SearchWeight
	}
	for i := 0; i+1 < len(path); i++ {
		edge, found := idx.EdgeBetween(path[i], path[i+1], weight)
		if !found {
			return math.Inf(1), false
		}
		total += weight(edge.Link)
	}
	return total, len(path) > 0
}

// Reachable returns the hop distance from start to every device it can reach,
// start included at distance 0.
func Reachable(idx *topology.Index, startID string) map[string]int {
	distances := make(map[string]int)
	if !idx.HasDevice(startID) {
		return distances
	}
	distances[startID] = 0

	queue := list.New()
	queue.PushBack(startID)

	for queue.Len() > 0 {
		currentID := queue.Remove(queue.Front()).(string)
		currentDist := distances[currentID]

		for _, edge := range idx.Neighbors(currentID) {
			if _, visited := distances[edge.To]; !visited {
				distances[edge.To] = currentDist + 1
				queue.PushBack(edge.To)
			}
		}
	}

	return distances
}

// reconstructPath walks parents back from end to start
func reconstructPath(startID, endID string, parent map[string]string) []string {
	path := make([]string, 0)
	node := endID
	for node != startID {
		path = append(path, node)
		node = parent[node]
	}
	path = append(path, startID)

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

type pqItem struct {
	deviceID string
	distance float64
	seq      int
}

// distanceQueue is a min-heap on distance, then insertion sequence
type distanceQueue []pqItem

func (q distanceQueue) Len() int { return len(q) }
func (q distanceQueue) Less(i, j int) bool {
	if q[i].distance != q[j].distance {
		return q[i].distance < q[j].distance
	}
	return q[i].seq < q[j].seq
}
func (q distanceQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *distanceQueue) Push(x any) {
	*q = append(*q, x.(pqItem))
}

func (q *distanceQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
