// Package route computes minimum-cost paths over a weighted snapshot and
// reconstructs their geometry and statistics.
package route

import (
	"container/heap"

	"github.com/rotisserie/eris"

	"github.com/safemap/saferoute/internal/network"
)

// ErrNoPath is returned when the destination is unreachable from the origin.
var ErrNoPath = eris.New("route: no path found")

// Shortest runs Dijkstra from origin to dest under one profile's composite
// weight column and returns the node sequence. Parallel edges are handled
// implicitly: every outgoing edge is relaxed with its own weight, so the
// per-pair minimum wins. The search is deterministic; equal tentative
// distances pop in node-id order.
func Shortest(s *network.Snapshot, origin, dest network.NodeID, profileTag string) ([]network.NodeID, error) {
	pi, err := s.ProfileIndex(profileTag)
	if err != nil {
		return nil, err
	}
	if int(origin) < 0 || int(origin) >= len(s.Nodes) || int(dest) < 0 || int(dest) >= len(s.Nodes) {
		return nil, eris.Errorf("route: node out of range (origin=%d dest=%d)", origin, dest)
	}

	dist := make(map[network.NodeID]float64, 64)
	cameFrom := make(map[network.NodeID]network.NodeID, 64)
	settled := make(map[network.NodeID]bool, 64)

	pq := &priorityQueue{}
	heap.Init(pq)
	heap.Push(pq, &pqItem{node: origin, dist: 0})
	dist[origin] = 0

	for pq.Len() > 0 {
		item := heap.Pop(pq).(*pqItem)
		cur := item.node
		if settled[cur] {
			continue
		}
		settled[cur] = true
		if cur == dest {
			return climb(cameFrom, origin, dest), nil
		}

		for _, ei := range s.Outgoing(cur) {
			e := &s.Edges[ei]
			tentative := dist[cur] + e.Weights[pi]
			if old, ok := dist[e.To]; !ok || tentative < old {
				dist[e.To] = tentative
				cameFrom[e.To] = cur
				heap.Push(pq, &pqItem{node: e.To, dist: tentative})
			}
		}
	}
	return nil, eris.Wrapf(ErrNoPath, "from node %d to node %d under profile %q", origin, dest, profileTag)
}

func climb(cameFrom map[network.NodeID]network.NodeID, origin, dest network.NodeID) []network.NodeID {
	path := []network.NodeID{dest}
	for cur := dest; cur != origin; {
		cur = cameFrom[cur]
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

type pqItem struct {
	node network.NodeID
	dist float64
}

type priorityQueue []*pqItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].dist != pq[j].dist {
		return pq[i].dist < pq[j].dist
	}
	return pq[i].node < pq[j].node
}

func (pq priorityQueue) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *priorityQueue) Push(x any) {
	*pq = append(*pq, x.(*pqItem))
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
