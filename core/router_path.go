package core

import (
	"slices"

	"github.com/encodeous/netsim/state"
)

// ShortestPath follows next hops from src towards dst. It returns an empty path when dst cannot be reached,
// including when the tables contain a loop or a dead end.
func (n *Network) ShortestPath(src, dst state.NodeId) []state.NodeId {
	if !n.Topology.HasNode(src) || !n.Topology.HasNode(dst) {
		return []state.NodeId{}
	}
	path := []state.NodeId{src}
	cur := src
	for cur != dst {
		nh, ok := n.NextHop(cur, dst)
		if !ok || nh == cur || slices.Contains(path, nh) {
			return []state.NodeId{}
		}
		path = append(path, nh)
		cur = nh
	}
	return path
}

// PathCost sums the link weights along path. Paths with fewer than two nodes cost nothing.
// A hop between two nodes that are not linked makes the whole path cost INF.
func (n *Network) PathCost(path []state.NodeId) state.Metric {
	cost := state.Metric(0)
	for i := 1; i < len(path); i++ {
		cost = AddMetric(cost, HopWeight(n.Topology, path[i-1], path[i]))
	}
	return cost
}

// ReportedCost is the cost shown to clients: -1 for an empty or broken path.
func (n *Network) ReportedCost(path []state.NodeId) int64 {
	if len(path) == 0 {
		return -1
	}
	cost := n.PathCost(path)
	if cost == state.INF {
		return -1
	}
	return int64(cost)
}

// Distance returns the converged metric from src to dst, or INF if unknown.
func (n *Network) Distance(src, dst state.NodeId) state.Metric {
	r, ok := n.Tables[src][dst]
	if !ok {
		return state.INF
	}
	return r.Metric
}
