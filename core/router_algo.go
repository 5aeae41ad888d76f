package core

import (
	"github.com/encodeous/netsim/state"
)

type RouterEvent int

// trace events

const (
	RouteImproved RouterEvent = iota
	RoundComplete
	TopologyChanged
)

// outcome events

const (
	Converged RouterEvent = iota + 1000
	NotConverged
)

// Observer receives the events emitted by the routing engine
type Observer interface {
	Log(event RouterEvent, desc string, args ...any)
}

// Initialize discards every table and seeds it with the node itself and its direct neighbours.
func (n *Network) Initialize() {
	ids := n.Topology.NodeIds()
	n.Tables = make(map[state.NodeId]RouteTable, len(ids))
	n.Converged = false
	n.Iterations = 0
	for _, id := range ids {
		tbl := make(RouteTable, len(ids))
		for _, dst := range ids {
			tbl[dst] = Route{Metric: state.INF}
		}
		for neigh, w := range n.Topology.Nodes[id].Neighbours {
			tbl[neigh] = Route{Nh: neigh, Metric: w}
		}
		tbl[id] = Route{Nh: id, Metric: 0}
		n.Tables[id] = tbl
	}
}

// distanceVector is what a node advertises to its neighbours: the metric towards every destination.
func (n *Network) distanceVector(id state.NodeId) map[state.NodeId]state.Metric {
	tbl := n.Tables[id]
	dv := make(map[state.NodeId]state.Metric, len(tbl))
	for dst, r := range tbl {
		dv[dst] = r.Metric
	}
	return dv
}

// HandleVector applies a distance vector received by node from its neighbour sender.
// It returns true if any route of node improved.
func (n *Network) HandleVector(node, sender state.NodeId, dv map[state.NodeId]state.Metric) bool {
	tbl := n.Tables[node]
	direct, ok := n.Topology.Weight(node, sender)
	if !ok {
		return false
	}
	updated := false
	for _, dst := range n.Topology.NodeIds() {
		if dst == node {
			continue // skip self
		}
		reported, ok := dv[dst]
		if !ok {
			continue
		}
		// Cost(node, sender) + Cost(sender, dst)
		candidate := AddMetric(direct, reported)
		if candidate < tbl[dst].Metric {
			tbl[dst] = Route{Nh: sender, Metric: candidate}
			updated = true
			n.log(RouteImproved, "route improved", "node", node, "dst", dst, "nh", sender, "metric", candidate)
		}
	}
	return updated
}

// Round performs one exchange: every node snapshots its vector, then each neighbour applies it in turn.
// Updates take effect immediately, so a later pair in the same round may already see them in its own table.
func (n *Network) Round() bool {
	ids := n.Topology.NodeIds()
	vectors := make(map[state.NodeId]map[state.NodeId]state.Metric, len(ids))
	for _, id := range ids {
		vectors[id] = n.distanceVector(id)
	}

	changed := false
	for _, sender := range ids {
		for _, neigh := range n.Topology.NeighbourIds(sender) {
			if n.HandleVector(neigh, sender, vectors[sender]) {
				changed = true
			}
		}
	}
	return changed
}

// Converge runs rounds until no table changes or maxIter rounds have been executed.
// It reports whether the tables converged; on false the tables hold the best routes found so far.
func (n *Network) Converge(maxIter int) bool {
	n.MaxIter = maxIter
	n.Converged = false
	n.Iterations = 0
	for n.Iterations < maxIter {
		n.Iterations++
		changed := n.Round()
		n.log(RoundComplete, "round complete", "iteration", n.Iterations, "changed", changed)
		if !changed {
			n.Converged = true
			n.log(Converged, "distance vectors converged", "iterations", n.Iterations)
			return true
		}
	}
	n.log(NotConverged, "distance vectors did not converge", "iterations", n.Iterations)
	return false
}
