package core

import (
	"fmt"

	"github.com/encodeous/netsim/state"
)

type Route struct {
	Nh     state.NodeId // next hop node, empty if there is none
	Metric state.Metric
}

// RouteTable maps a destination to the selected route towards it
type RouteTable map[state.NodeId]Route

// Network holds one routing table per node of a private topology snapshot.
// It is not safe for concurrent mutation, but a converged Network may be read from many goroutines.
type Network struct {
	Topology   *state.Topology
	Tables     map[state.NodeId]RouteTable
	Converged  bool
	Iterations int
	MaxIter    int
	Obs        Observer
}

// NewNetwork takes a snapshot of topo and initializes every routing table. obs may be nil.
func NewNetwork(topo *state.Topology, obs Observer) *Network {
	n := &Network{
		Topology: topo.Clone(),
		MaxIter:  state.MaxIterations,
		Obs:      obs,
	}
	n.Initialize()
	return n
}

// Simulate builds a network from cfg and runs distance-vector exchange until convergence or maxIter rounds.
func Simulate(cfg state.TopologyCfg, maxIter int, obs Observer) (*Network, error) {
	topo, err := cfg.Topology()
	if err != nil {
		return nil, err
	}
	n := NewNetwork(topo, obs)
	n.Converge(maxIter)
	return n, nil
}

func (n *Network) log(event RouterEvent, desc string, args ...any) {
	if n.Obs != nil {
		n.Obs.Log(event, desc, args...)
	}
}

// Table returns the routing table of a node, or nil if the node does not exist.
func (n *Network) Table(id state.NodeId) RouteTable {
	return n.Tables[id]
}

func (n *Network) NextHop(src, dst state.NodeId) (state.NodeId, bool) {
	tbl, ok := n.Tables[src]
	if !ok {
		return "", false
	}
	r, ok := tbl[dst]
	if !ok || r.Nh == "" {
		return "", false
	}
	return r.Nh, true
}

// mutate applies fn to the topology, then rebuilds and re-converges every table from scratch.
func (n *Network) mutate(fn func(t *state.Topology) error) error {
	if err := fn(n.Topology); err != nil {
		return err
	}
	n.log(TopologyChanged, "topology changed, recomputing all tables", "nodes", len(n.Topology.Nodes))
	n.Initialize()
	n.Converge(n.MaxIter)
	return nil
}

func (n *Network) AddNode(id state.NodeId) error {
	return n.mutate(func(t *state.Topology) error {
		return t.AddNode(id)
	})
}

func (n *Network) RemoveNode(id state.NodeId) error {
	return n.mutate(func(t *state.Topology) error {
		return t.RemoveNode(id)
	})
}

func (n *Network) AddLink(a, b state.NodeId, weight state.Metric) error {
	return n.mutate(func(t *state.Topology) error {
		return t.AddLink(a, b, weight)
	})
}

func (n *Network) RemoveLink(a, b state.NodeId) error {
	return n.mutate(func(t *state.Topology) error {
		return t.RemoveLink(a, b)
	})
}

func (r Route) String() string {
	if r.Metric == state.INF {
		return "(-, inf)"
	}
	return fmt.Sprintf("(%s, %d)", r.Nh, r.Metric)
}
