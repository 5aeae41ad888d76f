package state

import (
	"fmt"
	"maps"
	"slices"
)

type NodeId string

// Metric is an additive link or path cost. INF marks an unreachable destination.
type Metric = uint32

type Link struct {
	A      NodeId
	B      NodeId
	Weight Metric
}

type Node struct {
	Id         NodeId
	Neighbours map[NodeId]Metric
}

// Topology maps every node to its set of weighted, symmetric links.
// A Topology is not safe for concurrent mutation, callers hand each simulation its own Clone.
type Topology struct {
	Nodes map[NodeId]*Node
}

func NewTopology(nodes []NodeId, links []Link) (*Topology, error) {
	t := &Topology{Nodes: make(map[NodeId]*Node, len(nodes))}
	for _, id := range nodes {
		if err := t.AddNode(id); err != nil {
			return nil, err
		}
	}
	for _, l := range links {
		if err := t.AddLink(l.A, l.B, l.Weight); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Topology) AddNode(id NodeId) error {
	if err := NameValidator(string(id)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTopology, err)
	}
	if _, ok := t.Nodes[id]; ok {
		return fmt.Errorf("%w: duplicate node %s", ErrInvalidTopology, id)
	}
	t.Nodes[id] = &Node{
		Id:         id,
		Neighbours: make(map[NodeId]Metric),
	}
	return nil
}

// RemoveNode deletes the node and every link that references it.
func (t *Topology) RemoveNode(id NodeId) error {
	n, ok := t.Nodes[id]
	if !ok {
		return fmt.Errorf("%w: node %s not defined", ErrInvalidTopology, id)
	}
	for neigh := range n.Neighbours {
		delete(t.Nodes[neigh].Neighbours, id)
	}
	delete(t.Nodes, id)
	return nil
}

// AddLink adds an undirected link. Re-adding an existing link with the same weight is a no-op.
func (t *Topology) AddLink(a, b NodeId, weight Metric) error {
	na, ok := t.Nodes[a]
	if !ok {
		return fmt.Errorf("%w: link %s-%s references undefined node %s", ErrInvalidTopology, a, b, a)
	}
	nb, ok := t.Nodes[b]
	if !ok {
		return fmt.Errorf("%w: link %s-%s references undefined node %s", ErrInvalidTopology, a, b, b)
	}
	if a == b {
		return fmt.Errorf("%w: self link on %s", ErrInvalidTopology, a)
	}
	if weight == 0 || weight >= INFM {
		return fmt.Errorf("%w: link %s-%s has weight %d, must be in [1, %d)", ErrInvalidTopology, a, b, weight, INFM)
	}
	if w, ok := na.Neighbours[b]; ok {
		if w != weight {
			return fmt.Errorf("%w: duplicate link %s-%s with weights %d and %d", ErrInvalidTopology, a, b, w, weight)
		}
		return nil
	}
	// the total weight bounds every simple path sum, which must stay below INFM
	if total := t.TotalWeight() + uint64(weight); total >= uint64(INFM) {
		return fmt.Errorf("%w: link %s-%s with weight %d brings the total link weight to %d, must stay below %d", ErrInvalidTopology, a, b, weight, total, INFM)
	}
	na.Neighbours[b] = weight
	nb.Neighbours[a] = weight
	return nil
}

func (t *Topology) RemoveLink(a, b NodeId) error {
	na, ok := t.Nodes[a]
	if !ok {
		return fmt.Errorf("%w: node %s not defined", ErrInvalidTopology, a)
	}
	if _, ok := na.Neighbours[b]; !ok {
		return fmt.Errorf("%w: no link %s-%s", ErrInvalidTopology, a, b)
	}
	delete(na.Neighbours, b)
	delete(t.Nodes[b].Neighbours, a)
	return nil
}

// TotalWeight sums the weight of every link.
func (t *Topology) TotalWeight() uint64 {
	var total uint64
	for id, n := range t.Nodes {
		for neigh, w := range n.Neighbours {
			if id < neigh {
				total += uint64(w)
			}
		}
	}
	return total
}

func (t *Topology) HasNode(id NodeId) bool {
	_, ok := t.Nodes[id]
	return ok
}

// Weight returns the direct link weight between a and b.
func (t *Topology) Weight(a, b NodeId) (Metric, bool) {
	n, ok := t.Nodes[a]
	if !ok {
		return INF, false
	}
	w, ok := n.Neighbours[b]
	if !ok {
		return INF, false
	}
	return w, true
}

// NodeIds returns every node id in sorted order.
func (t *Topology) NodeIds() []NodeId {
	return slices.Sorted(maps.Keys(t.Nodes))
}

// NeighbourIds returns the neighbours of id in sorted order.
func (t *Topology) NeighbourIds(id NodeId) []NodeId {
	n, ok := t.Nodes[id]
	if !ok {
		return nil
	}
	return slices.Sorted(maps.Keys(n.Neighbours))
}

// Links returns every undirected link once, ordered by endpoints.
func (t *Topology) Links() []Link {
	pairs := make([]Pair[NodeId, NodeId], 0)
	for id, n := range t.Nodes {
		for neigh := range n.Neighbours {
			if id < neigh {
				pairs = append(pairs, MakeSortedPair(id, neigh))
			}
		}
	}
	SortPairs(pairs)
	links := make([]Link, 0, len(pairs))
	for _, p := range pairs {
		links = append(links, Link{A: p.V1, B: p.V2, Weight: t.Nodes[p.V1].Neighbours[p.V2]})
	}
	return links
}

func (t *Topology) Clone() *Topology {
	c := &Topology{Nodes: make(map[NodeId]*Node, len(t.Nodes))}
	for id, n := range t.Nodes {
		c.Nodes[id] = &Node{
			Id:         id,
			Neighbours: maps.Clone(n.Neighbours),
		}
	}
	return c
}
