package core

import (
	"container/heap"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/encodeous/netsim/state"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	topo := MakeTopology(t, []state.NodeId{"A", "B", "C"},
		state.Link{A: "A", B: "B", Weight: 1},
		state.Link{A: "B", B: "C", Weight: 4},
	)
	n := NewNetwork(topo, nil)
	assert.Equal(t, RouteTable{
		"A": {Nh: "A", Metric: 0},
		"B": {Nh: "B", Metric: 1},
		"C": {Metric: state.INF},
	}, n.Table("A"))
	assert.Equal(t, RouteTable{
		"A": {Nh: "A", Metric: 1},
		"B": {Nh: "B", Metric: 0},
		"C": {Nh: "C", Metric: 4},
	}, n.Table("B"))
	assert.False(t, n.Converged)
	assert.Nil(t, n.Table("Z"))
}

func TestLinearTrace(t *testing.T) {
	// A --1-- B --1-- C
	h := &RouterHarness{}
	topo := MakeTopology(t, []state.NodeId{"A", "B", "C"},
		state.Link{A: "A", B: "B", Weight: 1},
		state.Link{A: "B", B: "C", Weight: 1},
	)
	n := NewNetwork(topo, h)
	assert.True(t, n.Converge(state.MaxIterations))
	assert.Equal(t, 2, n.Iterations)
	assert.Equal(t,
		`CONVERGED 2
ROUND_COMPLETE 1 true
ROUND_COMPLETE 2 false
ROUTE_IMPROVED A C B 2
ROUTE_IMPROVED C A B 2`,
		h.GetActions().String())
}

func TestSampleNetwork(t *testing.T) {
	h := &RouterHarness{}
	n := PresetNetwork(t, "sample", h)
	require.True(t, n.Converged)
	h.GetActions().AssertContains(t, "CONVERGED")

	path := n.ShortestPath("A", "F")
	require.NotEmpty(t, path)
	assert.Equal(t, state.NodeId("A"), path[0])
	assert.Equal(t, state.NodeId("F"), path[len(path)-1])
	assert.Equal(t, state.Metric(6), n.PathCost(path))
	assert.Equal(t, int64(6), n.ReportedCost(path))
	assert.Equal(t, state.Metric(6), n.Distance("A", "F"))

	// tables are symmetric on an undirected graph
	for _, a := range n.Topology.NodeIds() {
		for _, b := range n.Topology.NodeIds() {
			assert.Equal(t, n.Distance(a, b), n.Distance(b, a), "%s <-> %s", a, b)
		}
	}
}

func TestDeterministic(t *testing.T) {
	for _, name := range state.PresetNames() {
		a := PresetNetwork(t, name, nil)
		b := PresetNetwork(t, name, nil)
		if diff := cmp.Diff(a.Tables, b.Tables); diff != "" {
			t.Errorf("%s: tables differ between runs (-a +b):\n%s", name, diff)
		}
		assert.Equal(t, a.Iterations, b.Iterations)
	}
}

func TestIterationCap(t *testing.T) {
	h := &RouterHarness{}
	nodes := []state.NodeId{"A", "B", "C", "D", "E"}
	links := make([]state.Link, 0)
	for i := 1; i < len(nodes); i++ {
		links = append(links, state.Link{A: nodes[i-1], B: nodes[i], Weight: 1})
	}
	n := NewNetwork(MakeTopology(t, nodes, links...), h)

	assert.False(t, n.Converge(1))
	assert.False(t, n.Converged)
	assert.Equal(t, 1, n.Iterations)
	h.GetActions().AssertContains(t, "NOT_CONVERGED", 1)

	// best effort tables: two hops are known, four are not
	assert.Equal(t, state.Metric(2), n.Distance("A", "C"))
	assert.Equal(t, state.INF, n.Distance("A", "E"))
	assert.Empty(t, n.ShortestPath("A", "E"))
	assert.Equal(t, int64(-1), n.ReportedCost(n.ShortestPath("A", "E")))

	// rounds restart from the current tables
	assert.True(t, n.Converge(state.MaxIterations))
	assert.Equal(t, state.Metric(4), n.Distance("A", "E"))
}

func TestShortestPathEdgeCases(t *testing.T) {
	n := PresetNetwork(t, "sample", nil)

	assert.Equal(t, []state.NodeId{"C"}, n.ShortestPath("C", "C"))
	assert.Equal(t, state.Metric(0), n.PathCost([]state.NodeId{"C"}))
	assert.Equal(t, int64(0), n.ReportedCost([]state.NodeId{"C"}))
	assert.Equal(t, state.Metric(0), n.PathCost(nil))
	assert.Equal(t, int64(-1), n.ReportedCost(nil))

	assert.Empty(t, n.ShortestPath("A", "Z"))
	assert.Empty(t, n.ShortestPath("Z", "A"))
	assert.NotNil(t, n.ShortestPath("Z", "A"))

	// hops that are not links make the path unusable
	assert.Equal(t, state.INF, n.PathCost([]state.NodeId{"A", "F"}))
	assert.Equal(t, int64(-1), n.ReportedCost([]state.NodeId{"A", "F"}))
}

func TestShortestPathBrokenTables(t *testing.T) {
	n := PresetNetwork(t, "linear", nil)

	// dead end
	n.Tables["B"]["D"] = Route{Metric: state.INF}
	assert.Empty(t, n.ShortestPath("A", "D"))

	// next hop is the node itself
	n.Tables["B"]["D"] = Route{Nh: "B", Metric: 2}
	assert.Empty(t, n.ShortestPath("A", "D"))

	// loop between A and B
	n.Tables["B"]["D"] = Route{Nh: "A", Metric: 2}
	assert.Empty(t, n.ShortestPath("A", "D"))

	n.Tables["B"]["D"] = Route{Nh: "C", Metric: 2}
	assert.Equal(t, []state.NodeId{"A", "B", "C", "D"}, n.ShortestPath("A", "D"))
}

func TestMutation(t *testing.T) {
	h := &RouterHarness{}
	n := PresetNetwork(t, "sample", h)
	h.GetActions()

	require.NoError(t, n.RemoveNode("D"))
	h.GetActions().AssertContains(t, "TOPOLOGY_CHANGED", 5)
	assert.True(t, n.Converged)
	assert.Equal(t, []state.NodeId{"A", "C", "E", "F"}, n.ShortestPath("A", "F"))
	assert.Equal(t, state.Metric(9), n.Distance("A", "F"))
	assert.NotContains(t, n.Tables, state.NodeId("D"))

	require.NoError(t, n.AddLink("A", "F", 2))
	assert.Equal(t, []state.NodeId{"A", "F"}, n.ShortestPath("A", "F"))

	require.NoError(t, n.RemoveLink("A", "F"))
	require.NoError(t, n.RemoveLink("E", "F"))
	assert.True(t, n.Converged)
	assert.Empty(t, n.ShortestPath("A", "F"))
	assert.Equal(t, state.INF, n.Distance("A", "F"))

	require.NoError(t, n.AddNode("G"))
	assert.Equal(t, RouteTable{
		"A": {Metric: state.INF},
		"B": {Metric: state.INF},
		"C": {Metric: state.INF},
		"E": {Metric: state.INF},
		"F": {Metric: state.INF},
		"G": {Nh: "G", Metric: 0},
	}, n.Table("G"))
	h.GetActions()

	// failed mutations leave the network untouched
	assert.ErrorIs(t, n.AddLink("A", "Z", 1), state.ErrInvalidTopology)
	assert.Error(t, n.AddNode("bad name"))
	assert.Error(t, n.RemoveNode("Z"))
	assert.Empty(t, h.GetActions())
}

func TestNetworkOwnsTopology(t *testing.T) {
	topo := MakeTopology(t, []state.NodeId{"A", "B"}, state.Link{A: "A", B: "B", Weight: 3})
	n := NewNetwork(topo, nil)
	n.Converge(state.MaxIterations)
	require.NoError(t, topo.RemoveLink("A", "B"))
	assert.Equal(t, []state.NodeId{"A", "B"}, n.ShortestPath("A", "B"))
	assert.Equal(t, state.Metric(3), n.PathCost([]state.NodeId{"A", "B"}))
}

func TestSimulateInvalidTopology(t *testing.T) {
	_, err := Simulate(state.TopologyCfg{
		Nodes: []state.NodeId{"A"},
		Links: []state.LinkCfg{{A: "A", B: "B", Cost: 1}},
	}, state.MaxIterations, nil)
	assert.ErrorIs(t, err, state.ErrInvalidTopology)
}

func TestAddMetricSaturates(t *testing.T) {
	assert.Equal(t, state.Metric(5), AddMetric(2, 3))
	assert.Equal(t, state.INF, AddMetric(state.INF, 0))
	assert.Equal(t, state.INF, AddMetric(1, state.INF))
	assert.Equal(t, state.INFM, AddMetric(state.INFM, state.INFM))
}

func TestLargeWeights(t *testing.T) {
	// every path sum fits below INFM once the topology is accepted
	_, err := state.NewTopology([]state.NodeId{"A", "B", "C", "D"}, []state.Link{
		{A: "A", B: "B", Weight: 3_000_000_000},
		{A: "B", B: "C", Weight: 3_000_000_000},
		{A: "A", B: "D", Weight: 4_000_000_000},
		{A: "D", B: "C", Weight: 1_000_000_000},
	})
	assert.ErrorIs(t, err, state.ErrInvalidTopology)
	assert.ErrorContains(t, err, "link B-C")

	// total weight of INFM-1
	topo := MakeTopology(t, []state.NodeId{"A", "B", "C", "D"},
		state.Link{A: "A", B: "B", Weight: 2_000_000_000},
		state.Link{A: "B", B: "C", Weight: 1_000_000_000},
		state.Link{A: "A", B: "D", Weight: 1_000_000_000},
		state.Link{A: "D", B: "C", Weight: 294_967_293},
	)
	n := NewNetwork(topo, nil)
	require.True(t, n.Converge(state.MaxIterations))
	for _, src := range topo.NodeIds() {
		want := dijkstra(topo, src)
		for _, dst := range topo.NodeIds() {
			assert.Equal(t, want[dst], n.Distance(src, dst), "%s -> %s", src, dst)
			assert.Equal(t, want[dst], n.PathCost(n.ShortestPath(src, dst)), "%s -> %s", src, dst)
		}
	}
	assert.Equal(t, []state.NodeId{"A", "D", "C"}, n.ShortestPath("A", "C"))
	assert.Equal(t, int64(1_294_967_293), n.ReportedCost(n.ShortestPath("A", "C")))

	err = n.AddLink("B", "D", 1)
	assert.ErrorIs(t, err, state.ErrInvalidTopology)
	assert.Equal(t, []state.NodeId{"A", "D", "C"}, n.ShortestPath("A", "C"), "a rejected mutation leaves the network untouched")
}

type dijkstraItem struct {
	id   state.NodeId
	dist state.Metric
}

type dijkstraQueue []dijkstraItem

func (q dijkstraQueue) Len() int           { return len(q) }
func (q dijkstraQueue) Less(i, j int) bool { return q[i].dist < q[j].dist }
func (q dijkstraQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *dijkstraQueue) Push(x any)        { *q = append(*q, x.(dijkstraItem)) }
func (q *dijkstraQueue) Pop() any {
	old := *q
	it := old[len(old)-1]
	*q = old[:len(old)-1]
	return it
}

// dijkstra is an independent oracle, stale queue entries are skipped instead of decreasing keys
func dijkstra(topo *state.Topology, src state.NodeId) map[state.NodeId]state.Metric {
	dist := make(map[state.NodeId]state.Metric)
	for _, id := range topo.NodeIds() {
		dist[id] = state.INF
	}
	dist[src] = 0
	q := &dijkstraQueue{{src, 0}}
	for q.Len() > 0 {
		cur := heap.Pop(q).(dijkstraItem)
		if cur.dist > dist[cur.id] {
			continue
		}
		for _, neigh := range topo.NeighbourIds(cur.id) {
			w, _ := topo.Weight(cur.id, neigh)
			if d := cur.dist + w; d < dist[neigh] {
				dist[neigh] = d
				heap.Push(q, dijkstraItem{neigh, d})
			}
		}
	}
	return dist
}

func randomConnectedTopology(t *testing.T, rng *rand.Rand) *state.Topology {
	size := 2 + rng.IntN(11)
	nodes := make([]state.NodeId, 0, size)
	for i := range size {
		nodes = append(nodes, state.NodeId(fmt.Sprintf("n%d", i)))
	}
	topo := MakeTopology(t, nodes)
	// random spanning tree, then extra edges
	for i := 1; i < size; i++ {
		require.NoError(t, topo.AddLink(nodes[i], nodes[rng.IntN(i)], state.Metric(1+rng.IntN(10))))
	}
	for range rng.IntN(size * 2) {
		a, b := nodes[rng.IntN(size)], nodes[rng.IntN(size)]
		if _, ok := topo.Weight(a, b); a == b || ok {
			continue
		}
		require.NoError(t, topo.AddLink(a, b, state.Metric(1+rng.IntN(10))))
	}
	return topo
}

func TestAgreesWithDijkstra(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for trial := range 100 {
		topo := randomConnectedTopology(t, rng)
		n := NewNetwork(topo, nil)
		require.True(t, n.Converge(state.MaxIterations), "trial %d", trial)

		for _, src := range topo.NodeIds() {
			want := dijkstra(topo, src)
			for _, dst := range topo.NodeIds() {
				assert.Equal(t, want[dst], n.Distance(src, dst), "trial %d: %s -> %s", trial, src, dst)

				path := n.ShortestPath(src, dst)
				require.NotEmpty(t, path, "trial %d: %s -> %s", trial, src, dst)
				assert.Equal(t, src, path[0])
				assert.Equal(t, dst, path[len(path)-1])
				assert.LessOrEqual(t, len(path), len(topo.Nodes))
				seen := make(map[state.NodeId]bool)
				for _, id := range path {
					assert.False(t, seen[id], "trial %d: %s repeats in %v", trial, id, path)
					seen[id] = true
				}
				assert.Equal(t, want[dst], n.PathCost(path), "trial %d: %v", trial, path)
			}
		}
	}
}

func TestDisconnected(t *testing.T) {
	topo := MakeTopology(t, []state.NodeId{"A", "B", "C", "D"},
		state.Link{A: "A", B: "B", Weight: 2},
		state.Link{A: "C", B: "D", Weight: 2},
	)
	n := NewNetwork(topo, nil)
	require.True(t, n.Converge(state.MaxIterations))
	assert.Empty(t, n.ShortestPath("A", "D"))
	_, ok := n.NextHop("A", "D")
	assert.False(t, ok)
	nh, ok := n.NextHop("A", "B")
	assert.True(t, ok)
	assert.Equal(t, state.NodeId("B"), nh)
}
