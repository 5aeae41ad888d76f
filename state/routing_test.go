package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTopology(t *testing.T) *Topology {
	cfg, ok := Preset("sample")
	require.True(t, ok)
	topo, err := cfg.Topology()
	require.NoError(t, err)
	return topo
}

func TestTopology_Symmetric(t *testing.T) {
	topo := sampleTopology(t)
	for _, id := range topo.NodeIds() {
		for _, neigh := range topo.NeighbourIds(id) {
			w1, ok1 := topo.Weight(id, neigh)
			w2, ok2 := topo.Weight(neigh, id)
			assert.True(t, ok1 && ok2)
			assert.Equal(t, w1, w2)
		}
	}
	assert.Len(t, topo.Links(), 8)
	assert.Equal(t, []NodeId{"A", "B", "C", "D", "E", "F"}, topo.NodeIds())
	assert.Equal(t, []NodeId{"B", "C"}, topo.NeighbourIds("A"))
}

func TestTopology_DanglingLink(t *testing.T) {
	_, err := NewTopology([]NodeId{"A", "B"}, []Link{{"A", "Z", 1}})
	assert.ErrorIs(t, err, ErrInvalidTopology)
	assert.ErrorContains(t, err, "undefined node Z")
}

func TestTopology_InvalidLinks(t *testing.T) {
	_, err := NewTopology([]NodeId{"A", "B"}, []Link{{"A", "B", 0}})
	assert.ErrorIs(t, err, ErrInvalidTopology)

	_, err = NewTopology([]NodeId{"A"}, []Link{{"A", "A", 1}})
	assert.ErrorIs(t, err, ErrInvalidTopology)

	_, err = NewTopology([]NodeId{"A", "B"}, []Link{{"A", "B", 1}, {"B", "A", 2}})
	assert.ErrorContains(t, err, "duplicate link")

	_, err = NewTopology([]NodeId{"A", "B"}, []Link{{"A", "B", 1}, {"B", "A", 1}})
	assert.NoError(t, err)

	_, err = NewTopology([]NodeId{"A", "A"}, nil)
	assert.ErrorContains(t, err, "duplicate node")

	_, err = NewTopology([]NodeId{"node name"}, nil)
	assert.ErrorIs(t, err, ErrInvalidTopology)
}

func TestTopology_TotalWeightBound(t *testing.T) {
	topo := sampleTopology(t)
	assert.Equal(t, uint64(18), topo.TotalWeight())

	_, err := NewTopology([]NodeId{"A", "B", "C"}, []Link{{"A", "B", 3_000_000_000}, {"B", "C", 3_000_000_000}})
	assert.ErrorIs(t, err, ErrInvalidTopology)
	assert.ErrorContains(t, err, "link B-C with weight 3000000000")

	// one below INFM is accepted
	topo, err = NewTopology([]NodeId{"A", "B"}, []Link{{"A", "B", INFM - 1}})
	require.NoError(t, err)
	assert.Equal(t, uint64(INFM-1), topo.TotalWeight())
	assert.NoError(t, topo.AddLink("A", "B", INFM-1), "re-adding a link does not count twice")
}

func TestTopology_Mutation(t *testing.T) {
	topo := sampleTopology(t)

	assert.NoError(t, topo.RemoveNode("D"))
	assert.False(t, topo.HasNode("D"))
	for _, id := range topo.NodeIds() {
		assert.NotContains(t, topo.NeighbourIds(id), NodeId("D"))
	}

	assert.NoError(t, topo.RemoveLink("E", "F"))
	_, ok := topo.Weight("F", "E")
	assert.False(t, ok)
	assert.Error(t, topo.RemoveLink("E", "F"))

	assert.NoError(t, topo.AddNode("G"))
	assert.NoError(t, topo.AddLink("G", "F", 4))
	w, ok := topo.Weight("F", "G")
	assert.True(t, ok)
	assert.Equal(t, Metric(4), w)
}

func TestTopology_Clone(t *testing.T) {
	topo := sampleTopology(t)
	c := topo.Clone()
	assert.NoError(t, c.RemoveLink("A", "B"))
	_, ok := topo.Weight("A", "B")
	assert.True(t, ok, "clone must not share neighbour maps")
	assert.Equal(t, topo.NodeIds(), c.NodeIds())
}

func TestTopologyToCfg(t *testing.T) {
	topo := sampleTopology(t)
	cfg := TopologyToCfg("sample", topo)
	back, err := cfg.Topology()
	assert.NoError(t, err)
	assert.Equal(t, topo.Links(), back.Links())
}

func TestPresets_Valid(t *testing.T) {
	for _, name := range PresetNames() {
		cfg, ok := Preset(name)
		assert.True(t, ok)
		assert.NoError(t, TopologyValidator(&cfg), name)
	}
	_, ok := Preset("missing")
	assert.False(t, ok)
}
