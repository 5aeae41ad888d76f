package state

import (
	"maps"
	"slices"
)

// Presets are the named topologies that ship with netsim.
var Presets = map[string]TopologyCfg{
	"sample": {
		Name:  "sample",
		Nodes: []NodeId{"A", "B", "C", "D", "E", "F"},
		Links: []LinkCfg{
			{"A", "B", 1},
			{"A", "C", 3},
			{"B", "D", 2},
			{"C", "D", 1},
			{"C", "E", 5},
			{"D", "E", 2},
			{"D", "F", 3},
			{"E", "F", 1},
		},
	},
	"linear": {
		Name:  "linear",
		Nodes: []NodeId{"A", "B", "C", "D"},
		Links: []LinkCfg{
			{"A", "B", 1},
			{"B", "C", 1},
			{"C", "D", 1},
		},
	},
	"star": {
		Name:  "star",
		Nodes: []NodeId{"Hub", "A", "B", "C", "D", "E"},
		Links: []LinkCfg{
			{"Hub", "A", 1},
			{"Hub", "B", 2},
			{"Hub", "C", 1},
			{"Hub", "D", 2},
			{"Hub", "E", 1},
		},
	},
	"mesh": {
		Name:  "mesh",
		Nodes: []NodeId{"A", "B", "C", "D", "E"},
		Links: []LinkCfg{
			{"A", "B", 3},
			{"A", "C", 2},
			{"A", "D", 4},
			{"B", "C", 1},
			{"B", "E", 2},
			{"C", "D", 1},
			{"C", "E", 3},
			{"D", "E", 2},
		},
	},
	"tree": {
		Name:  "tree",
		Nodes: []NodeId{"Root", "L1A", "L1B", "L2A", "L2B", "L2C", "L2D"},
		Links: []LinkCfg{
			{"Root", "L1A", 1},
			{"Root", "L1B", 1},
			{"L1A", "L2A", 2},
			{"L1A", "L2B", 1},
			{"L1B", "L2C", 1},
			{"L1B", "L2D", 3},
		},
	},
}

func PresetNames() []string {
	return slices.Sorted(maps.Keys(Presets))
}

// Preset returns a private copy of the named preset.
func Preset(name string) (TopologyCfg, bool) {
	p, ok := Presets[name]
	if !ok {
		return TopologyCfg{}, false
	}
	return TopologyCfg{
		Name:  p.Name,
		Nodes: slices.Clone(p.Nodes),
		Links: slices.Clone(p.Links),
	}, true
}
