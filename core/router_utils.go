package core

import (
	"github.com/encodeous/netsim/state"
)

func AddMetric(a, b state.Metric) state.Metric {
	if a == state.INF || b == state.INF {
		return state.INF
	} else {
		return state.Metric(min(uint64(state.INFM), uint64(a)+uint64(b)))
	}
}

func HopWeight(t *state.Topology, a, b state.NodeId) state.Metric {
	w, ok := t.Weight(a, b)
	if !ok {
		return state.INF
	}
	return w
}
