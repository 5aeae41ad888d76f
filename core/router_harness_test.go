package core

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/encodeous/netsim/state"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var eventNames = map[RouterEvent]string{
	RouteImproved:   "ROUTE_IMPROVED",
	RoundComplete:   "ROUND_COMPLETE",
	TopologyChanged: "TOPOLOGY_CHANGED",
	Converged:       "CONVERGED",
	NotConverged:    "NOT_CONVERGED",
}

type HarnessEvent struct {
	Message string
	Args    []any
}

func MakeEvent(msg string, args ...any) HarnessEvent {
	return HarnessEvent{
		Message: msg,
		Args:    args,
	}
}

// RouterHarness records every event of the routing engine, keeping only the values of the key value pairs
type RouterHarness struct {
	actions []HarnessEvent
}

func (h *RouterHarness) Log(event RouterEvent, desc string, args ...any) {
	x := make([]any, 0, len(args)/2)
	for i := 1; i < len(args); i += 2 {
		x = append(x, args[i])
	}
	h.actions = append(h.actions, MakeEvent(eventNames[event], x...))
}

type HarnessEvents []HarnessEvent

func (h HarnessEvents) String() string {
	out := make([]string, 0)
	for _, action := range h {
		cur := action.Message
		for _, arg := range action.Args {
			cur += " " + fmt.Sprint(arg)
		}
		out = append(out, cur)
	}
	slices.Sort(out)
	return strings.Join(out, "\n")
}

// GetActions drains the recorded events
func (h *RouterHarness) GetActions() HarnessEvents {
	x := h.actions
	h.actions = make([]HarnessEvent, 0)
	return x
}

func (e HarnessEvents) Only(msg string) HarnessEvents {
	x := make(HarnessEvents, 0)
	for _, event := range e {
		if event.Message == msg {
			x = append(x, event)
		}
	}
	return x
}

func (e HarnessEvents) contains(msg string, args ...any) bool {
	for _, event := range e {
		if event.Message == msg {
			if len(event.Args) >= len(args) {
				match := true
				for i, arg := range args {
					if !cmp.Equal(event.Args[i], arg) {
						match = false
						break
					}
				}
				if match {
					return true
				}
			}
		}
	}
	return false
}

func (e HarnessEvents) AssertContains(t *testing.T, msg string, args ...any) {
	if e.contains(msg, args...) {
		return
	}
	t.Fatal("Expected event not found: ", msg, " with args: ", args, " in ", e)
}

func (e HarnessEvents) AssertNotContains(t *testing.T, msg string, args ...any) {
	if e.contains(msg, args...) {
		t.Fatal("Unexpected event found: ", msg, " with args: ", args, " in ", e)
	}
}

func MakeTopology(t *testing.T, nodes []state.NodeId, links ...state.Link) *state.Topology {
	t.Helper()
	topo, err := state.NewTopology(nodes, links)
	require.NoError(t, err)
	return topo
}

func PresetNetwork(t *testing.T, name string, h *RouterHarness) *Network {
	t.Helper()
	cfg, ok := state.Preset(name)
	require.True(t, ok)
	topo, err := cfg.Topology()
	require.NoError(t, err)
	var obs Observer
	if h != nil {
		obs = h
	}
	n := NewNetwork(topo, obs)
	n.Converge(state.MaxIterations)
	return n
}

// scriptedSource replays a fixed list of draws, wrapping around at the end
type scriptedSource struct {
	draws []float64
	i     int
}

func (s *scriptedSource) Float64() float64 {
	v := s.draws[s.i%len(s.draws)]
	s.i++
	return v
}

// failSource fails the test if the engine draws from it
type failSource struct {
	t *testing.T
}

func (s failSource) Float64() float64 {
	s.t.Fatal("unexpected draw from the loss source")
	return 0
}
