package core

import (
	"fmt"
	"math"

	"github.com/encodeous/netsim/state"
)

type CCState int

const (
	SlowStart CCState = iota
	CongestionAvoidance
	FastRecovery
)

var ccStateNames = map[CCState]string{
	SlowStart:           "slow_start",
	CongestionAvoidance: "congestion_avoidance",
	FastRecovery:        "fast_recovery",
}

func (s CCState) String() string {
	if name, ok := ccStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("CCState(%d)", int(s))
}

func (s CCState) MarshalText() ([]byte, error) {
	if _, ok := ccStateNames[s]; !ok {
		return nil, fmt.Errorf("unknown congestion state %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *CCState) UnmarshalText(text []byte) error {
	for st, name := range ccStateNames {
		if name == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown congestion state %q", string(text))
}

type CCEvent int

const (
	// Ack means every segment sent in the step was acknowledged
	Ack CCEvent = iota
	Timeout
	FastRetransmit
)

func (e CCEvent) String() string {
	switch e {
	case Ack:
		return "ack"
	case Timeout:
		return "timeout"
	case FastRetransmit:
		return "fast_retransmit"
	}
	return fmt.Sprintf("CCEvent(%d)", int(e))
}

// Window is the sender side congestion state, in segments.
type Window struct {
	Cwnd     float64
	Ssthresh int
}

func halveThreshold(cwnd float64) int {
	return max(int(math.Floor(cwnd/2)), 2)
}

// Transition is the Reno control automaton. It is pure: the same inputs always yield the same outputs,
// and the returned window stays within [1, maxWindow] with a threshold of at least 2.
func Transition(st CCState, ev CCEvent, w Window, maxWindow float64) (CCState, Window) {
	switch ev {
	case Timeout:
		w.Ssthresh = halveThreshold(w.Cwnd)
		w.Cwnd = 1
		return SlowStart, w
	case FastRetransmit:
		w.Ssthresh = halveThreshold(w.Cwnd)
		w.Cwnd = min(float64(w.Ssthresh+state.FastRetransmitDupAcks), maxWindow)
		return FastRecovery, w
	}

	switch st {
	case SlowStart:
		w.Cwnd = min(w.Cwnd+1, maxWindow)
		if w.Cwnd >= float64(w.Ssthresh) {
			return CongestionAvoidance, w
		}
		return SlowStart, w
	case CongestionAvoidance:
		w.Cwnd = max(min(w.Cwnd+1/max(w.Cwnd, 1), maxWindow), 1)
		return CongestionAvoidance, w
	case FastRecovery:
		w.Cwnd = max(min(float64(w.Ssthresh), maxWindow), 1)
		return CongestionAvoidance, w
	}
	return st, w
}
