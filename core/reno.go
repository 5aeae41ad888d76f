package core

import (
	"math"
	"math/rand/v2"

	"github.com/encodeous/netsim/state"
)

// LossSource supplies the uniform draws in [0, 1) that decide packet loss. *rand.Rand implements it.
type LossSource interface {
	Float64() float64
}

// NewLossSource returns a deterministic source for the given seed.
func NewLossSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

type SimResult struct {
	WindowHistory    []float64 `json:"cwnd_history"`
	ThresholdHistory []int     `json:"ssthresh_history"`
	StateHistory     []CCState `json:"state_history"`
	TimeHistory      []int     `json:"time_history"`
	TimeSteps        int       `json:"time_steps"`
	TotalPacketsSent int       `json:"total_packets_sent"`
	PacketsLost      int       `json:"packets_lost"`
	LossEvents       int       `json:"packet_loss_events"`
	PayloadBytes     int       `json:"data_size"`
	BytesTransmitted int       `json:"data_transmitted"`
	Complete         bool      `json:"transmission_complete"`
	FinalWindow      float64   `json:"final_cwnd"`
	FinalThreshold   int       `json:"final_ssthresh"`
}

// Session is the mutable state of one transmission. It is created by Simulate and never shared.
type Session struct {
	cfg       state.TransportCfg
	maxWindow float64
	rng       LossSource

	State     CCState
	Window    Window
	DupAcks   int
	Time      int
	Remaining int
	Result    SimResult
}

func NewSession(cfg state.TransportCfg, payloadBytes int, rng LossSource) *Session {
	maxWindow := cfg.EffectiveMaxWindow()
	// every transmission carries at least one byte
	payloadBytes = max(payloadBytes, 1)
	return &Session{
		cfg:       cfg,
		maxWindow: maxWindow,
		rng:       rng,
		State:     SlowStart,
		Window: Window{
			Cwnd:     min(max(cfg.InitialWindow, 1), maxWindow),
			Ssthresh: max(cfg.InitialThreshold, 2),
		},
		Remaining: payloadBytes,
		Result: SimResult{
			WindowHistory:    make([]float64, 0),
			ThresholdHistory: make([]int, 0),
			StateHistory:     make([]CCState, 0),
			TimeHistory:      make([]int, 0),
			PayloadBytes:     payloadBytes,
		},
	}
}

// Done reports whether the payload was delivered or the step budget is exhausted.
func (s *Session) Done() bool {
	return s.Remaining == 0 || s.Time >= s.cfg.MaxSteps
}

// Step simulates one round trip.
func (s *Session) Step() {
	r := &s.Result
	r.WindowHistory = append(r.WindowHistory, s.Window.Cwnd)
	r.ThresholdHistory = append(r.ThresholdHistory, s.Window.Ssthresh)
	r.StateHistory = append(r.StateHistory, s.State)
	r.TimeHistory = append(r.TimeHistory, s.Time)

	mss := s.cfg.SegmentSize
	pending := (s.Remaining + mss - 1) / mss
	packets := max(1, min(int(math.Floor(s.Window.Cwnd)), pending))
	r.TotalPacketsSent += packets

	acked := packets
	if s.rng.Float64() < s.cfg.LossProbability {
		ev := FastRetransmit
		if s.rng.Float64() < state.TimeoutShare {
			ev = Timeout
		}
		s.State, s.Window = Transition(s.State, ev, s.Window, s.maxWindow)
		if ev == Timeout {
			s.DupAcks = 0
			acked = 0
		} else {
			s.DupAcks = state.FastRetransmitDupAcks
			acked = max(0, packets-1)
		}
		r.PacketsLost++
		r.LossEvents++
	} else {
		s.DupAcks = 0
		s.State, s.Window = Transition(s.State, Ack, s.Window, s.maxWindow)
	}

	ackedBytes := min(acked*mss, s.Remaining)
	s.Remaining -= ackedBytes
	s.Time++
}

func (s *Session) finish() SimResult {
	r := s.Result
	r.TimeSteps = s.Time
	r.BytesTransmitted = r.PayloadBytes - s.Remaining
	r.Complete = s.Remaining == 0
	r.FinalWindow = s.Window.Cwnd
	r.FinalThreshold = s.Window.Ssthresh
	return r
}

// SimulateTransmission runs the congestion control loop for payloadBytes. cfg is trusted to be valid,
// callers at a boundary should Validate or Clamp it first.
func SimulateTransmission(cfg state.TransportCfg, payloadBytes int, rng LossSource) SimResult {
	s := NewSession(cfg, payloadBytes, rng)
	for !s.Done() {
		s.Step()
	}
	return s.finish()
}
