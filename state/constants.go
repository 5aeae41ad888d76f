package state

const (
	INF = ^(Metric)(0)
	// INFM is the maximum value for a metric that is not unreachable.
	INFM = INF - 1
)

var (
	// MaxIterations bounds a single distance-vector convergence run.
	MaxIterations = 100

	// transport defaults, taken from a typical ethernet path
	DefaultSegmentSize      = 1460
	DefaultInitialWindow    = 1.0
	DefaultInitialThreshold = 65535
	DefaultMaxSteps         = 100
	DefaultLossProbability  = 0.05
	MaxWindow               = 100.0

	// TimeoutShare is the fraction of loss events classified as a retransmission timeout,
	// the rest are treated as a fast retransmit.
	TimeoutShare = 0.3

	// FastRetransmitDupAcks is the number of duplicate acks implied by a fast retransmit.
	FastRetransmitDupAcks = 3

	// bounds applied by the lenient boundary clamp
	MaxSegmentSize  = 65535
	MaxPayloadBytes = 1 << 30
	MaxStepBudget   = 100000

	DefaultBind = "127.0.0.1:5001"
)

// DefaultPipelineTransport is used when a ciphertext is carried end to end, one byte per segment.
func DefaultPipelineTransport() TransportCfg {
	return TransportCfg{
		SegmentSize:      1,
		InitialWindow:    1,
		InitialThreshold: 16,
		MaxSteps:         100,
		LossProbability:  DefaultLossProbability,
		MaxWindow:        MaxWindow,
	}
}

func DefaultTransport() TransportCfg {
	return TransportCfg{
		SegmentSize:      DefaultSegmentSize,
		InitialWindow:    DefaultInitialWindow,
		InitialThreshold: DefaultInitialThreshold,
		MaxSteps:         DefaultMaxSteps,
		LossProbability:  DefaultLossProbability,
		MaxWindow:        MaxWindow,
	}
}
