package state

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameValidator_Valid(t *testing.T) {
	assert.NoError(t, NameValidator("1"))
	assert.NoError(t, NameValidator("ab_cd"))
	assert.NoError(t, NameValidator("Hub"))
	assert.NoError(t, NameValidator("abcd-a.com"))
}

func TestNameValidator_Invalid(t *testing.T) {
	assert.Error(t, NameValidator("node name"))
	assert.Error(t, NameValidator(""))
	assert.Error(t, NameValidator("\t"))
	assert.Error(t, NameValidator("abcd-a.com\\hi"))
	assert.Error(t, NameValidator(strings.Repeat("a", 200)))
}

func TestTransportCfg_Validate(t *testing.T) {
	assert.NoError(t, (&TransportCfg{SegmentSize: 1, InitialWindow: 1, InitialThreshold: 2, MaxSteps: 1}).Validate())

	cases := map[string]TransportCfg{
		"segment_size":      {SegmentSize: 0, InitialWindow: 1, InitialThreshold: 2, MaxSteps: 1},
		"initial_window":    {SegmentSize: 1, InitialWindow: 0.5, InitialThreshold: 2, MaxSteps: 1},
		"initial_threshold": {SegmentSize: 1, InitialWindow: 1, InitialThreshold: 1, MaxSteps: 1},
		"max_steps":         {SegmentSize: 1, InitialWindow: 1, InitialThreshold: 2, MaxSteps: 0},
		"loss_probability":  {SegmentSize: 1, InitialWindow: 1, InitialThreshold: 2, MaxSteps: 1, LossProbability: 1.5},
		"max_window":        {SegmentSize: 1, InitialWindow: 10, InitialThreshold: 2, MaxSteps: 1, MaxWindow: 5},
	}
	for field, cfg := range cases {
		err := cfg.Validate()
		assert.ErrorIs(t, err, ErrInvalidParameter, field)
		assert.ErrorContains(t, err, field)
	}

	nan := TransportCfg{SegmentSize: 1, InitialWindow: 1, InitialThreshold: 2, MaxSteps: 1, LossProbability: math.NaN()}
	assert.ErrorContains(t, nan.Validate(), "loss_probability")
}

func TestTransportCfg_Clamp(t *testing.T) {
	cfg := TransportCfg{
		SegmentSize:      -4,
		InitialWindow:    500,
		InitialThreshold: 0,
		MaxSteps:         0,
		LossProbability:  3,
	}
	cfg.Clamp()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 1, cfg.SegmentSize)
	assert.Equal(t, MaxWindow, cfg.MaxWindow)
	assert.Equal(t, MaxWindow, cfg.InitialWindow)
	assert.Equal(t, 2, cfg.InitialThreshold)
	assert.Equal(t, 1, cfg.MaxSteps)
	assert.Equal(t, 1.0, cfg.LossProbability)

	cfg = TransportCfg{LossProbability: -1, MaxSteps: 1 << 40}
	cfg.Clamp()
	assert.Equal(t, 0.0, cfg.LossProbability)
	assert.Equal(t, MaxStepBudget, cfg.MaxSteps)
	assert.Equal(t, 1.0, cfg.InitialWindow)
}

func TestServerConfigValidator(t *testing.T) {
	cfg := DefaultServerCfg()
	assert.NoError(t, ServerConfigValidator(&cfg))

	cfg.Preset = "missing"
	assert.ErrorIs(t, ServerConfigValidator(&cfg), ErrInvalidParameter)

	cfg = DefaultServerCfg()
	cfg.MaxIterations = 0
	assert.ErrorContains(t, ServerConfigValidator(&cfg), "max_iterations")

	cfg = DefaultServerCfg()
	cfg.TopologyPath = "/definitely/not/a/dir/topology.yaml"
	assert.ErrorContains(t, ServerConfigValidator(&cfg), "topology_path")
}
