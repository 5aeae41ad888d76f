package state

import (
	"fmt"
	"math"
	"os"
	"path"
	"path/filepath"
	"regexp"
)

var namePattern, _ = regexp.Compile("^[0-9A-Za-z._-]+$")

func PathValidator(s string) error {
	_, err := os.Stat(path.Dir(s))
	if err != nil {
		return err
	}
	_, err = filepath.Abs(s)
	return err
}

func NameValidator(s string) error {
	if !namePattern.MatchString(s) {
		return fmt.Errorf("%s is not a valid name, must match pattern %s", s, namePattern.String())
	}
	if len(s) > 100 {
		return fmt.Errorf("len(\"%s\") = %d > 100 is too long", s, len(s))
	}
	return nil
}

func TopologyValidator(cfg *TopologyCfg) error {
	_, err := cfg.Topology()
	return err
}

// Validate rejects a transport configuration that the engine cannot run.
func (c *TransportCfg) Validate() error {
	if c.SegmentSize < 1 {
		return fmt.Errorf("%w: segment_size = %d, must be at least 1 byte", ErrInvalidParameter, c.SegmentSize)
	}
	if math.IsNaN(c.InitialWindow) || c.InitialWindow < 1 {
		return fmt.Errorf("%w: initial_window = %v, must be at least 1 segment", ErrInvalidParameter, c.InitialWindow)
	}
	if c.InitialThreshold < 2 {
		return fmt.Errorf("%w: initial_threshold = %d, must be at least 2 segments", ErrInvalidParameter, c.InitialThreshold)
	}
	if c.MaxSteps < 1 {
		return fmt.Errorf("%w: max_steps = %d, must be at least 1", ErrInvalidParameter, c.MaxSteps)
	}
	if math.IsNaN(c.LossProbability) || c.LossProbability < 0 || c.LossProbability > 1 {
		return fmt.Errorf("%w: loss_probability = %v, must be in [0, 1]", ErrInvalidParameter, c.LossProbability)
	}
	if c.MaxWindow != 0 && (math.IsNaN(c.MaxWindow) || c.MaxWindow < c.InitialWindow) {
		return fmt.Errorf("%w: max_window = %v, must be at least initial_window = %v", ErrInvalidParameter, c.MaxWindow, c.InitialWindow)
	}
	return nil
}

// Clamp moves every out of range value to its nearest valid bound. A zero MaxWindow selects the default.
func (c *TransportCfg) Clamp() {
	c.SegmentSize = min(max(c.SegmentSize, 1), MaxSegmentSize)
	if math.IsNaN(c.InitialWindow) {
		c.InitialWindow = DefaultInitialWindow
	}
	if c.MaxWindow == 0 || math.IsNaN(c.MaxWindow) {
		c.MaxWindow = MaxWindow
	}
	c.MaxWindow = max(c.MaxWindow, 1)
	c.InitialWindow = min(max(c.InitialWindow, 1), c.MaxWindow)
	c.InitialThreshold = max(c.InitialThreshold, 2)
	c.MaxSteps = min(max(c.MaxSteps, 1), MaxStepBudget)
	if math.IsNaN(c.LossProbability) {
		c.LossProbability = DefaultLossProbability
	}
	c.LossProbability = min(max(c.LossProbability, 0), 1)
}

// EffectiveMaxWindow returns the window growth cap, falling back to MaxWindow.
func (c *TransportCfg) EffectiveMaxWindow() float64 {
	if c.MaxWindow == 0 {
		return MaxWindow
	}
	return c.MaxWindow
}

func ServerConfigValidator(cfg *ServerCfg) error {
	if cfg.Bind == "" {
		return fmt.Errorf("%w: bind must not be empty", ErrInvalidParameter)
	}
	if cfg.MaxIterations < 1 {
		return fmt.Errorf("%w: max_iterations = %d, must be at least 1", ErrInvalidParameter, cfg.MaxIterations)
	}
	if cfg.TopologyPath != "" {
		if err := PathValidator(cfg.TopologyPath); err != nil {
			return fmt.Errorf("%w: topology_path: %w", ErrInvalidParameter, err)
		}
	}
	if cfg.Preset != "" || cfg.TopologyPath == "" {
		// the preset is the fallback when no topology file exists yet
		if _, ok := Presets[cfg.Preset]; !ok {
			return fmt.Errorf("%w: preset %q does not exist", ErrInvalidParameter, cfg.Preset)
		}
	}
	return cfg.Transport.Validate()
}
