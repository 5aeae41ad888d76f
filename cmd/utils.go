package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"

	"github.com/encodeous/netsim/core"
	"github.com/encodeous/netsim/state"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

func newLogger(prefix string) (*slog.Logger, io.Closer, error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return core.NewLogger(prefix, level, logPath)
}

// loadTopology reads --topology if it is set, otherwise the --preset.
func loadTopology() (state.TopologyCfg, error) {
	if topologyPath != "" {
		cfg, err := state.ReadTopologyCfg(topologyPath)
		if err != nil {
			return state.TopologyCfg{}, err
		}
		return *cfg, nil
	}
	cfg, ok := state.Preset(presetName)
	if !ok {
		return state.TopologyCfg{}, fmt.Errorf("%w: preset %q does not exist, expected one of %v", state.ErrInvalidParameter, presetName, state.PresetNames())
	}
	return cfg, nil
}

func printYaml(cmd *cobra.Command, v any) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

// seedFlag returns the --seed flag, or a random seed if it was not given.
func seedFlag(cmd *cobra.Command, seed uint64) uint64 {
	if cmd.Flags().Changed("seed") {
		return seed
	}
	return rand.Uint64()
}
