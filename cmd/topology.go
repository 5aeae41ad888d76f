package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/encodeous/netsim/core"
	"github.com/encodeous/netsim/state"
	"github.com/spf13/cobra"
)

var (
	topoOut   string
	topoForce bool
)

var topologyCmd = &cobra.Command{
	Use:     "topology",
	Aliases: []string{"topo"},
	Short:   "Manage topology files",
	GroupID: "cfg",
}

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "Lists the built-in topologies",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, name := range state.PresetNames() {
			p, _ := state.Preset(name)
			fmt.Fprintf(out, "%s\t%d nodes, %d links\n", name, len(p.Nodes), len(p.Links))
		}
		return nil
	},
}

var newTopologyCmd = &cobra.Command{
	Use:   "new",
	Short: "Writes the selected preset to a topology file for editing",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, ok := state.Preset(presetName)
		if !ok {
			return fmt.Errorf("%w: preset %q does not exist", state.ErrInvalidParameter, presetName)
		}
		if _, err := os.Stat(topoOut); err == nil && !topoForce {
			return fmt.Errorf("%s already exists, use --force to overwrite it", topoOut)
		} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		if err := state.WriteTopologyCfg(topoOut, cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s topology to %s\n", presetName, topoOut)
		return nil
	},
}

var verifyTopologyCmd = &cobra.Command{
	Use:   "verify <path>",
	Short: "Checks that a topology file is valid and converges",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := state.ReadTopologyCfg(args[0])
		if err != nil {
			return err
		}
		n, err := core.Simulate(*cfg, state.MaxIterations, nil)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Topology is valid")
		if !n.Converged {
			fmt.Fprintf(out, "warning: routing did not converge within %d rounds\n", n.Iterations)
		}
		// print the normalized form, with graph lines expanded into links
		return printYaml(cmd, state.TopologyToCfg(cfg.Name, n.Topology))
	},
}

func init() {
	rootCmd.AddCommand(topologyCmd)
	topologyCmd.AddCommand(presetsCmd, newTopologyCmd, verifyTopologyCmd)

	newTopologyCmd.Flags().StringVarP(&topoOut, "out", "o", "topology.yaml", "Where to write the topology")
	newTopologyCmd.Flags().BoolVarP(&topoForce, "force", "f", false, "Overwrite an existing file")
}
