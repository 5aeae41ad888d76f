package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/encodeous/netsim/core"
	"github.com/encodeous/netsim/state"
	"github.com/spf13/cobra"
)

var (
	ripSrc     string
	ripDst     string
	ripMaxIter int
	ripTables  bool
)

var ripCmd = &cobra.Command{
	Use:   "rip",
	Short: "Computes distance-vector routing tables and the shortest path between two nodes",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, closer, err := newLogger("rip")
		if err != nil {
			return err
		}
		defer closer.Close()

		cfg, err := loadTopology()
		if err != nil {
			return err
		}
		if ripMaxIter < 1 {
			return fmt.Errorf("%w: max-iter = %d, must be at least 1", state.ErrInvalidParameter, ripMaxIter)
		}
		n, err := core.Simulate(cfg, ripMaxIter, core.LogObserver{Logger: logger})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if n.Converged {
			fmt.Fprintf(out, "%d nodes, %d links, converged after %d rounds\n", len(n.Topology.Nodes), len(n.Topology.Links()), n.Iterations)
		} else {
			fmt.Fprintf(out, "%d nodes, %d links, not converged after %d rounds\n", len(n.Topology.Nodes), len(n.Topology.Links()), n.Iterations)
		}
		if ripTables {
			printTables(cmd, n)
		}
		if ripSrc == "" && ripDst == "" {
			return nil
		}
		for _, id := range []state.NodeId{state.NodeId(ripSrc), state.NodeId(ripDst)} {
			if !n.Topology.HasNode(id) {
				return fmt.Errorf("%w: node %q is not part of the topology", state.ErrInvalidParameter, id)
			}
		}
		path := n.ShortestPath(state.NodeId(ripSrc), state.NodeId(ripDst))
		if len(path) == 0 {
			fmt.Fprintf(out, "%s is unreachable from %s\n", ripDst, ripSrc)
			return nil
		}
		hops := make([]string, 0, len(path))
		for _, id := range path {
			hops = append(hops, string(id))
		}
		fmt.Fprintf(out, "path %s, cost %d\n", strings.Join(hops, " -> "), n.ReportedCost(path))
		return nil
	},
	GroupID: "sim",
}

func printTables(cmd *cobra.Command, n *core.Network) {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, id := range n.Topology.NodeIds() {
		fmt.Fprintf(tw, "\nrouting table of %s\n", id)
		fmt.Fprintln(tw, "dest\tnext hop\tdistance")
		tbl := n.Table(id)
		for _, dst := range n.Topology.NodeIds() {
			r := tbl[dst]
			if r.Metric == state.INF {
				fmt.Fprintf(tw, "%s\t-\tinf\n", dst)
			} else {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", dst, r.Nh, r.Metric)
			}
		}
	}
	tw.Flush()
}

func init() {
	rootCmd.AddCommand(ripCmd)

	ripCmd.Flags().StringVarP(&ripSrc, "src", "s", "", "Source node of the path query")
	ripCmd.Flags().StringVarP(&ripDst, "dst", "d", "", "Destination node of the path query")
	ripCmd.Flags().IntVar(&ripMaxIter, "max-iter", state.MaxIterations, "Maximum number of exchange rounds")
	ripCmd.Flags().BoolVar(&ripTables, "tables", true, "Print the routing table of every node")
	ripCmd.MarkFlagsRequiredTogether("src", "dst")
}
