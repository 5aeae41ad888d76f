package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/encodeous/netsim/core"
	"github.com/encodeous/netsim/perf"
	"github.com/encodeous/netsim/state"
	"github.com/spf13/cobra"
)

var (
	tcpCfg        = state.DefaultTransport()
	tcpConfigPath string
	tcpSize       int
	tcpSeed       uint64
	tcpHistory    bool
	tcpYaml       bool
)

var tcpCmd = &cobra.Command{
	Use:   "tcp",
	Short: "Simulates TCP Reno congestion control for a single transfer",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, closer, err := newLogger("tcp")
		if err != nil {
			return err
		}
		defer closer.Close()

		cfg := tcpCfg
		if tcpConfigPath != "" {
			file, err := state.ReadTransportCfg(tcpConfigPath)
			if err != nil {
				return err
			}
			cfg = *file
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if tcpSize < 0 || tcpSize > state.MaxPayloadBytes {
			return fmt.Errorf("%w: size = %d, must be in [0, %d]", state.ErrInvalidParameter, tcpSize, state.MaxPayloadBytes)
		}
		seed := seedFlag(cmd, tcpSeed)
		if cfg.Seed != nil && !cmd.Flags().Changed("seed") {
			seed = *cfg.Seed
		}

		start := time.Now()
		res := core.SimulateTransmission(cfg, tcpSize, core.NewLossSource(seed))
		perf.ObserveSimulation(res.TimeSteps, res.TotalPacketsSent, res.LossEvents, res.Complete, time.Since(start))
		logger.Debug("simulation finished", "seed", seed, "elapsed", time.Since(start))

		if tcpYaml {
			return printYaml(cmd, res)
		}
		out := cmd.OutOrStdout()
		if tcpHistory {
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "time\tcwnd\tssthresh\tstate")
			for i := range res.TimeHistory {
				fmt.Fprintf(tw, "%d\t%.3f\t%d\t%s\n", res.TimeHistory[i], res.WindowHistory[i], res.ThresholdHistory[i], res.StateHistory[i])
			}
			tw.Flush()
		}
		fmt.Fprintf(out, "seed %d\n", seed)
		fmt.Fprintf(out, "%d/%d bytes in %d steps, complete: %t\n", res.BytesTransmitted, res.PayloadBytes, res.TimeSteps, res.Complete)
		fmt.Fprintf(out, "packets sent %d, lost %d, loss events %d\n", res.TotalPacketsSent, res.PacketsLost, res.LossEvents)
		fmt.Fprintf(out, "final cwnd %.3f, ssthresh %d\n", res.FinalWindow, res.FinalThreshold)
		return nil
	},
	GroupID: "sim",
}

func init() {
	rootCmd.AddCommand(tcpCmd)

	tcpCmd.Flags().StringVarP(&tcpConfigPath, "config", "c", "", "Transport config file, replaces the window flags")
	tcpCmd.Flags().IntVar(&tcpSize, "size", 1000, "Payload size in bytes")
	tcpCmd.Flags().IntVar(&tcpCfg.SegmentSize, "mss", tcpCfg.SegmentSize, "Maximum segment size in bytes")
	tcpCmd.Flags().Float64Var(&tcpCfg.InitialWindow, "cwnd", tcpCfg.InitialWindow, "Initial congestion window in segments")
	tcpCmd.Flags().IntVar(&tcpCfg.InitialThreshold, "ssthresh", tcpCfg.InitialThreshold, "Initial slow start threshold in segments")
	tcpCmd.Flags().IntVar(&tcpCfg.MaxSteps, "steps", tcpCfg.MaxSteps, "Maximum number of round trips")
	tcpCmd.Flags().Float64Var(&tcpCfg.LossProbability, "loss", tcpCfg.LossProbability, "Per step loss probability")
	tcpCmd.Flags().Float64Var(&tcpCfg.MaxWindow, "max-window", tcpCfg.MaxWindow, "Congestion window cap in segments")
	tcpCmd.Flags().Uint64Var(&tcpSeed, "seed", 0, "Random seed, picked at random if unset")
	tcpCmd.Flags().BoolVar(&tcpHistory, "history", false, "Print the window of every step")
	tcpCmd.Flags().BoolVar(&tcpYaml, "yaml", false, "Print the full result as yaml")
}
