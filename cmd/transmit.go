package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/encodeous/netsim/core"
	"github.com/encodeous/netsim/perf"
	"github.com/encodeous/netsim/state"
	"github.com/spf13/cobra"
)

var (
	txText string
	txKey  string
	txSrc  string
	txDst  string
	txLoss float64
	txSeed uint64
	txYaml bool
)

var transmitCmd = &cobra.Command{
	Use:   "transmit",
	Short: "Encrypts a message and carries it across the topology",
	Long: `Encrypts the message with Playfair, routes it over the shortest path and simulates its transfer with TCP Reno.
The message is only decrypted if every byte arrived.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, closer, err := newLogger("transmit")
		if err != nil {
			return err
		}
		defer closer.Close()

		cfg, err := loadTopology()
		if err != nil {
			return err
		}
		n, err := core.Simulate(cfg, state.MaxIterations, core.LogObserver{Logger: logger})
		if err != nil {
			return err
		}
		seed := seedFlag(cmd, txSeed)
		start := time.Now()
		res, err := core.SecureTransmit(n, state.DefaultPipelineTransport(), core.SecureRequest{
			Plaintext:       txText,
			Key:             txKey,
			Source:          state.NodeId(txSrc),
			Destination:     state.NodeId(txDst),
			LossProbability: txLoss,
		}, core.NewLossSource(seed))
		if err != nil {
			return err
		}
		if res.Transport != nil {
			perf.ObserveSimulation(res.Transport.TimeSteps, res.Transport.TotalPacketsSent, res.Transport.LossEvents, res.Transport.Complete, time.Since(start))
		}
		if txYaml {
			return printYaml(cmd, res)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "seed %d\n", seed)
		fmt.Fprintf(out, "encrypted %q -> %s\n", res.Plaintext, res.EncryptedText)
		if !res.Reachable {
			fmt.Fprintf(out, "failed: %s is unreachable from %s\n", txDst, txSrc)
			return nil
		}
		hops := make([]string, 0, len(res.Path))
		for _, id := range res.Path {
			hops = append(hops, string(id))
		}
		fmt.Fprintf(out, "path %s, cost %d\n", strings.Join(hops, " -> "), res.Cost)
		t := res.Transport
		fmt.Fprintf(out, "%d/%d bytes in %d steps, %d loss events\n", t.BytesTransmitted, t.PayloadBytes, t.TimeSteps, t.LossEvents)
		if res.Success {
			fmt.Fprintf(out, "decrypted %s\n", res.DecryptedText)
		} else {
			fmt.Fprintf(out, "failed: %s\n", res.Error)
		}
		return nil
	},
	GroupID: "sim",
}

func init() {
	rootCmd.AddCommand(transmitCmd)

	transmitCmd.Flags().StringVar(&txText, "text", "HELLO NETWORK SECURITY WORLD", "Message to send")
	transmitCmd.Flags().StringVarP(&txKey, "key", "k", "NETWORK", "Playfair key")
	transmitCmd.Flags().StringVarP(&txSrc, "src", "s", "A", "Source node")
	transmitCmd.Flags().StringVarP(&txDst, "dst", "d", "F", "Destination node")
	transmitCmd.Flags().Float64Var(&txLoss, "loss", state.DefaultLossProbability, "Per step loss probability")
	transmitCmd.Flags().Uint64Var(&txSeed, "seed", 0, "Random seed, picked at random if unset")
	transmitCmd.Flags().BoolVar(&txYaml, "yaml", false, "Print the full result as yaml")
}
