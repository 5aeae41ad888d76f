package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose      bool
	logPath      string
	topologyPath string
	presetName   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "netsim",
	Short: "Network protocol simulator",
	Long: `netsim simulates distance-vector routing over a weighted topology and TCP Reno congestion control for a single connection.
Both can be combined into an end to end transmission of a Playfair encrypted message.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddGroup(&cobra.Group{
		ID:    "sim",
		Title: "Simulation Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "cfg",
		Title: "Configuration",
	})
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&logPath, "log-path", "", "Also write logs to this file")
	rootCmd.PersistentFlags().StringVarP(&topologyPath, "topology", "t", "", "Topology file, overrides --preset")
	rootCmd.PersistentFlags().StringVarP(&presetName, "preset", "p", "sample", "Built-in topology to use when no topology file is given")
}
