package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/encodeous/netsim/api"
	"github.com/encodeous/netsim/state"
	"github.com/spf13/cobra"
)

var (
	serveConfigPath string
	serveBind       string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the simulators over a JSON HTTP API",
	Long: `Serves the simulators over a JSON HTTP API for the dashboard.
The current topology is loaded from the topology file, or the preset if the file does not exist yet, and can be saved back to it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := state.DefaultServerCfg()
		if serveConfigPath != "" {
			file, err := state.ReadServerCfg(serveConfigPath)
			if err != nil {
				return err
			}
			cfg = *file
		}
		if cmd.Flags().Changed("bind") {
			cfg.Bind = serveBind
		}
		if cmd.Flags().Changed("topology") {
			cfg.TopologyPath = topologyPath
		}
		if cmd.Flags().Changed("preset") {
			cfg.Preset = presetName
		}
		if logPath != "" {
			cfg.LogPath = logPath
		}

		logPath = cfg.LogPath
		logger, closer, err := newLogger("api")
		if err != nil {
			return err
		}
		defer closer.Close()

		s, err := api.New(cfg, logger)
		if err != nil {
			return err
		}
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		return s.Serve(ctx)
	},
	GroupID: "sim",
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", "", "Server config file")
	serveCmd.Flags().StringVarP(&serveBind, "bind", "b", state.DefaultBind, "Address to listen on")
}
