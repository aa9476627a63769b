package main

import (
	"github.com/spf13/cobra"
)

const defaultConfigPath = "configs/config.dev.yaml"

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:   "annualtables",
		Short: "Annual row-per-entity summary tables from timestep streams",
		Long: `annualtables consumes per-timestep simulation output (from Kafka, an MQTT topic or
a JSON Lines replay file), folds every configured field into its aggregation, and renders one
annual table per configured table group when the run ends.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", defaultConfigPath, "Path to the configuration file")

	root.AddCommand(
		newRunCmd(&configFile),
		newCheckCmd(&configFile),
		newRunsCmd(),
	)
	return root
}
