// Package cmd builds the robotctl command-line tree: flag/env/file
// configuration via viper, then a single long-running serve action.
package cmd

import (
	"github.com/spf13/cobra"

	"robotctl/internal/config"
)

var cfgFile string

// Execute runs the robotctl root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "robotctl",
		Short:         "robotctl runs the robot-control TCP protocol server",
		Long:          "robotctl listens for robot clients speaking the authentication, navigation, and serpentine-scan protocol, and exposes an admin/observability HTTP surface alongside it.",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runServe,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a config file (yaml, toml, json)")
	config.BindFlags(rootCmd.Flags())

	return rootCmd
}
