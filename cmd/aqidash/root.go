// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AQIDash Contributors

package main

import (
	"github.com/spf13/cobra"
)

// serviceName tags every log record.
const serviceName = "aqidash"

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the AQIDash CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aqidash",
		Short: "AQIDash - air quality dashboard portal",
		Long: `AQIDash serves account registration, login and password reset in
front of a descriptive page and an embedded air pollution dashboard.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (default: XDG_CONFIG_HOME/aqidash/config.yaml)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
