package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ignaciohermosillacornejo/copilot-money-mcp-sub003/bootstrap"
)

var serveCMD = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP query server",
	Long:  `Serve the store's transactions, accounts and spending reports over HTTP.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		applyFlagEnv()
		return bootstrap.Serve()
	},
}

// applyFlagEnv forwards flag overrides into the environment the
// configuration loader reads, so the container sees them too.
func applyFlagEnv() {
	if flagDBPath != "" {
		os.Setenv("COPILOT_DB_PATH", flagDBPath)
	}
	if flagDecoder != "" {
		os.Setenv("COPILOT_DECODER", flagDecoder)
	}
	if flagLogLevel != "" {
		os.Setenv("COPILOT_LOG_LEVEL", flagLogLevel)
	}
}
