// Package cmd implements the fraudwatch command line: the HTTP server and
// one-shot commands that run a question or a SELECT from the terminal.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ekaya-inc/fraudwatch/pkg/config"
)

var configPath string

// rootCmd starts the server when no subcommand is given.
var rootCmd = &cobra.Command{
	Use:   "fraudwatch",
	Short: "Fraud monitoring API over the analytics warehouse",
	Long: `fraudwatch serves the fraud dashboard API: alert lists, aggregates,
single-transaction scoring and a natural-language assistant that answers
questions by generating and running SELECT statements.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

// Execute runs the CLI application.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigFile,
		"Path to the YAML config file (environment variables override it)")
	rootCmd.AddCommand(serveCmd, askCmd, queryCmd, versionCmd)
}
