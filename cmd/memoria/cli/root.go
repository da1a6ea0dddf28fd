// Package cli implements the memoria command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	configPath string
	dbPath     string
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "memoria",
	Short: "Knowledge capture and recall engine",
	Long: `Memoria archives research (URLs, notes) with LLM-generated summaries
and surfaces relevant items back when your working context matches.
It serves a REST API and an MCP stdio server for AI coding assistants.`,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.memoria/config.yaml)")
	RootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file (overrides config)")

	RootCmd.AddCommand(serveCmd)
	RootCmd.AddCommand(captureCmd)
	RootCmd.AddCommand(recallCmd)
	RootCmd.AddCommand(versionCmd)
}
