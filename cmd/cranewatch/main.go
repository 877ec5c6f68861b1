// cranewatch watches machine sensor readings for anomalies and alerts the
// operator, real-time dashboards and a message bus when one is found.
//
// Installation:
//
//	go build -o cranewatch ./cmd/cranewatch
//
// Usage:
//
//	cranewatch serve --config deploy/cranewatch.yaml
//	cranewatch check --values 105,950,80,50,45,300,10
//	cranewatch catalog -o yaml
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version    = "dev"
	outputFmt  string
	configFile string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cranewatch",
		Short: "Detect machine sensor anomalies and dispatch alerts",
		Long: `cranewatch scores sensor readings with an autoencoder, diagnoses
anomalous ones with ordered threshold rules and sends the matching
troubleshooting advice to every configured alert sink.`,
		Version:      version,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default ./cranewatch.yaml or /etc/cranewatch/cranewatch.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table", "Output format: table, json, yaml")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(catalogCmd())

	return rootCmd
}
