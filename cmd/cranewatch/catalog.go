package main

import (
	"github.com/spf13/cobra"

	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/config"
	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/notifier"
)

func catalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Print the remediation catalog",
		Long: `Print the troubleshooting advice sent for each issue, including
overrides from the remediations section of the config file.

Examples:
  cranewatch catalog
  cranewatch catalog --config deploy/cranewatch.yaml -o yaml`,
		Args: cobra.NoArgs,
		RunE: runCatalog,
	}
}

func runCatalog(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.LoadOptions{ConfigFile: configFile})
	if err != nil {
		return err
	}
	cat, err := newCatalog(cfg.Remediations)
	if err != nil {
		return err
	}
	return outputResult(cmd.OutOrStdout(), newCatalogResult(cat), outputFmt)
}

func newCatalogResult(cat *notifier.Catalog) CatalogResult {
	entries := cat.Entries()
	out := CatalogResult{Entries: make([]CatalogEntry, 0, len(entries)), Fallback: notifier.FallbackRemediation}
	for _, e := range entries {
		out.Entries = append(out.Entries, CatalogEntry{
			Issue:       string(e.Issue),
			Title:       e.Title,
			Remediation: e.Remediation,
		})
	}
	return out
}
