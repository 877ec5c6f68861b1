package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"sigs.k8s.io/yaml"
)

// CheckResult is the result of a check command.
type CheckResult struct {
	Reading             []float64 `json:"reading"`
	Anomalous           bool      `json:"anomalous"`
	ReconstructionError float64   `json:"reconstructionError"`
	Threshold           float64   `json:"threshold"`
	Issue               string    `json:"issue,omitempty"`
	Rule                string    `json:"rule,omitempty"`
	Remediation         string    `json:"remediation,omitempty"`
}

// CatalogEntry is one issue in the remediation catalog.
type CatalogEntry struct {
	Issue       string `json:"issue"`
	Title       string `json:"title"`
	Remediation string `json:"remediation"`
}

// CatalogResult is the result of a catalog command.
type CatalogResult struct {
	Entries  []CatalogEntry `json:"entries"`
	Fallback string         `json:"fallback"`
}

// outputResult writes the result in the specified format.
func outputResult(w io.Writer, result interface{}, format string) error {
	switch format {
	case "json":
		return outputJSON(w, result)
	case "yaml":
		return outputYAML(w, result)
	case "table", "":
		return outputTable(w, result)
	default:
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
	}
}

func outputJSON(w io.Writer, result interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func outputYAML(w io.Writer, result interface{}) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func outputTable(out io.Writer, result interface{}) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	switch r := result.(type) {
	case CheckResult:
		return outputCheckTable(w, r)
	case CatalogResult:
		return outputCatalogTable(w, r)
	default:
		// Fall back to JSON for unknown types
		return outputJSON(out, result)
	}
}

func outputCheckTable(w *tabwriter.Writer, r CheckResult) error {
	status := "NORMAL"
	if r.Anomalous {
		status = "ANOMALY"
	}

	fmt.Fprintf(w, "READING:\t%s\n", formatValues(r.Reading))
	fmt.Fprintf(w, "STATUS:\t%s\n", status)
	fmt.Fprintf(w, "RECONSTRUCTION ERROR:\t%.6g\n", r.ReconstructionError)
	fmt.Fprintf(w, "THRESHOLD:\t%g\n", r.Threshold)

	if r.Anomalous {
		fmt.Fprintf(w, "ISSUE:\t%s\n", r.Issue)
		if r.Rule != "" {
			fmt.Fprintf(w, "RULE:\t%s\n", r.Rule)
		}
		fmt.Fprintf(w, "REMEDIATION:\t%s\n", r.Remediation)
	}
	return nil
}

func outputCatalogTable(w *tabwriter.Writer, r CatalogResult) error {
	fmt.Fprintln(w, "ISSUE\tTITLE\tREMEDIATION")
	for _, e := range r.Entries {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Issue, e.Title, e.Remediation)
	}
	return nil
}
