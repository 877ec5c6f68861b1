package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/classifier"
	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/config"
	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/model"
	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/pipeline"
	"github.com/Kirangv121/Remote-Equipment-Monitoring-and-Predictive-Maintenance-Dashboard/internal/types"
)

var checkValues string

var checkFlagKeys = map[string]string{
	"model":     "model.autoencoder_uri",
	"scaler":    "model.scaler_uri",
	"threshold": "detection.threshold",
}

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Score one reading without sending alerts",
		Long: `Run a reading through normalization, scoring, classification and
remediation lookup, and print the verdict. No sink is contacted.

Examples:
  # Check the built-in test sample
  cranewatch check

  # Check a custom reading as JSON
  cranewatch check --values 60,520,80,22,12,300,10 -o json`,
		RunE: runCheck,
	}

	cmd.Flags().StringVar(&checkValues, "values", formatValues(pipeline.SampleReading()), "Comma-separated channel values")
	cmd.Flags().String("model", "", "Autoencoder artifact path or s3:// URI")
	cmd.Flags().String("scaler", "", "Scaler artifact path or s3:// URI")
	cmd.Flags().Float64("threshold", classifier.DefaultThreshold, "Reconstruction error threshold")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	reading, err := parseValues(checkValues)
	if err != nil {
		return err
	}

	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: configFile,
		Flags:      cmd.Flags(),
		FlagKeys:   checkFlagKeys,
	})
	if err != nil {
		return err
	}

	result, err := evaluateReading(cmd.Context(), cfg, reading)
	if err != nil {
		return err
	}
	return outputResult(cmd.OutOrStdout(), result, outputFmt)
}

func evaluateReading(ctx context.Context, cfg *config.Config, reading types.SensorReading) (CheckResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	scaler, ae, err := loadModel(ctx, cfg.Model)
	if err != nil {
		return CheckResult{}, err
	}
	clf, err := newClassifier(cfg.Detection)
	if err != nil {
		return CheckResult{}, err
	}
	cat, err := newCatalog(cfg.Remediations)
	if err != nil {
		return CheckResult{}, err
	}

	p, err := pipeline.New(zap.NewNop(), pipeline.Options{
		Normalizer: scaler,
		Scorer:     model.NewScorer(ae),
		Classifier: clf,
		Catalog:    cat,
	})
	if err != nil {
		return CheckResult{}, err
	}

	res, err := p.Evaluate(ctx, reading)
	if err != nil {
		return CheckResult{}, err
	}

	out := CheckResult{
		Reading:             reading,
		Anomalous:           res.Anomalous,
		ReconstructionError: res.ReconstructionError,
		Threshold:           res.Threshold,
	}
	if res.Event != nil {
		out.Issue = string(res.Event.Issue)
		out.Rule = res.Event.Rule
		out.Remediation = res.Event.Remediation
	}
	return out, nil
}

func parseValues(s string) (types.SensorReading, error) {
	parts := strings.Split(s, ",")
	reading := make(types.SensorReading, 0, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("value %d (%q) is not a number", i+1, p)
		}
		reading = append(reading, v)
	}
	if len(reading) == 0 {
		return nil, fmt.Errorf("no values given")
	}
	return reading, nil
}

func formatValues(r types.SensorReading) string {
	parts := make([]string, len(r))
	for i, v := range r {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}
