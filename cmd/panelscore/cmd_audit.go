package main

import (
	"cmp"
	"fmt"
	"strings"

	"github.com/spboyer/panelscore/internal/bias"
	"github.com/spboyer/panelscore/internal/models"
	"github.com/spboyer/panelscore/internal/reporting"
	"github.com/spf13/cobra"
)

type auditOptions struct {
	*globalOptions
	lower      string
	higher     string
	fallback   string
	format     string
	output     string
	failOnBias bool
}

func newAuditCommand(g *globalOptions) *cobra.Command {
	opts := &auditOptions{globalOptions: g}
	cmd := &cobra.Command{
		Use:   "audit <results-file>",
		Short: "Audit judge scores for systematic bias",
		Long: `Audit a corpus of judged samples for leniency, severity, central
tendency, per-dimension skew and outcome correlation anomalies.

The input is either a results file written by "panelscore judge" or a JSON
array of {sample_id, overall, scores, outcome_label} objects.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return auditCommandE(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.lower, "lower", "", "Outcome label expected to score lower (default: from config, critic)")
	cmd.Flags().StringVar(&opts.higher, "higher", "", "Outcome label expected to score higher (default: from config, defender)")
	cmd.Flags().StringVar(&opts.fallback, "fallback", "", "Partition for samples without an outcome label (default: from config, tie)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatTable, "Output format: table, json or yaml")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the bias report to a JSON or YAML file")
	cmd.Flags().BoolVar(&opts.failOnBias, "fail-on-bias", false, "Exit with code 1 when any bias is detected")

	return cmd
}

func auditCommandE(cmd *cobra.Command, opts *auditOptions, path string) error {
	if err := checkFormat(opts.format); err != nil {
		return err
	}
	cfg, err := opts.loadConfig(cmd.Context())
	if err != nil {
		return err
	}
	corpus, err := loadCorpus(path)
	if err != nil {
		return err
	}

	auditor := bias.NewAuditor(bias.OutcomeDirection{
		Lower:    cmp.Or(opts.lower, cfg.Bias.Lower),
		Higher:   cmp.Or(opts.higher, cfg.Bias.Higher),
		Fallback: cmp.Or(opts.fallback, cfg.Bias.Fallback),
	})
	report := auditor.Audit(corpus)

	if opts.output != "" {
		if err := writeOutputFile(opts.output, report); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if opts.format == formatTable {
		fmt.Fprintf(out, "Bias audit of %d samples\n\n", report.Samples)
		if err := reporting.BiasTable(out, report); err != nil {
			return err
		}
		fmt.Fprintf(out, "\n%s\n", bias.Summary(report))
	} else {
		data, err := encode(opts.format, report)
		if err != nil {
			return err
		}
		if _, err := out.Write(data); err != nil {
			return err
		}
	}

	if detected := report.Detected(); opts.failOnBias && len(detected) > 0 {
		names := make([]string, len(detected))
		for i, t := range detected {
			names[i] = string(t)
		}
		return &ThresholdError{Message: "biases detected: " + strings.Join(names, ", ")}
	}
	return nil
}

// loadCorpus reads scored samples from a bare sample list or a judge
// results file.
func loadCorpus(path string) ([]models.ScoredSample, error) {
	var samples []models.ScoredSample
	if err := decodeFile(path, &samples); err == nil {
		return samples, nil
	}

	run, err := loadJudgeRun(path)
	if err != nil {
		return nil, err
	}
	samples = make([]models.ScoredSample, len(run.Results))
	for i, v := range run.Results {
		samples[i] = v.ScoredSample()
	}
	return samples, nil
}
