package main

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/spboyer/panelscore/internal/dataset"
	"github.com/spboyer/panelscore/internal/discovery"
	"github.com/spboyer/panelscore/internal/models"
	"github.com/spboyer/panelscore/internal/reporting"
	"github.com/spboyer/panelscore/internal/scoring"
	"github.com/spf13/cobra"
)

type scoreOptions struct {
	*globalOptions
	module    string
	format    string
	output    string
	merge     bool
	minF1     float64
	interpret bool
	pattern   string
}

func newScoreCommand(g *globalOptions) *cobra.Command {
	opts := &scoreOptions{globalOptions: g}
	cmd := &cobra.Command{
		Use:   "score <results-file|dir>...",
		Short: "Score classifier outputs against ground truth",
		Long: `Score one or more pipeline result files (CSV or JSONL) for a classifier
module, reporting the confusion matrix, accuracy, precision, recall, F1
and MCC. A directory argument scores every dataset file under it.

Modules come from the built-in presets plus any "modules" entries in
.panelscore.yaml.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return scoreCommandE(cmd, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.module, "module", "m", "", "Classifier module to score (e.g. m02)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatTable, "Output format: table, json or yaml")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write score records to a JSON or YAML file")
	cmd.Flags().BoolVar(&opts.merge, "merge", false, "Add a record that merges the counts of every file")
	cmd.Flags().Float64Var(&opts.minF1, "min-f1", 0, "Fail with exit code 1 when any record's F1 is below this percentage")
	cmd.Flags().BoolVar(&opts.interpret, "interpret", false, "Print a plain-language interpretation of the results")
	cmd.Flags().StringVar(&opts.pattern, "pattern", "", "File name glob for files found in directory arguments (e.g. 'results_*')")
	_ = cmd.MarkFlagRequired("module")

	return cmd
}

func scoreCommandE(cmd *cobra.Command, opts *scoreOptions, paths []string) error {
	if err := checkFormat(opts.format); err != nil {
		return err
	}

	cfg, err := opts.loadConfig(cmd.Context())
	if err != nil {
		return err
	}
	modules, err := cfg.ClassifierModules()
	if err != nil {
		return err
	}
	mod, ok := modules[strings.ToLower(opts.module)]
	if !ok {
		return fmt.Errorf("unknown module %q (available: %s)", opts.module, strings.Join(scoring.ModuleIDs(modules), ", "))
	}
	scorer, err := scoring.New(mod)
	if err != nil {
		return err
	}

	paths, err = discovery.ExpandPaths(paths, opts.pattern)
	if err != nil {
		return err
	}

	records := make([]models.ScoreRecord, 0, len(paths)+1)
	for _, path := range paths {
		rows, err := dataset.Load(path)
		if err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
		res, err := scorer.Score(rows)
		if errors.Is(err, scoring.ErrNoData) && len(paths) > 1 {
			slog.Warn("no scorable rows", "file", path, "skipped", res.Skipped)
			continue
		}
		if err != nil {
			return fmt.Errorf("scoring %s: %w", path, err)
		}
		slog.Debug("scored file", "file", path, "module", mod.ID, "skipped", res.Skipped, "duplicates", res.Duplicates)
		records = append(records, scoring.NewRecord(mod, scoring.ExperimentInfoFor(path), res))
	}
	if len(records) == 0 {
		return fmt.Errorf("module %s: %w", mod.ID, scoring.ErrNoData)
	}

	if opts.merge && len(records) > 1 {
		merged, err := scoring.MergeRecords(mod.ID, records)
		if err != nil {
			return err
		}
		records = append(records, merged)
	}

	if opts.output != "" {
		if err := writeOutputFile(opts.output, records); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if opts.format == formatTable {
		if err := reporting.ScoreTable(out, records); err != nil {
			return err
		}
		for _, r := range records {
			if r.Multiclass != nil {
				fmt.Fprintf(out, "\n%s per class (macro F1 %.1f%%):\n\n", r.RunID, r.Multiclass.MacroF1)
				if err := reporting.MulticlassTable(out, r); err != nil {
					return err
				}
			}
		}
	} else {
		data, err := encode(opts.format, records)
		if err != nil {
			return err
		}
		if _, err := out.Write(data); err != nil {
			return err
		}
	}
	if opts.interpret {
		fmt.Fprintln(out)
		fmt.Fprint(out, reporting.FormatScoreReport(records))
	}

	if opts.minF1 > 0 {
		if i := slices.IndexFunc(records, func(r models.ScoreRecord) bool { return r.F1 < opts.minF1 }); i >= 0 {
			return &ThresholdError{Message: fmt.Sprintf("%s: F1 %.1f%% is below --min-f1 %.1f%%", records[i].RunID, records[i].F1, opts.minF1)}
		}
	}
	return nil
}
