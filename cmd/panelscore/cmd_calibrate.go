package main

import (
	"fmt"
	"math"

	"github.com/spboyer/panelscore/internal/calibration"
	"github.com/spboyer/panelscore/internal/reporting"
	"github.com/spf13/cobra"
)

type calibrateOptions struct {
	tolerance float64
	format    string
	output    string
	minWithin float64
	showDiffs bool
}

func newCalibrateCommand() *cobra.Command {
	opts := &calibrateOptions{}
	cmd := &cobra.Command{
		Use:   "calibrate <human.csv> <results-file>",
		Short: "Compare judge scores with human labels",
		Long: `Measure how closely panel scores track human scores.

The human CSV needs sample_id and human_score columns; any other human_<dim>
column is compared against the judge's dimension score of the same name.
The results file is one written by "panelscore judge".`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return calibrateCommandE(cmd, opts, args[0], args[1])
		},
	}

	cmd.Flags().Float64Var(&opts.tolerance, "tolerance", 1, "Maximum score difference that still counts as agreement")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatTable, "Output format: table, json or yaml")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the calibration report to a JSON or YAML file")
	cmd.Flags().Float64Var(&opts.minWithin, "min-agreement", 0, "Fail with exit code 1 when overall within-tolerance agreement (%) is below this")
	cmd.Flags().BoolVar(&opts.showDiffs, "diffs", false, "List samples whose overall scores differ by more than the tolerance")

	return cmd
}

func calibrateCommandE(cmd *cobra.Command, opts *calibrateOptions, humanPath, resultsPath string) error {
	if err := checkFormat(opts.format); err != nil {
		return err
	}
	if opts.tolerance < 0 {
		return fmt.Errorf("--tolerance must be >= 0, got %v", opts.tolerance)
	}

	human, err := calibration.LoadHumanCSV(humanPath)
	if err != nil {
		return err
	}
	run, err := loadJudgeRun(resultsPath)
	if err != nil {
		return err
	}
	report, err := calibration.Compare(human, calibration.ScoresFromVerdicts(run.Results), opts.tolerance)
	if err != nil {
		return err
	}

	if opts.output != "" {
		if err := writeOutputFile(opts.output, report); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if opts.format == formatTable {
		fmt.Fprintf(out, "Calibration over %d shared samples\n\n", report.Samples)
		if err := reporting.CalibrationTable(out, report); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nOverall agreement: %s\n", report.OverallStatus())
		if opts.showDiffs {
			fmt.Fprintln(out)
			for _, d := range report.Details {
				if math.Abs(d.Diff) > opts.tolerance {
					fmt.Fprintf(out, "  %s: human %.1f, judge %.1f (%+.1f)\n", d.SampleID, d.HumanOverall, d.JudgeOverall, d.Diff)
				}
			}
		}
	} else {
		data, err := encode(opts.format, report)
		if err != nil {
			return err
		}
		if _, err := out.Write(data); err != nil {
			return err
		}
	}

	if opts.minWithin > 0 {
		for _, d := range report.Dimensions {
			if d.Dimension == calibration.Overall && d.WithinTolerance < opts.minWithin {
				return &ThresholdError{Message: fmt.Sprintf("overall agreement %.1f%% is below --min-agreement %.1f%%", d.WithinTolerance, opts.minWithin)}
			}
		}
	}
	return nil
}
