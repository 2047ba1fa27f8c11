package main

import (
	"fmt"
	"slices"

	"github.com/spboyer/panelscore/internal/reporting"
	"github.com/spboyer/panelscore/internal/statistics"
	"github.com/spf13/cobra"
)

type kappaOptions struct {
	field    string
	weighted bool
	format   string
}

func newKappaCommand() *cobra.Command {
	opts := &kappaOptions{}
	cmd := &cobra.Command{
		Use:   "kappa <a-file> <b-file>",
		Short: "Measure agreement between two labelled result files",
		Long: `Compute Cohen's kappa between the labels of two result files.

Each file is a JSON or YAML array of objects, or a results file written by
"panelscore judge". Items are paired by sample_id when every item has one,
otherwise by position.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return kappaCommandE(cmd, opts, args[0], args[1])
		},
	}

	cmd.Flags().StringVar(&opts.field, "field", "final_verdict", "Field holding the label")
	cmd.Flags().BoolVar(&opts.weighted, "weighted", false, "Use quadratic weights for ordinal labels")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatTable, "Output format: table, json or yaml")

	return cmd
}

func kappaCommandE(cmd *cobra.Command, opts *kappaOptions, pathA, pathB string) error {
	if err := checkFormat(opts.format); err != nil {
		return err
	}
	a, err := loadLabels(pathA, opts.field)
	if err != nil {
		return err
	}
	b, err := loadLabels(pathB, opts.field)
	if err != nil {
		return err
	}
	la, lb := pairLabels(a, b)

	kappaFn := statistics.CohensKappa
	if opts.weighted {
		kappaFn = statistics.WeightedKappa
	}
	k, err := kappaFn(la, lb)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.format != formatTable {
		data, err := encode(opts.format, k)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}

	fmt.Fprintf(out, "Cohen's kappa: %.3f (%s)\n", k.Kappa, k.Interpretation)
	fmt.Fprintf(out, "Observed agreement: %.3f, expected: %.3f, n=%d\n\n", k.ObservedAgreement, k.ExpectedAgreement, k.Samples)
	return reporting.KappaTable(out, k)
}

type labelled struct {
	id    string
	label string
}

// loadLabels reads the field of every item in path.
func loadLabels(path, field string) ([]labelled, error) {
	var doc any
	if err := decodeFile(path, &doc); err != nil {
		return nil, err
	}
	if m, ok := doc.(map[string]any); ok {
		doc = m["results"]
	}
	items, ok := doc.([]any)
	if !ok {
		return nil, fmt.Errorf("%s: expected an array of results", path)
	}

	out := make([]labelled, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s item %d: expected an object", path, i)
		}
		v, ok := obj[field]
		if !ok || v == nil {
			return nil, fmt.Errorf("%s item %d: missing field %q", path, i, field)
		}
		id, _ := obj["sample_id"].(string)
		out = append(out, labelled{id: id, label: fmt.Sprint(v)})
	}
	return out, nil
}

// pairLabels aligns two label lists by sample id when every item carries
// one, keeping ids present on both sides in a's order. Otherwise the lists
// are returned in file order.
func pairLabels(a, b []labelled) ([]string, []string) {
	hasIDs := func(ls []labelled) bool {
		return len(ls) > 0 && !slices.ContainsFunc(ls, func(l labelled) bool { return l.id == "" })
	}
	if !hasIDs(a) || !hasIDs(b) {
		return labelsOf(a), labelsOf(b)
	}

	byID := make(map[string]string, len(b))
	for _, l := range b {
		byID[l.id] = l.label
	}
	var la, lb []string
	for _, l := range a {
		if other, ok := byID[l.id]; ok {
			la = append(la, l.label)
			lb = append(lb, other)
		}
	}
	return la, lb
}

func labelsOf(ls []labelled) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.label
	}
	return out
}
