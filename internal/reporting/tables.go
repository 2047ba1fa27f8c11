package reporting

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spboyer/panelscore/internal/calibration"
	"github.com/spboyer/panelscore/internal/models"
	"github.com/spboyer/panelscore/internal/statistics"
)

// createStandardTable returns a markdown table writer shared by every
// report in this package.
func createStandardTable(headers []string, w io.Writer) *tablewriter.Table {
	cfg := tablewriter.Config{
		Header: tw.CellConfig{
			Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			Formatting: tw.CellFormatting{AutoFormat: tw.Off},
		},
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		},
		MaxWidth: 120,
		Behavior: tw.Behavior{TrimSpace: tw.Off},
	}
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(cfg),
		tablewriter.WithHeader(headers),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleMarkdown),
			Borders: tw.Border{
				Left:   tw.On,
				Top:    tw.Off,
				Right:  tw.On,
				Bottom: tw.Off,
			},
		}),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
}

func renderRows(w io.Writer, headers []string, rows [][]string) error {
	table := createStandardTable(headers, w)
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func formatOptional(v *float64, format string) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf(format, *v)
}

func formatOptionalPercent(fraction *float64) string {
	if fraction == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%%", *fraction*100)
}

// ScoreTable writes one row per score record.
func ScoreTable(w io.Writer, records []models.ScoreRecord) error {
	headers := []string{"Run", "Module", "Total", "TP", "TN", "FP", "FN", "Accuracy", "Precision", "Recall", "F1", "MCC", "Skipped"}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.RunID,
			r.Module,
			strconv.Itoa(r.Total),
			strconv.Itoa(r.TP),
			strconv.Itoa(r.TN),
			strconv.Itoa(r.FP),
			strconv.Itoa(r.FN),
			fmt.Sprintf("%.1f%%", r.Accuracy),
			fmt.Sprintf("%.1f%%", r.Precision),
			fmt.Sprintf("%.1f%%", r.Recall),
			fmt.Sprintf("%.1f%%", r.F1),
			fmt.Sprintf("%.3f", r.MCC),
			strconv.Itoa(r.Skipped),
		})
	}
	return renderRows(w, headers, rows)
}

// MulticlassTable writes the per-class breakdown of a multiclass record.
// Records without one write nothing.
func MulticlassTable(w io.Writer, rec models.ScoreRecord) error {
	mc := rec.Multiclass
	if mc == nil {
		return nil
	}
	headers := []string{"Class", "Expected", "Actual", "TP", "FP", "FN", "Precision", "Recall", "F1"}
	var rows [][]string
	for _, class := range slices.Sorted(maps.Keys(mc.PerClass)) {
		m := mc.PerClass[class]
		rows = append(rows, []string{
			class,
			strconv.Itoa(mc.ExpectedDistribution[class]),
			strconv.Itoa(mc.ActualDistribution[class]),
			strconv.Itoa(m.TP),
			strconv.Itoa(m.FP),
			strconv.Itoa(m.FN),
			fmt.Sprintf("%.1f%%", m.Precision),
			fmt.Sprintf("%.1f%%", m.Recall),
			fmt.Sprintf("%.1f%%", m.F1),
		})
	}
	return renderRows(w, headers, rows)
}

// SummaryTable writes the per-rubric roll-up of a judge run.
func SummaryTable(w io.Writer, summaries []models.RubricSummary) error {
	headers := []string{"Rubric", "Module", "Pass", "Fail", "Errors", "Pass Rate", "Agreement"}
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.RubricID,
			s.Module,
			strconv.Itoa(s.PassCount),
			strconv.Itoa(s.FailCount),
			strconv.Itoa(s.ErrorCount),
			fmt.Sprintf("%.1f%%", s.PassRate()*100),
			formatOptionalPercent(s.AgreementRate),
		})
	}
	return renderRows(w, headers, rows)
}

// BiasTable writes one row per bias check.
func BiasTable(w io.Writer, r models.BiasReport) error {
	headers := []string{"Check", "Result", "Detail", "Recommendation"}
	rows := [][]string{
		{
			"Leniency",
			string(r.Leniency.BiasDetected),
			fmt.Sprintf("mean %s, median %s, n=%d",
				formatOptional(r.Leniency.Mean, "%.2f"), formatOptional(r.Leniency.Median, "%.2f"), r.Leniency.Count),
			r.Leniency.Recommendation,
		},
		{
			"Central tendency",
			string(r.CentralTendency.BiasDetected),
			fmt.Sprintf("middle %s, extreme %s",
				formatOptional(r.CentralTendency.MiddleRatio, "%.3f"), formatOptional(r.CentralTendency.ExtremeRatio, "%.3f")),
			r.CentralTendency.Recommendation,
		},
		{
			"Dimension bias",
			string(r.DimensionBias.BiasDetected),
			dimensionDetail(r.DimensionBias),
			r.DimensionBias.Recommendation,
		},
		{
			"Outcome correlation",
			string(r.OutcomeCorrelation.BiasDetected),
			outcomeDetail(r.OutcomeCorrelation),
			r.OutcomeCorrelation.Recommendation,
		},
	}
	return renderRows(w, headers, rows)
}

func dimensionDetail(d models.DimensionBias) string {
	if d.Highest == nil || d.Lowest == nil {
		return "N/A"
	}
	return fmt.Sprintf("%s %.2f / %s %.2f, spread %s",
		d.Highest.Dimension, d.Highest.Mean, d.Lowest.Dimension, d.Lowest.Mean, formatOptional(d.Spread, "%.2f"))
}

func outcomeDetail(o models.OutcomeCorrelation) string {
	lower, lok := o.Partitions[o.LowerLabel]
	higher, hok := o.Partitions[o.HigherLabel]
	if !lok || !hok {
		return "N/A"
	}
	return fmt.Sprintf("%s %.2f (n=%d) / %s %.2f (n=%d)",
		o.LowerLabel, lower.Mean, lower.Count, o.HigherLabel, higher.Mean, higher.Count)
}

// CalibrationTable writes one row per compared dimension.
func CalibrationTable(w io.Writer, r *calibration.Report) error {
	headers := []string{"Dimension", "Samples", "Exact", "Within ±" + strconv.FormatFloat(r.Tolerance, 'f', -1, 64), "MAE", "Pearson", "Status"}
	rows := make([][]string, 0, len(r.Dimensions))
	for _, d := range r.Dimensions {
		rows = append(rows, []string{
			d.Dimension,
			strconv.Itoa(d.Samples),
			fmt.Sprintf("%.1f%%", d.Exact),
			fmt.Sprintf("%.1f%%", d.WithinTolerance),
			fmt.Sprintf("%.2f", d.MAE),
			formatOptional(d.Pearson, "%.3f"),
			d.Status,
		})
	}
	return renderRows(w, headers, rows)
}

// KappaTable writes the confusion matrix of a kappa result, rows for the
// first rater and columns for the second.
func KappaTable(w io.Writer, k *statistics.KappaResult) error {
	headers := append([]string{"A \\ B"}, k.Labels...)
	rows := make([][]string, 0, len(k.Labels))
	for _, a := range k.Labels {
		row := []string{a}
		for _, b := range k.Labels {
			row = append(row, strconv.Itoa(k.ConfusionMatrix[a][b]))
		}
		rows = append(rows, row)
	}
	return renderRows(w, headers, rows)
}
