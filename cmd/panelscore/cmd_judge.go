package main

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spboyer/panelscore/internal/bias"
	"github.com/spboyer/panelscore/internal/cache"
	"github.com/spboyer/panelscore/internal/dataset"
	"github.com/spboyer/panelscore/internal/hooks"
	"github.com/spboyer/panelscore/internal/judge"
	"github.com/spboyer/panelscore/internal/judge/providers"
	"github.com/spboyer/panelscore/internal/models"
	"github.com/spboyer/panelscore/internal/panel"
	"github.com/spboyer/panelscore/internal/projectconfig"
	"github.com/spboyer/panelscore/internal/reporting"
	"github.com/spboyer/panelscore/internal/session"
	"github.com/spboyer/panelscore/internal/spinner"
	"github.com/spboyer/panelscore/internal/utils"
	"github.com/spboyer/panelscore/internal/validation"
	"github.com/spf13/cobra"
)

type judgeOptions struct {
	*globalOptions
	rubricsFile  string
	rubricIDs    []string
	module       string
	panelSize    int
	single       bool
	workers      int
	mock         bool
	enableCache  bool
	disableCache bool
	start        int
	end          int
	output       string
	junit        string
	metricsFile  string
	minPassRate  float64
	interpret    bool
	sessionLog   bool
}

func newJudgeCommand(g *globalOptions) *cobra.Command {
	opts := &judgeOptions{globalOptions: g}
	cmd := &cobra.Command{
		Use:   "judge <dataset>",
		Short: "Judge dataset outputs against rubrics with a panel of LLMs",
		Long: `Judge every sample in a dataset (CSV or JSONL) against one or more
rubrics. Each panel member judges independently and the verdicts are
combined by majority vote; ties resolve to FAIL and are flagged for review.

The panel comes from .panelscore.yaml, else from the rubric file's
judges.poll_panel, else the default three-judge panel. Use --mock for an
offline dry run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return judgeCommandE(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.rubricsFile, "rubrics", "", "Rubric file (default: rubrics path from .panelscore.yaml)")
	cmd.Flags().StringArrayVarP(&opts.rubricIDs, "rubric", "r", nil, "Rubric ID to judge (can be repeated)")
	cmd.Flags().StringVarP(&opts.module, "module", "m", "", "Judge every rubric of this module (e.g. M02)")
	cmd.Flags().IntVar(&opts.panelSize, "panel-size", 0, "Use only the first N panel members")
	cmd.Flags().BoolVar(&opts.single, "single", false, "Use only the judge from .panelscore.yaml instead of a panel")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Number of concurrent judge calls (default: from config)")
	cmd.Flags().BoolVar(&opts.mock, "mock", false, "Use the offline mock judge for every panel member")
	cmd.Flags().BoolVar(&opts.enableCache, "cache", false, "Cache judge responses (default: from config)")
	cmd.Flags().BoolVar(&opts.disableCache, "no-cache", false, "Disable judge response caching")
	cmd.Flags().IntVar(&opts.start, "start", 0, "First dataset row to judge (1-based)")
	cmd.Flags().IntVar(&opts.end, "end", 0, "Last dataset row to judge (inclusive)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Results file (default: <results>/judge_<run id>.json)")
	cmd.Flags().StringVar(&opts.junit, "junit", "", "Also write JUnit XML to this file")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "Write prometheus judge metrics in textfile format")
	cmd.Flags().Float64Var(&opts.minPassRate, "min-pass-rate", 0, "Fail with exit code 1 when a rubric's pass rate (0-1) is below this")
	cmd.Flags().BoolVar(&opts.interpret, "interpret", false, "Print a plain-language interpretation of the results")
	cmd.Flags().BoolVar(&opts.sessionLog, "session-log", false, "Write an NDJSON event log of the run to the results directory")
	cmd.MarkFlagsMutuallyExclusive("rubric", "module")
	cmd.MarkFlagsMutuallyExclusive("cache", "no-cache")

	return cmd
}

func judgeCommandE(cmd *cobra.Command, opts *judgeOptions, datasetPath string) error {
	ctx := cmd.Context()
	cfg, err := opts.loadConfig(ctx)
	if err != nil {
		return err
	}

	set, err := loadRubrics(cmp.Or(opts.rubricsFile, cfg.RubricsPath()))
	if err != nil {
		return err
	}
	rubricIDs, err := selectRubrics(set, opts.rubricIDs, opts.module)
	if err != nil {
		return err
	}

	samples, err := loadSamples(datasetPath, opts.start, opts.end)
	if err != nil {
		return err
	}

	members := selectPanel(cfg, set, opts)
	if len(members) == 0 {
		return errors.New("panel has no members")
	}

	var reg *prometheus.Registry
	pcfg := providers.Config{
		Mock:       opts.mock,
		Timeout:    cfg.JudgeTimeout(),
		Retry:      *cfg.Retry,
		CopilotCwd: cfg.Dir,
	}
	if opts.metricsFile != "" {
		reg = prometheus.NewRegistry()
		pcfg.Metrics = judge.NewMetrics(reg)
	}
	if useCache(cfg, opts) {
		c, err := cache.New(cfg.CacheDir())
		if err != nil {
			return err
		}
		pcfg.Cache = c
	}

	evaluators, members, err := providers.NewEvaluators(members, pcfg)
	if err != nil {
		if len(evaluators) == 0 {
			return err
		}
		// members without an adapter drop out of the panel
		slog.Warn("skipping panel members", "error", err)
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}

	runID := uuid.NewString()
	hookRunner := &hooks.Runner{
		Output: cmd.ErrOrStderr(),
		Dir:    cfg.Dir,
		Env:    []string{"PANELSCORE_RUN_ID=" + runID},
	}
	if err := hookRunner.Execute(ctx, hooks.BeforeRun, cfg.Hooks.BeforeRun); err != nil {
		return err
	}

	logger, err := openSessionLog(cfg, opts, runID)
	if err != nil {
		return err
	}
	defer logger.Close() //nolint:errcheck

	judgeNames := make([]string, len(evaluators))
	for i, e := range evaluators {
		judgeNames[i] = e.Name
	}
	logEvent(logger, session.EventRunStart, session.RunStartData(runID, filepath.Base(datasetPath), judgeNames, len(samples)*len(rubricIDs)))

	agg := panel.New(evaluators, panel.WithWorkers(cmp.Or(opts.workers, cfg.Workers)))
	spin := spinner.StartIfTerminal(cmd.ErrOrStderr(), "Judging...")
	agg.OnProgress(func(e panel.ProgressEvent) {
		if e.EventType == panel.EventPairComplete {
			spin.Update(fmt.Sprintf("Judging %d/%d", e.PairNum, e.TotalPairs))
			logEvent(logger, session.EventPairComplete,
				session.PairCompleteData(e.SampleID, e.RubricID, string(e.Verdict), e.PairNum, e.TotalPairs, e.DurationMs))
		}
	})

	slog.Debug("starting judge run", "run_id", runID, "pairs", len(samples)*len(rubricIDs), "judges", len(evaluators))
	start := time.Now()
	results, err := agg.AggregateBatch(ctx, set, rubricIDs, samples)
	spin.Stop()
	if err != nil {
		logEvent(logger, session.EventError, session.ErrorData(err.Error(), nil))
		return fmt.Errorf("judging %s: %w", datasetPath, err)
	}
	logRunComplete(logger, results, time.Since(start))

	run := &models.JudgeRun{
		RunID:     runID,
		Timestamp: time.Now().UTC(),
		Dataset:   filepath.Base(datasetPath),
		Panel:     members,
		Results:   results,
	}
	run.Summaries, run.InterJudge = panel.Summarize(results)
	if corpus := scoredCorpus(results); len(corpus) > 0 {
		report := bias.NewAuditor(cfg.Bias).Audit(corpus)
		run.Bias = &report
	}

	output, err := writeJudgeOutputs(cfg, opts, run)
	if err != nil {
		return err
	}
	if reg != nil {
		if err := prometheus.WriteToTextfile(opts.metricsFile, reg); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}
	hookRunner.Env = append(hookRunner.Env, "PANELSCORE_RESULTS="+output)
	if err := hookRunner.Execute(ctx, hooks.AfterRun, cfg.Hooks.AfterRun); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s: %d samples x %d rubrics, %d judges\n\n", runID, len(samples), len(rubricIDs), len(evaluators))
	if err := reporting.SummaryTable(out, run.Summaries); err != nil {
		return err
	}
	if run.Bias != nil {
		fmt.Fprintf(out, "\n%s\n", bias.Summary(*run.Bias))
	}
	if opts.interpret {
		fmt.Fprintln(out)
		fmt.Fprint(out, reporting.FormatJudgeReport(run))
	}

	if opts.minPassRate > 0 {
		for _, s := range run.Summaries {
			if s.PassRate() < opts.minPassRate {
				return &ThresholdError{Message: fmt.Sprintf("rubric %s: pass rate %.2f is below --min-pass-rate %.2f", s.RubricID, s.PassRate(), opts.minPassRate)}
			}
		}
	}
	return nil
}

// loadRubrics validates the rubric file against its schema, then decodes it.
func loadRubrics(path string) (*models.RubricSet, error) {
	errs, err := validation.ValidateRubricFile(path)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid rubric file %s:\n  %s", path, strings.Join(errs, "\n  "))
	}
	return models.LoadRubricSet(path)
}

// selectRubrics resolves --rubric / --module into rubric IDs. With neither,
// every rubric in the file is judged.
func selectRubrics(set *models.RubricSet, ids []string, module string) ([]string, error) {
	switch {
	case len(ids) > 0:
		for _, id := range ids {
			if set.Get(id) == nil {
				return nil, fmt.Errorf("unknown rubric %q", id)
			}
		}
		return ids, nil
	case module != "":
		var out []string
		for _, r := range set.ForModule(module) {
			out = append(out, r.ID)
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("no rubrics for module %q", module)
		}
		return out, nil
	default:
		ids := set.IDs()
		if len(ids) == 0 {
			return nil, errors.New("rubric file has no rubrics")
		}
		return ids, nil
	}
}

// loadSamples reads the dataset and decodes each row. Rows that cannot be
// decoded are skipped with a warning.
func loadSamples(path string, start, end int) ([]models.Sample, error) {
	records, err := dataset.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	if start > 0 || end > 0 {
		records, err = dataset.SelectRange(records, max(start, 1), cmp.Or(end, len(records)))
		if err != nil {
			return nil, err
		}
	}

	samples := make([]models.Sample, 0, len(records))
	for _, rec := range records {
		s, err := rec.Sample()
		if err != nil {
			slog.Warn("skipping dataset row", "file", path, "error", err)
			continue
		}
		samples = append(samples, s)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%s: no usable samples", path)
	}
	return samples, nil
}

func selectPanel(cfg *projectconfig.ProjectConfig, set *models.RubricSet, opts *judgeOptions) []models.PanelMember {
	if opts.single {
		return []models.PanelMember{{Model: cfg.Judge.Model, Provider: cfg.Judge.Provider}}
	}
	members := set.Panel()
	if len(cfg.Panel) > 0 {
		members = cfg.Panel
	}
	if opts.panelSize > 0 && opts.panelSize < len(members) {
		members = members[:opts.panelSize]
	}
	return members
}

func useCache(cfg *projectconfig.ProjectConfig, opts *judgeOptions) bool {
	switch {
	case opts.mock || opts.disableCache:
		return false
	case opts.enableCache:
		return true
	default:
		return cfg.CacheEnabled()
	}
}

func scoredCorpus(results []models.AggregatedVerdict) []models.ScoredSample {
	var corpus []models.ScoredSample
	for _, v := range results {
		if v.Overall != nil {
			corpus = append(corpus, v.ScoredSample())
		}
	}
	return corpus
}

func resultsDir(cfg *projectconfig.ProjectConfig) string {
	return utils.ResolvePath(cfg.Results, cfg.Dir)
}

func openSessionLog(cfg *projectconfig.ProjectConfig, opts *judgeOptions, runID string) (session.Logger, error) {
	if !opts.sessionLog {
		return session.NopLogger{}, nil
	}
	logger, err := session.NewJSONLogger(session.DefaultLogPath(resultsDir(cfg), runID))
	if err != nil {
		return nil, err
	}
	slog.Debug("writing session log", "path", logger.Path())
	return logger, nil
}

// logEvent records ev; a failing log never fails the run.
func logEvent(logger session.Logger, t session.EventType, data map[string]any) {
	if err := logger.Log(session.NewEvent(t, data)); err != nil {
		slog.Warn("writing session log", "error", err)
	}
}

func logRunComplete(logger session.Logger, results []models.AggregatedVerdict, elapsed time.Duration) {
	var passed, failed, review int
	for _, v := range results {
		for _, m := range v.MemberVerdicts {
			if m.IsError() {
				logEvent(logger, session.EventJudgeError, session.JudgeErrorData(m.Judge, v.SampleID, v.RubricID, m.Error))
			}
		}
		if v.FinalVerdict == models.VerdictPass {
			passed++
		} else {
			failed++
		}
		if v.NeedsReview {
			review++
		}
	}
	logEvent(logger, session.EventRunComplete, session.RunCompleteData(len(results), passed, failed, review, elapsed.Milliseconds()))
}

// writeJudgeOutputs writes the results file and optional JUnit report and
// returns the results path.
func writeJudgeOutputs(cfg *projectconfig.ProjectConfig, opts *judgeOptions, run *models.JudgeRun) (string, error) {
	output := opts.output
	if output == "" {
		output = filepath.Join(resultsDir(cfg), "judge_"+run.RunID+".json")
	}
	if err := writeOutputFile(output, run); err != nil {
		return "", err
	}
	slog.Debug("wrote judge results", "path", output)

	if opts.junit != "" {
		if dir := filepath.Dir(opts.junit); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return "", err
			}
		}
		if err := reporting.WriteJUnitXML(run, opts.junit); err != nil {
			return "", fmt.Errorf("writing JUnit XML: %w", err)
		}
	}
	return output, nil
}
