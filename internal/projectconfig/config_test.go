package projectconfig

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/spboyer/panelscore/internal/hooks"
	"github.com/spboyer/panelscore/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadNoEnv(t *testing.T, dir string) (*ProjectConfig, error) {
	t.Helper()
	return load(context.Background(), dir, envconfig.MapLookuper(nil))
}

func TestNew_ReturnsAllDefaults(t *testing.T) {
	cfg := New()

	assertEqual(t, "Rubrics", "rubrics.yaml", cfg.Rubrics)
	assertEqual(t, "Results", "results/", cfg.Results)
	assertEqualInt(t, "Workers", 4, cfg.Workers)
	assertEqualInt(t, "Timeout", 60, cfg.Timeout)

	assertEqual(t, "Judge.Provider", "openai", cfg.Judge.Provider)
	assertEqual(t, "Judge.Model", "gpt-4o-mini", cfg.Judge.Model)
	if cfg.Panel != nil {
		t.Error("Panel should be nil by default")
	}

	assertBoolPtr(t, "Cache.Enabled", false, cfg.Cache.Enabled)
	assertEqual(t, "Cache.Dir", ".panelscore-cache", cfg.Cache.Dir)

	require.NotNil(t, cfg.Retry)
	assertEqualInt(t, "Retry.MaxRetries", 3, cfg.Retry.MaxRetries)

	assertEqual(t, "Bias.Lower", "critic", cfg.Bias.Lower)
	assertEqual(t, "Bias.Higher", "defender", cfg.Bias.Higher)
	assertEqual(t, "Bias.Fallback", "tie", cfg.Bias.Fallback)
}

func TestLoad_FullConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, `
rubrics: judges/rubrics.yaml
results: out/
workers: 8
timeout: 120
judge:
  provider: anthropic
  model: claude-3-haiku-20240307
panel:
  - model: gpt-4o-mini
    provider: openai
  - name: haiku
    model: claude-3-haiku-20240307
    provider: anthropic
    repeat: 2
cache:
  enabled: true
  dir: .my-cache
retry:
  max_retries: 5
  base_backoff: 2s
  max_backoff: 1m
  max_jitter: 100ms
bias:
  lower: loser
  higher: winner
  fallback: draw
modules:
  m02:
    positive_expected: OB
`)

	cfg, err := loadNoEnv(t, dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	assertEqual(t, "Rubrics", "judges/rubrics.yaml", cfg.Rubrics)
	assertEqual(t, "Results", "out/", cfg.Results)
	assertEqualInt(t, "Workers", 8, cfg.Workers)
	assertEqualInt(t, "Timeout", 120, cfg.Timeout)
	assertEqual(t, "Judge.Provider", "anthropic", cfg.Judge.Provider)
	assertEqual(t, "Judge.Model", "claude-3-haiku-20240307", cfg.Judge.Model)
	assert.Equal(t, []models.PanelMember{
		{Model: "gpt-4o-mini", Provider: "openai"},
		{Name: "haiku", Model: "claude-3-haiku-20240307", Provider: "anthropic", Repeat: 2},
	}, cfg.Panel)
	assertBoolPtr(t, "Cache.Enabled", true, cfg.Cache.Enabled)
	assertEqual(t, "Cache.Dir", ".my-cache", cfg.Cache.Dir)

	require.NotNil(t, cfg.Retry)
	assertEqualInt(t, "Retry.MaxRetries", 5, cfg.Retry.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.Retry.BaseBackoff)
	assert.Equal(t, time.Minute, cfg.Retry.MaxBackoff)
	assert.Equal(t, 100*time.Millisecond, cfg.Retry.MaxJitter)

	assertEqual(t, "Bias.Lower", "loser", cfg.Bias.Lower)
	assertEqual(t, "Bias.Higher", "winner", cfg.Bias.Higher)
	assertEqual(t, "Bias.Fallback", "draw", cfg.Bias.Fallback)

	assert.Equal(t, filepath.Join(dir, "judges", "rubrics.yaml"), cfg.RubricsPath())
	assert.Equal(t, filepath.Join(dir, ".my-cache"), cfg.CacheDir())
	assert.True(t, cfg.CacheEnabled())
	assert.Equal(t, 2*time.Minute, cfg.JudgeTimeout())
}

func TestLoad_PartialConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, `
judge:
  model: gpt-4o
bias:
  lower: loser
`)

	cfg, err := loadNoEnv(t, dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// Overridden
	assertEqual(t, "Judge.Model", "gpt-4o", cfg.Judge.Model)
	assertEqual(t, "Bias.Lower", "loser", cfg.Bias.Lower)

	// Defaults preserved
	assertEqual(t, "Judge.Provider", "openai", cfg.Judge.Provider)
	assertEqual(t, "Bias.Higher", "defender", cfg.Bias.Higher)
	assertEqualInt(t, "Workers", 4, cfg.Workers)
	assertEqualInt(t, "Retry.MaxRetries", 3, cfg.Retry.MaxRetries)
	assertBoolPtr(t, "Cache.Enabled", false, cfg.Cache.Enabled)
}

func TestLoad_Hooks(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, `
hooks:
  before_run:
    - command: make fixtures
      error_on_fail: true
  after_run:
    - command: ./upload.sh
      working_directory: scripts
      exit_codes: [0, 3]
`)

	cfg, err := loadNoEnv(t, dir)
	require.NoError(t, err)
	assert.Equal(t, hooks.HooksConfig{
		BeforeRun: []hooks.HookConfig{{Command: "make fixtures", ErrorOnFail: true}},
		AfterRun:  []hooks.HookConfig{{Command: "./upload.sh", WorkingDirectory: "scripts", ExitCodes: []int{0, 3}}},
	}, cfg.Hooks)
}

func TestLoad_MissingFile_ReturnsDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := loadNoEnv(t, dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	defaults := New()
	assertEqual(t, "Judge.Model", defaults.Judge.Model, cfg.Judge.Model)
	assertEqualInt(t, "Timeout", defaults.Timeout, cfg.Timeout)
	assertEqualInt(t, "Workers", defaults.Workers, cfg.Workers)
	assertEqual(t, "Dir", dir, cfg.Dir)
	assert.Equal(t, filepath.Join(dir, "rubrics.yaml"), cfg.RubricsPath())
}

func TestLoad_InvalidYAML_ReturnsError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, `
judge:
  model: [not valid yaml
    this is broken
`)

	_, err := loadNoEnv(t, dir)
	if err == nil {
		t.Fatal("Load() should return error for invalid YAML")
	}
}

func TestLoad_InvalidRetry(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, `
retry:
  max_retries: -1
`)

	_, err := loadNoEnv(t, dir)
	require.ErrorContains(t, err, "max retries cannot be negative")
}

func TestLoad_WalksUpDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, FileName, `
judge:
  model: found-it
`)

	child := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(child, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadNoEnv(t, child)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	assertEqual(t, "Judge.Model", "found-it", cfg.Judge.Model)
	assertEqual(t, "Dir", root, cfg.Dir)
	// Other defaults still populated
	assertEqual(t, "Judge.Provider", "openai", cfg.Judge.Provider)
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, `
workers: 8
judge:
  provider: anthropic
  model: claude-3-haiku-20240307
`)

	cfg, err := load(context.Background(), dir, envconfig.MapLookuper(map[string]string{
		"PANELSCORE_WORKERS":     "2",
		"PANELSCORE_JUDGE_MODEL": "claude-3-5-sonnet",
		"PANELSCORE_CACHE_DIR":   "/tmp/judge-cache",
	}))
	require.NoError(t, err)

	assertEqualInt(t, "Workers", 2, cfg.Workers)
	assertEqual(t, "Judge.Provider", "anthropic", cfg.Judge.Provider)
	assertEqual(t, "Judge.Model", "claude-3-5-sonnet", cfg.Judge.Model)
	assertEqual(t, "CacheDir()", "/tmp/judge-cache", cfg.CacheDir())
}

func TestLoad_InvalidEnv(t *testing.T) {
	_, err := load(context.Background(), t.TempDir(), envconfig.MapLookuper(map[string]string{
		"PANELSCORE_WORKERS": "many",
	}))
	require.ErrorContains(t, err, "reading environment")
}

func TestLoad_DotEnv(t *testing.T) {
	const key = "PANELSCORE_TEST_DOTENV_KEY"
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	dir := t.TempDir()
	writeFile(t, dir, FileName, "workers: 3\n")
	writeFile(t, dir, ".env", key+"=sk-test\n")

	_, err := loadNoEnv(t, dir)
	require.NoError(t, err)
	assert.Equal(t, "sk-test", os.Getenv(key))
}

func TestClassifierModules(t *testing.T) {
	cfg := New()
	cfg.Modules = map[string]map[string]any{
		"m02": {"positive_expected": "OB", "note": "explicit OB"},
		"m99": {
			"name":              "Custom check",
			"fields":            []any{"is_match", "match"},
			"null_is_negative":  true,
			"labels":            map[string]any{"tp": "Match"},
			"skip_none_expected": false,
		},
		"m12b": {"classes": []any{"R", "N"}},
	}

	modules, err := cfg.ClassifierModules()
	require.NoError(t, err)

	m02 := modules["m02"]
	assert.Equal(t, "OB", m02.PositiveExpected)
	assert.Equal(t, "explicit OB", m02.Note)
	assert.Equal(t, []string{"branding_scope_1"}, m02.Fields)
	assert.Equal(t, models.KindBinary, m02.Kind)

	m99 := modules["m99"]
	assert.Equal(t, "m99", m99.ID)
	assert.Equal(t, models.KindBinary, m99.Kind)
	assert.Equal(t, []string{"is_match", "match"}, m99.Fields)
	assert.True(t, m99.NullIsNegative)
	assert.Equal(t, "Match", m99.Labels.TP)

	assert.Equal(t, []string{"R", "N"}, modules["m12b"].Classes)

	// the untouched presets are still there
	assert.Contains(t, modules, "m16")
}

func TestClassifierModules_Errors(t *testing.T) {
	tests := []struct {
		name    string
		modules map[string]map[string]any
		wantErr string
	}{
		{"unknown key", map[string]map[string]any{"m02": {"positive": "OB"}}, `module "m02"`},
		{"no fields", map[string]map[string]any{"m99": {"name": "x"}}, "no fields configured"},
		{"bad kind", map[string]map[string]any{"m99": {"kind": "fuzzy", "fields": []any{"a"}}}, `unknown kind "fuzzy"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			cfg.Modules = tt.modules
			_, err := cfg.ClassifierModules()
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestBoolPointerFields(t *testing.T) {
	t.Run("defaults preserved when not set in YAML", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, FileName, `
workers: 2
`)
		cfg, err := loadNoEnv(t, dir)
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		assertBoolPtr(t, "Cache.Enabled", false, cfg.Cache.Enabled)
	})

	t.Run("explicitly false", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, FileName, `
cache:
  enabled: false
`)
		cfg, err := loadNoEnv(t, dir)
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		assertBoolPtr(t, "Cache.Enabled", false, cfg.Cache.Enabled)
	})

	t.Run("explicitly true", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, FileName, `
cache:
  enabled: true
`)
		cfg, err := loadNoEnv(t, dir)
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		assertBoolPtr(t, "Cache.Enabled", true, cfg.Cache.Enabled)
	})
}

// --- test helpers ---

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func assertEqual(t *testing.T, field, want, got string) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %q, want %q", field, got, want)
	}
}

func assertEqualInt(t *testing.T, field string, want, got int) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %d, want %d", field, got, want)
	}
}

func assertBoolPtr(t *testing.T, field string, want bool, got *bool) {
	t.Helper()
	if got == nil {
		t.Errorf("%s is nil, want *%v", field, want)
		return
	}
	if *got != want {
		t.Errorf("%s = %v, want %v", field, *got, want)
	}
}
