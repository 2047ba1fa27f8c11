// Package projectconfig provides the ProjectConfig struct and loader for
// .panelscore.yaml project-level configuration files.
package projectconfig

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"github.com/spboyer/panelscore/internal/bias"
	"github.com/spboyer/panelscore/internal/hooks"
	"github.com/spboyer/panelscore/internal/judge"
	"github.com/spboyer/panelscore/internal/models"
	"github.com/spboyer/panelscore/internal/scoring"
	"github.com/spboyer/panelscore/internal/utils"
	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up from the working
// directory upwards.
const FileName = ".panelscore.yaml"

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultRubrics    = "rubrics.yaml"
	DefaultResultsDir = "results/"

	DefaultWorkers = 4
	DefaultTimeout = 60

	DefaultJudgeProvider = "openai"
	DefaultJudgeModel    = "gpt-4o-mini"

	DefaultCacheDir = ".panelscore-cache"

	maxWalkUp = 10
)

// JudgeConfig is the judge used when a single judge is requested.
type JudgeConfig struct {
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty"`
}

// CacheConfig holds judge response cache settings.
type CacheConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Dir     string `yaml:"dir,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .panelscore.yaml.
type ProjectConfig struct {
	Rubrics string `yaml:"rubrics,omitempty"`
	Results string `yaml:"results,omitempty"`
	Workers int    `yaml:"workers,omitempty"`
	// Timeout is the per judge call timeout in seconds.
	Timeout int         `yaml:"timeout,omitempty"`
	Judge   JudgeConfig `yaml:"judge,omitempty"`
	// Panel overrides the panel configured in the rubric file.
	Panel []models.PanelMember  `yaml:"panel,omitempty"`
	Cache CacheConfig           `yaml:"cache,omitempty"`
	Retry *judge.RetryConfig    `yaml:"retry,omitempty"`
	Bias  bias.OutcomeDirection `yaml:"bias,omitempty"`
	// Modules adds or overrides classifier modules. Keys are module ids and
	// values use the ClassifierConfig field names.
	Modules map[string]map[string]any `yaml:"modules,omitempty"`
	// Hooks run before and after each judge run.
	Hooks hooks.HooksConfig `yaml:"hooks,omitempty"`

	// Dir is the directory the config file was found in, or the start
	// directory when there is none. Relative paths resolve against it.
	Dir string `yaml:"-"`
}

// envOverrides are applied after the file is merged.
type envOverrides struct {
	Workers       int    `env:"PANELSCORE_WORKERS"`
	JudgeProvider string `env:"PANELSCORE_JUDGE_PROVIDER"`
	JudgeModel    string `env:"PANELSCORE_JUDGE_MODEL"`
	CacheDir      string `env:"PANELSCORE_CACHE_DIR"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	retry := judge.DefaultRetryConfig()
	return &ProjectConfig{
		Rubrics: DefaultRubrics,
		Results: DefaultResultsDir,
		Workers: DefaultWorkers,
		Timeout: DefaultTimeout,
		Judge: JudgeConfig{
			Provider: DefaultJudgeProvider,
			Model:    DefaultJudgeModel,
		},
		Cache: CacheConfig{
			Enabled: utils.Ptr(false),
			Dir:     DefaultCacheDir,
		},
		Retry: &retry,
		Bias:  bias.DefaultDirection(),
	}
}

// Load finds .panelscore.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults. A .env file
// next to the config is loaded into the process environment, then
// PANELSCORE_* variables override the merged values.
// If no config file is found, defaults are returned with a nil error.
func Load(ctx context.Context, startDir string) (*ProjectConfig, error) {
	return load(ctx, startDir, envconfig.OsLookuper())
}

func load(ctx context.Context, startDir string, lookuper envconfig.Lookuper) (*ProjectConfig, error) {
	cfg := New()

	data, dir, err := findConfigFile(startDir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if dir, err = filepath.Abs(startDir); err != nil {
			return nil, fmt.Errorf("resolving path %q: %w", startDir, err)
		}
	case err != nil:
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	default:
		var fileCfg ProjectConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", FileName, err)
		}
		mergeConfig(cfg, &fileCfg)
	}
	cfg.Dir = dir

	if err := loadDotEnv(filepath.Join(dir, ".env")); err != nil {
		return nil, err
	}

	var env envOverrides
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &env, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	applyEnv(cfg, &env)

	if cfg.Retry != nil {
		if err := cfg.Retry.Validate(); err != nil {
			return nil, fmt.Errorf("%s retry: %w", FileName, err)
		}
	}
	return cfg, nil
}

// findConfigFile walks up from dir looking for .panelscore.yaml (max 10
// levels) and returns its contents and directory. Returns os.ErrNotExist
// if no config file is found. Real I/O errors are propagated.
func findConfigFile(dir string) ([]byte, string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for range maxWalkUp {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, dir, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, "", os.ErrNotExist
}

// loadDotEnv loads API keys from path. Variables already set in the
// environment win. A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("Skipping .env", "path", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	slog.Debug("Loaded .env", "path", path)
	return nil
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	if src.Rubrics != "" {
		dst.Rubrics = src.Rubrics
	}
	if src.Results != "" {
		dst.Results = src.Results
	}
	if src.Workers != 0 {
		dst.Workers = src.Workers
	}
	if src.Timeout != 0 {
		dst.Timeout = src.Timeout
	}

	// Judge
	if src.Judge.Provider != "" {
		dst.Judge.Provider = src.Judge.Provider
	}
	if src.Judge.Model != "" {
		dst.Judge.Model = src.Judge.Model
	}
	if len(src.Panel) > 0 {
		dst.Panel = src.Panel
	}

	// Cache
	if src.Cache.Enabled != nil {
		dst.Cache.Enabled = src.Cache.Enabled
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}

	if src.Retry != nil {
		dst.Retry = src.Retry
	}

	// Bias
	if src.Bias.Lower != "" {
		dst.Bias.Lower = src.Bias.Lower
	}
	if src.Bias.Higher != "" {
		dst.Bias.Higher = src.Bias.Higher
	}
	if src.Bias.Fallback != "" {
		dst.Bias.Fallback = src.Bias.Fallback
	}

	if len(src.Modules) > 0 {
		dst.Modules = src.Modules
	}

	// Hooks
	if len(src.Hooks.BeforeRun) > 0 {
		dst.Hooks.BeforeRun = src.Hooks.BeforeRun
	}
	if len(src.Hooks.AfterRun) > 0 {
		dst.Hooks.AfterRun = src.Hooks.AfterRun
	}
}

func applyEnv(cfg *ProjectConfig, env *envOverrides) {
	if env.Workers > 0 {
		cfg.Workers = env.Workers
	}
	if env.JudgeProvider != "" {
		cfg.Judge.Provider = env.JudgeProvider
	}
	if env.JudgeModel != "" {
		cfg.Judge.Model = env.JudgeModel
	}
	if env.CacheDir != "" {
		cfg.Cache.Dir = env.CacheDir
	}
}

// RubricsPath is the rubric file resolved against the config directory.
func (c *ProjectConfig) RubricsPath() string {
	return utils.ResolvePath(c.Rubrics, c.Dir)
}

// CacheDir is the cache directory resolved against the config directory.
func (c *ProjectConfig) CacheDir() string {
	return utils.ResolvePath(c.Cache.Dir, c.Dir)
}

// CacheEnabled reports whether judge responses should be cached.
func (c *ProjectConfig) CacheEnabled() bool {
	return c.Cache.Enabled != nil && *c.Cache.Enabled
}

// JudgeTimeout is the per call timeout. Zero or negative disables it.
func (c *ProjectConfig) JudgeTimeout() time.Duration {
	return time.Duration(max(c.Timeout, 0)) * time.Second
}

// ClassifierModules returns the built-in modules with the project's
// module entries applied. An entry for a built-in id overrides only the
// keys it sets; list and map values replace the built-in ones whole.
// Unknown keys are an error.
func (c *ProjectConfig) ClassifierModules() (map[string]models.ClassifierConfig, error) {
	modules := scoring.DefaultModules()
	for id, raw := range c.Modules {
		mod, ok := modules[id]
		if !ok {
			mod = models.ClassifierConfig{Kind: models.KindBinary}
		}

		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:      &mod,
			ZeroFields:  true,
			ErrorUnused: true,
		})
		if err != nil {
			return nil, err
		}
		if err := dec.Decode(raw); err != nil {
			return nil, fmt.Errorf("module %q: %w", id, err)
		}

		mod.ID = id
		if err := mod.Validate(); err != nil {
			return nil, err
		}
		modules[id] = mod
	}
	return modules, nil
}
