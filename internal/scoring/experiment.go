package scoring

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spboyer/panelscore/internal/models"
)

const (
	defaultPromptVersion = "v1"
	unknownModel         = "unknown"
	fallbackModel        = "gpt-4o-mini"
)

var (
	metaVersionPattern = regexp.MustCompile(`(?i)[_\s]v(\d+)[_\s]`)
	fileVersionPattern = regexp.MustCompile(`(?i)_v(\d+)_`)
	fileDatePattern    = regexp.MustCompile(`_(\d{6})_`)
)

// modelPatterns map file-name fragments to canonical model names. Order
// matters: more specific patterns come first.
var modelPatterns = []struct {
	re    *regexp.Regexp
	model string
}{
	{regexp.MustCompile(`(?i)gemini[-_]?2\.?0[-_]?flash`), "gemini-2.0-flash"},
	{regexp.MustCompile(`(?i)gemini20flash`), "gemini-2.0-flash"},
	{regexp.MustCompile(`(?i)gpt[-_]?4o[-_]?mini`), "gpt-4o-mini"},
	{regexp.MustCompile(`(?i)gpt[-_]?4o`), "gpt-4o"},
	{regexp.MustCompile(`(?i)gpt[-_]?5`), "gpt-5"},
}

type experimentMeta struct {
	Model          string `json:"model"`
	DatasetName    string `json:"dataset_name"`
	ExperimentName string `json:"experiment_name"`
}

// ExperimentInfoFor derives run identity for a results file from an
// optional "<name>.meta.json" sidecar, then from the file name itself.
func ExperimentInfoFor(path string) models.ExperimentInfo {
	info := models.ExperimentInfo{
		SourceFile:    filepath.Base(path),
		PromptVersion: defaultPromptVersion,
		Model:         unknownModel,
	}

	metaPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".meta.json"
	if data, err := os.ReadFile(metaPath); err == nil {
		var meta experimentMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			slog.Debug("ignoring unreadable meta file", "path", metaPath, "error", err)
		} else {
			if meta.Model != "" {
				info.Model = meta.Model
			}
			info.Dataset = meta.DatasetName
			if m := metaVersionPattern.FindStringSubmatch(meta.ExperimentName); m != nil {
				info.PromptVersion = "v" + m[1]
			}
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		slog.Debug("reading meta file", "path", metaPath, "error", err)
	}

	stem := strings.TrimSuffix(info.SourceFile, filepath.Ext(info.SourceFile))
	if info.PromptVersion == defaultPromptVersion {
		if m := fileVersionPattern.FindStringSubmatch(stem); m != nil {
			info.PromptVersion = "v" + m[1]
		}
	}
	if info.Model == unknownModel {
		info.Model = fallbackModel
		for _, p := range modelPatterns {
			if p.re.MatchString(stem) {
				info.Model = p.model
				break
			}
		}
	}
	if info.Dataset == "" {
		if m := fileDatePattern.FindStringSubmatch(stem); m != nil {
			info.Dataset = m[1]
		}
	}
	return info
}

// RunID builds an identifier like "m02_v1_gpt4omini".
func RunID(module string, info models.ExperimentInfo) string {
	short := strings.NewReplacer("-", "", ".", "", " ", "").Replace(info.Model)
	if len(short) > 10 {
		short = short[:10]
	}
	version := info.PromptVersion
	if version == "" {
		version = defaultPromptVersion
	}
	return module + "_" + version + "_" + short
}
