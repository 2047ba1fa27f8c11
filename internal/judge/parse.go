package judge

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spboyer/panelscore/internal/models"
)

var (
	verdictKeys   = []string{"label", "verdict"}
	scoreKeys     = []string{"overall", "score", "final_score"}
	dimensionKeys = []string{"scores", "dimension_scores"}
)

// Parsed is a judge response after normalization.
type Parsed struct {
	Verdict         models.Verdict
	Reasoning       string
	Score           *float64
	DimensionScores map[string]float64
}

// ParseResponse extracts the verdict, reasoning and scores from raw judge
// text. The JSON object may be wrapped in a code fence or surrounded by
// prose. A missing or unrecognized label is a FAIL.
func ParseResponse(text string) (Parsed, error) {
	body := extractJSON(text)
	if body == "" {
		return Parsed{}, fmt.Errorf("no JSON object in judge response %q", truncate(text, 80))
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return Parsed{}, fmt.Errorf("decoding judge response: %w", err)
	}

	p := Parsed{Verdict: models.VerdictFail}
	for _, k := range verdictKeys {
		if s, ok := raw[k].(string); ok {
			p.Verdict = models.ParseVerdict(s)
			break
		}
	}
	if s, ok := raw["reasoning"].(string); ok {
		p.Reasoning = s
	}
	for _, k := range scoreKeys {
		if f, ok := number(raw[k]); ok {
			p.Score = &f
			break
		}
	}
	for _, k := range dimensionKeys {
		dims, ok := raw[k].(map[string]any)
		if !ok {
			continue
		}
		for name, v := range dims {
			f, ok := number(v)
			if !ok {
				continue
			}
			if p.DimensionScores == nil {
				p.DimensionScores = map[string]float64{}
			}
			p.DimensionScores[name] = f
		}
		break
	}
	return p, nil
}

// extractJSON strips code fences and returns the outermost {...} span.
func extractJSON(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}

func number(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
