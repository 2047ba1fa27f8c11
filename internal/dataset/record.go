package dataset

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spboyer/panelscore/internal/models"
)

// Column names shared by CSV headers and JSONL keys.
const (
	ColumnInput    = "input"
	ColumnExpected = "expected"
	ColumnOutput   = "output"
	ColumnSampleID = "sample_id"
	ColumnKeyword  = "keyword"
	ColumnASIN     = "asin"
	ColumnOutcome  = "outcome_label"
)

// Record is one raw dataset row. Input, Expected and Output hold the
// undecoded JSON cell text so parse failures can be counted downstream.
type Record struct {
	Line         int
	SampleID     string
	Keyword      string
	ASIN         string
	OutcomeLabel string

	Input       string
	HasInput    bool
	Expected    string
	HasExpected bool
	Output      string
	HasOutput   bool

	// Malformed is set when the row itself could not be read (JSONL only).
	Malformed string
}

// ID returns the sample ID, falling back to the line number.
func (r Record) ID() string {
	if r.SampleID != "" {
		return r.SampleID
	}
	return "row-" + strconv.Itoa(r.Line)
}

// ParseError describes a row that could not be decoded.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Line, e.Reason)
}

// DecodeObject parses a JSON cell that must hold an object.
func DecodeObject(line int, column, cell string) (map[string]any, error) {
	var v any
	if err := json.Unmarshal([]byte(cell), &v); err != nil {
		return nil, &ParseError{Line: line, Reason: fmt.Sprintf("%s: malformed JSON: %v", column, err)}
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, &ParseError{Line: line, Reason: fmt.Sprintf("%s: expected a JSON object, got %T", column, v)}
	}
	return obj, nil
}

// Sample decodes the record into a Sample. Input may be any JSON value or
// plain text; expected and output must be present.
func (r Record) Sample() (models.Sample, error) {
	if r.Malformed != "" {
		return models.Sample{}, &ParseError{Line: r.Line, Reason: r.Malformed}
	}
	if !r.HasExpected || !r.HasOutput {
		return models.Sample{}, &ParseError{Line: r.Line, Reason: "missing expected or output column"}
	}
	s := models.Sample{
		SampleID:     r.ID(),
		Keyword:      r.Keyword,
		ASIN:         r.ASIN,
		OutcomeLabel: r.OutcomeLabel,
		Input:        decodeLoose(r.Input),
	}
	var err error
	if s.Expected, err = decodeCell(r.Line, ColumnExpected, r.Expected); err != nil {
		return models.Sample{}, err
	}
	if s.Actual, err = decodeCell(r.Line, ColumnOutput, r.Output); err != nil {
		return models.Sample{}, err
	}
	return s, nil
}

func decodeCell(line int, column, cell string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(cell), &v); err != nil {
		return nil, &ParseError{Line: line, Reason: fmt.Sprintf("%s: malformed JSON: %v", column, err)}
	}
	return v, nil
}

func decodeLoose(cell string) any {
	var v any
	if err := json.Unmarshal([]byte(cell), &v); err == nil {
		return v
	}
	return cell
}

// Load reads a dataset file, choosing the format by extension.
func Load(path string) ([]Record, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err := LoadCSV(path)
		if err != nil {
			return nil, err
		}
		return RecordsFromRows(rows), nil
	case ".jsonl", ".ndjson":
		return LoadJSONL(path)
	default:
		return nil, fmt.Errorf("dataset: unsupported file type %q", filepath.Ext(path))
	}
}

// SelectRange returns records in [start, end] (1-based, inclusive).
// end is clamped to the number of records.
func SelectRange(records []Record, start, end int) ([]Record, error) {
	if start < 1 {
		return nil, fmt.Errorf("dataset: range start must be >= 1, got %d", start)
	}
	if end < start {
		return nil, fmt.Errorf("dataset: range end (%d) must be >= start (%d)", end, start)
	}
	if end > len(records) {
		end = len(records)
	}
	if start > len(records) {
		return []Record{}, nil
	}
	return records[start-1 : end], nil
}
