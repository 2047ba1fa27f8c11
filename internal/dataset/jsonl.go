package dataset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

const maxJSONLLine = 16 * 1024 * 1024

// LoadJSONL reads one JSON object per line. Lines that are not valid
// objects are returned as Malformed records rather than failing the load.
func LoadJSONL(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("jsonl: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	records, err := ReadJSONL(f)
	if err != nil {
		return nil, fmt.Errorf("jsonl: read %s: %w", path, err)
	}
	return records, nil
}

// ReadJSONL parses JSONL from r. Blank lines are ignored and do not count
// towards line numbers.
func ReadJSONL(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxJSONLLine)

	var out []Record
	line := 0
	for scanner.Scan() {
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		line++
		out = append(out, parseJSONLLine(line, text))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func parseJSONLLine(line int, text []byte) Record {
	rec := Record{Line: line}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(text, &fields); err != nil {
		rec.Malformed = fmt.Sprintf("malformed JSONL line: %v", err)
		// Keep the raw line as the input payload so duplicates are still detected.
		rec.Input, rec.HasInput = string(text), true
		return rec
	}

	rec.Input, rec.HasInput = cellText(fields[ColumnInput])
	rec.Expected, rec.HasExpected = cellText(fields[ColumnExpected])
	rec.Output, rec.HasOutput = cellText(fields[ColumnOutput])
	rec.SampleID, _ = stringField(fields[ColumnSampleID])
	rec.Keyword, _ = stringField(fields[ColumnKeyword])
	rec.ASIN, _ = stringField(fields[ColumnASIN])
	rec.OutcomeLabel, _ = stringField(fields[ColumnOutcome])
	return rec
}

// cellText turns a JSONL value into CSV-style cell text. A JSON string is
// unwrapped so that string-encoded JSON behaves like a CSV cell.
func cellText(raw json.RawMessage) (string, bool) {
	if raw == nil {
		return "", false
	}
	if s, ok := stringField(raw); ok {
		return s, true
	}
	return string(raw), true
}

func stringField(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
