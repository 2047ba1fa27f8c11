package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
)

// Row represents a single CSV row with column name to value mapping.
// Columns missing from a short row are absent from the map.
type Row map[string]string

// LoadCSV reads a CSV file and returns rows as maps of column to value.
// The first row is treated as headers (column names). Rows with fewer
// cells than headers are kept; the missing columns are left out so the
// scorer can count them as skipped.
func LoadCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: parse %s: %w", path, err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("csv: %s is empty (no header row)", path)
	}

	headers := records[0]
	rows := make([]Row, 0, len(records)-1)

	for i, record := range records[1:] {
		if len(record) > len(headers) {
			return nil, fmt.Errorf("csv: row %d has %d columns, expected %d", i+2, len(record), len(headers))
		}
		row := make(Row, len(headers))
		for j, v := range record {
			row[headers[j]] = v
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// RecordsFromRows converts CSV rows into records. Line numbers are
// 1-based data rows.
func RecordsFromRows(rows []Row) []Record {
	out := make([]Record, 0, len(rows))
	for i, row := range rows {
		r := Record{Line: i + 1}
		r.Input, r.HasInput = row[ColumnInput]
		r.Expected, r.HasExpected = row[ColumnExpected]
		r.Output, r.HasOutput = row[ColumnOutput]
		r.SampleID = row[ColumnSampleID]
		r.Keyword = row[ColumnKeyword]
		r.ASIN = row[ColumnASIN]
		r.OutcomeLabel = row[ColumnOutcome]
		out = append(out, r)
	}
	return out
}
