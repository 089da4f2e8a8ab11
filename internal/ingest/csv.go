// Package ingest loads the raw tabular datasets from CSV. Structurally
// invalid rows are skipped and counted, never silently dropped; all other
// parsing is per-record and non-fatal to the batch.
package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
)

// timestampLayouts are tried in order when parsing source timestamps.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// table is one fully materialized CSV file with a header index.
type table struct {
	columns map[string]int
	rows    [][]string
}

// readTable loads a whole CSV file. Row order is preserved: it is the
// stable total order tie-breaking rules depend on.
func readTable(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty csv file %s", path)
	}

	columns := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		columns[strings.TrimSpace(name)] = i
	}

	return &table{columns: columns, rows: records[1:]}, nil
}

// progress returns a bar sized for the table, labeled with what is loading.
func (t *table) progress(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(len(t.rows),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionClearOnFinish(),
	)
}

// field returns the named column of a row, empty when the column is absent
// or the row is short.
func (t *table) field(row []string, name string) string {
	idx, ok := t.columns[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseTimePtr(s string) *time.Time {
	if t, ok := parseTime(s); ok {
		return &t
	}
	return nil
}
