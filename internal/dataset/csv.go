package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spboyer/modeleval/internal/category"
	"github.com/spboyer/modeleval/internal/models"
)

// Row represents a single CSV row with column name to value mapping.
type Row map[string]string

// LoadCSV reads a CSV file and returns rows as maps of column to value.
// The first row is treated as headers; header names are trimmed and
// lower-cased.
func LoadCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	return ReadCSV(f, path)
}

// ReadCSV parses CSV from r. name is used in error messages.
func ReadCSV(r io.Reader, name string) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: parse %s: %w", name, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv: %s is empty (no header row)", name)
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(Row, len(headers))
		for j, h := range headers {
			row[h] = strings.TrimSpace(record[j])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// CorpusFromRows converts CSV rows with a "prompt" column and an optional
// "expected_category" column into a corpus. Blank prompts are skipped.
func CorpusFromRows(name string, rows []Row) (Corpus, error) {
	c := Corpus{Name: name}
	for i, row := range rows {
		text, ok := row["prompt"]
		if !ok {
			return Corpus{}, fmt.Errorf("%w: csv %s has no \"prompt\" column", models.ErrInvalidInput, name)
		}
		if text == "" {
			continue
		}
		cat := row["expected_category"]
		if cat != "" && !category.Known(cat) {
			return Corpus{}, fmt.Errorf("%w: csv %s row %d: unknown category %q", models.ErrInvalidInput, name, i+2, cat)
		}
		c.Prompts = append(c.Prompts, Prompt{Text: text, ExpectedCategory: cat})
	}
	return c, nil
}

func loadCSVCorpus(path string) (Corpus, error) {
	rows, err := LoadCSV(path)
	if err != nil {
		return Corpus{}, err
	}
	return CorpusFromRows(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), rows)
}
