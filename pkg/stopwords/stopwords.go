// Package stopwords loads the stop-word lexicon that seeds the search
// query from a delimited file.
package stopwords

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Options control how the lexicon file is read.
type Options struct {
	// Column names the column holding the words. Requires HasHeader.
	// Empty selects the first column.
	Column string
	// HasHeader marks the first row as a header row.
	HasHeader bool
}

// Load reads one column of words from a .csv or .tsv file, in file
// order. Empty cells are skipped.
func Load(path string, opts Options) ([]string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".csv" && ext != ".tsv" {
		return nil, fmt.Errorf("%s: is an invalid file, provide a csv or tsv", path)
	}
	if opts.Column != "" && !opts.HasHeader {
		return nil, fmt.Errorf("column name %q given but the file has no header row", opts.Column)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open stop words file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	if ext == ".tsv" {
		r.Comma = '\t'
	}
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse stop words file: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("stop words file %s is empty", path)
	}

	column := 0
	if opts.HasHeader {
		header := records[0]
		records = records[1:]
		if opts.Column != "" {
			column = -1
			for i, name := range header {
				if name == opts.Column {
					column = i
					break
				}
			}
			if column < 0 {
				return nil, fmt.Errorf("invalid column name %q, please provide the correct entry", opts.Column)
			}
		}
	}

	var words []string
	for _, record := range records {
		if column >= len(record) {
			continue
		}
		word := strings.TrimSpace(record[column])
		if word != "" {
			words = append(words, word)
		}
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("no stop words found in %s", path)
	}

	return words, nil
}
