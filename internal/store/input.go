// Package store reads and writes the delimited files the matcher works on.
package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"showlink/internal/models"
)

const utf8BOM = "\ufeff"

// ReadRecords reads every row of the input file at path.
func ReadRecords(path string) ([]models.SearchRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	return DecodeRecords(f)
}

// DecodeRecords parses input rows. Header names are matched case-insensitively;
// Show falls back to Title when the Show column is absent or empty.
func DecodeRecords(r io.Reader) ([]models.SearchRecord, error) {
	rows, header, err := readTable(r)
	if err != nil {
		return nil, err
	}

	show, hasShow := header["show"]
	title, hasTitle := header["title"]
	if !hasShow && !hasTitle {
		return nil, errors.New("input has neither a Show nor a Title column")
	}

	records := make([]models.SearchRecord, 0, len(rows))
	for _, row := range rows {
		rec := models.SearchRecord{
			Title:     cell(row, title, hasTitle),
			Show:      cell(row, show, hasShow),
			SourceURL: cell(row, header["url"], hasColumn(header, "url")),
			Season:    parseOptionalInt(cell(row, header["season"], hasColumn(header, "season"))),
			Episode:   parseOptionalInt(cell(row, header["episode"], hasColumn(header, "episode"))),
		}
		if rec.Show == "" {
			rec.Show = rec.Title
		}
		records = append(records, rec)
	}
	return records, nil
}

// readTable returns the data rows and a lowercase header name -> column index map.
func readTable(r io.Reader) ([][]string, map[string]int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	head, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, map[string]int{}, nil
		}
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	header := make(map[string]int, len(head))
	for i, name := range head {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		key := strings.ToLower(strings.TrimSpace(name))
		if _, dup := header[key]; !dup {
			header[key] = i
		}
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read rows: %w", err)
	}
	return rows, header, nil
}

func hasColumn(header map[string]int, name string) bool {
	_, ok := header[name]
	return ok
}

func cell(row []string, idx int, present bool) string {
	if !present || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseOptionalInt(s string) *int {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}
