package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"showlink/internal/match"
	"showlink/internal/models"
)

// ReadMatches reads a match store with item and url columns. Items are
// whitespace-collapsed so they compare equal to pipeline search terms.
func ReadMatches(path string) ([]models.MatchEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open matches: %w", err)
	}
	defer f.Close()

	return DecodeMatches(f)
}

// DecodeMatches parses match store rows.
func DecodeMatches(r io.Reader) ([]models.MatchEntry, error) {
	rows, header, err := readTable(r)
	if err != nil {
		return nil, err
	}

	item, hasItem := header["item"]
	url, hasURL := header["url"]
	if len(rows) > 0 && (!hasItem || !hasURL) {
		return nil, errors.New("matches file needs item and url columns")
	}

	entries := make([]models.MatchEntry, 0, len(rows))
	for _, row := range rows {
		term := match.SearchTerm(cell(row, item, hasItem))
		target := cell(row, url, hasURL)
		if term == "" || target == "" {
			continue
		}
		entries = append(entries, models.MatchEntry{SearchTerm: term, BestMatch: target})
	}
	return entries, nil
}

// AppendMatches appends entries to the match store at path, writing the
// item,url header when the file is new. Existing rows are never rewritten.
func AppendMatches(path string, entries []models.MatchEntry) error {
	if len(entries) == 0 {
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open matches: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat matches: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write([]string{"item", "url"}); err != nil {
			return fmt.Errorf("write matches header: %w", err)
		}
	}
	for _, e := range entries {
		if err := w.Write([]string{e.SearchTerm, e.BestMatch}); err != nil {
			return fmt.Errorf("write match %q: %w", e.SearchTerm, err)
		}
	}
	w.Flush()
	return w.Error()
}
