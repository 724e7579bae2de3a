// Package models defines the records flowing through the matcher.
package models

import (
	"strconv"
	"time"
)

// SearchRecord is one input row
type SearchRecord struct {
	Title     string `json:"title"`
	Show      string `json:"show"`
	Season    *int   `json:"season,omitempty"`
	Episode   *int   `json:"episode,omitempty"`
	SourceURL string `json:"sourceUrl"`
}

// HasEpisode reports whether both season and episode are present
func (r SearchRecord) HasEpisode() bool {
	return r.Season != nil && r.Episode != nil
}

// TargetKind says which resolution produced the target URL
type TargetKind string

const (
	TargetEpisode  TargetKind = "episode"
	TargetVideo    TargetKind = "video"
	TargetShow     TargetKind = "show"
	TargetFallback TargetKind = "fallback"
)

// OutputRecord is one output row
type OutputRecord struct {
	Title     string     `json:"title"`
	Show      string     `json:"show"`
	Season    *int       `json:"season,omitempty"`
	Episode   *int       `json:"episode,omitempty"`
	SourceURL string     `json:"sourceUrl"`
	TargetURL string     `json:"target"`
	Kind      TargetKind `json:"kind"`
}

// NewOutputRecord copies the input fields of rec
func NewOutputRecord(rec SearchRecord, target string, kind TargetKind) OutputRecord {
	return OutputRecord{
		Title:     rec.Title,
		Show:      rec.Show,
		Season:    rec.Season,
		Episode:   rec.Episode,
		SourceURL: rec.SourceURL,
		TargetURL: target,
		Kind:      kind,
	}
}

// MatchEntry is a confirmed search term to catalog URL association
type MatchEntry struct {
	SearchTerm string `json:"searchTerm"`
	BestMatch  string `json:"bestMatch"`
}

// Summary reports the outcome of a batch
type Summary struct {
	Total    int           `json:"total"`
	Episode  int           `json:"episode"`
	Video    int           `json:"video"`
	Show     int           `json:"show"`
	Fallback int           `json:"fallback"`
	Errors   int           `json:"errors"`
	Duration time.Duration `json:"duration"`
}

// Add counts one output record
func (s *Summary) Add(out OutputRecord) {
	s.Total++
	switch out.Kind {
	case TargetEpisode:
		s.Episode++
	case TargetVideo:
		s.Video++
	case TargetShow:
		s.Show++
	default:
		s.Fallback++
	}
}

// FormatInt renders an optional number, empty when absent
func FormatInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

// IntPtr returns a pointer to n
func IntPtr(n int) *int {
	return &n
}
