// Package models defines typed errors for better error handling and context.
package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks a search term with no results past the minimum prefix
	ErrNotFound = errors.New("no match found")
	// ErrNoConfidentMatch marks a search that typed every character without a confident match
	ErrNoConfidentMatch = errors.New("no confident match")
	// ErrEpisodeNotFound marks a season page without a linked entry for the episode
	ErrEpisodeNotFound = errors.New("episode not found")
)

// NavigationError represents a page that failed to load or transition
type NavigationError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *NavigationError) Error() string {
	if e.Attempts > 0 {
		return fmt.Sprintf("navigation to %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
	}
	return fmt.Sprintf("navigation to %s failed: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// PageError represents an error or not-found page detected from its title or status
type PageError struct {
	URL   string
	Title string
}

func (e *PageError) Error() string {
	return fmt.Sprintf("error page at %s: %q", e.URL, e.Title)
}

// ElementNotFoundError represents expected DOM structure absent within the wait timeout
type ElementNotFoundError struct {
	Selector string
	URL      string
	Err      error
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("no %q on %s: %v", e.Selector, e.URL, e.Err)
}

func (e *ElementNotFoundError) Unwrap() error { return e.Err }

// TimeoutError represents a timeout error
type TimeoutError struct {
	Operation string
	Timeout   string
	Err       error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout during %s after %s: %v", e.Operation, e.Timeout, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// HTTPError represents an HTTP-related error
type HTTPError struct {
	StatusCode int
	URL        string
	Err        error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for URL %s: %v", e.StatusCode, e.URL, e.Err)
}

func (e *HTTPError) Unwrap() error { return e.Err }

// Terminal reports whether the status means the page does not exist or is broken
func (e *HTTPError) Terminal() bool {
	return e.StatusCode == 404 || e.StatusCode == 410 || e.StatusCode >= 500
}
