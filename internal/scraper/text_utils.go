// Package scraper provides text processing utilities for page inspection.
package scraper

import (
	"strings"
)

// ContainsAny checks if a string contains any of the substrings (case-insensitive)
func ContainsAny(s string, substrings []string) bool {
	sLower := strings.ToLower(s)
	for _, substr := range substrings {
		if substr == "" {
			continue
		}
		if strings.Contains(sLower, strings.ToLower(substr)) {
			return true
		}
	}
	return false
}

// IsErrorTitle reports whether a page title carries one of the error markers.
// Markers are case-sensitive so show names like "The Terror" do not match "Error".
func IsErrorTitle(title string, markers []string) bool {
	for _, marker := range markers {
		if marker != "" && strings.Contains(title, marker) {
			return true
		}
	}
	return false
}

// LooksLikeCFBlock checks if HTML content indicates Cloudflare blocking
func LooksLikeCFBlock(html string) bool {
	return ContainsAny(html, CloudflarePatterns)
}
