// Package match turns noisy show titles into slugs and scores them against catalog URLs.
package match

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SubtitleDelimiter separates a show name from a trailing episode or subtitle fragment.
const SubtitleDelimiter = " - "

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	disallowedRegex = regexp.MustCompile(`[^a-z0-9 -]`)
	hyphenRunRegex  = regexp.MustCompile(`-+`)
)

// Normalize converts a raw show title into a slug.
//
// Only the part before the first SubtitleDelimiter is kept. Accents are folded,
// the result is lowercased, anything outside [a-z0-9 -] is dropped, whitespace
// runs become single hyphens and the slug is trimmed of hyphens.
func Normalize(title string) string {
	head, _, _ := strings.Cut(title, SubtitleDelimiter)

	slug := strings.ToLower(foldAccents(head))
	slug = whitespaceRegex.ReplaceAllString(slug, " ")
	slug = disallowedRegex.ReplaceAllString(slug, "")
	slug = whitespaceRegex.ReplaceAllString(slug, "-")
	slug = hyphenRunRegex.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// NormalizeCandidate reduces a catalog URL to the slug part after baseURL.
func NormalizeCandidate(candidate, baseURL string) string {
	c := strings.ToLower(strings.TrimSpace(candidate))
	c = strings.TrimPrefix(c, strings.ToLower(baseURL))
	return strings.TrimSuffix(c, "/")
}

// SearchTerm collapses whitespace runs in a show name to single spaces.
// It is the key used by the match cache.
func SearchTerm(show string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(show, " "))
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}
