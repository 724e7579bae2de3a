// Package cache records confirmed show matches and search terms known to have no match.
package cache

import (
	"slices"
	"sync"

	"showlink/internal/models"
)

// MatchCache maps search terms to catalog URLs for the duration of a run.
// Entries are never evicted. A term is never both matched and not-found.
// Safe for concurrent use.
type MatchCache struct {
	mu       sync.RWMutex
	matches  map[string]models.MatchEntry
	notFound map[string]struct{}
	added    []models.MatchEntry
}

// New returns a cache preloaded with entries. Preloaded entries are not
// reported by NewEntries.
func New(preload []models.MatchEntry) *MatchCache {
	c := &MatchCache{
		matches:  make(map[string]models.MatchEntry, len(preload)),
		notFound: make(map[string]struct{}),
	}
	for _, e := range preload {
		if e.SearchTerm == "" || e.BestMatch == "" {
			continue
		}
		if _, ok := c.matches[e.SearchTerm]; !ok {
			c.matches[e.SearchTerm] = e
		}
	}
	return c
}

// Lookup returns the entry recorded for term.
func (c *MatchCache) Lookup(term string) (models.MatchEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.matches[term]
	return e, ok
}

// Record stores term -> url. A later Record for the same term replaces the URL.
// Recording clears any not-found mark for term.
func (c *MatchCache) Record(term, url string) models.MatchEntry {
	e := models.MatchEntry{SearchTerm: term, BestMatch: url}

	c.mu.Lock()
	defer c.mu.Unlock()

	prev, existed := c.matches[term]
	c.matches[term] = e
	delete(c.notFound, term)
	if !existed || prev.BestMatch != url {
		c.added = append(c.added, e)
	}
	return e
}

// MarkNotFound records that term has no match. It is ignored when term already
// has a match.
func (c *MatchCache) MarkNotFound(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.matches[term]; ok {
		return
	}
	c.notFound[term] = struct{}{}
}

// IsNotFound reports whether term was marked not found.
func (c *MatchCache) IsNotFound(term string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.notFound[term]
	return ok
}

// NewEntries returns the entries recorded since New, in recording order.
func (c *MatchCache) NewEntries() []models.MatchEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.added)
}

// Len returns the number of matched terms.
func (c *MatchCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.matches)
}
