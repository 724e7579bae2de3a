package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"showlink/internal/models"
)

func TestPreloadAndLookup(t *testing.T) {
	c := New([]models.MatchEntry{
		{SearchTerm: "Example Show", BestMatch: "https://site/shows/example-show/"},
		{SearchTerm: "Example Show", BestMatch: "https://site/shows/duplicate/"},
		{SearchTerm: "", BestMatch: "https://site/shows/empty/"},
		{SearchTerm: "No URL", BestMatch: ""},
	})

	e, ok := c.Lookup("Example Show")
	assert.True(t, ok)
	assert.Equal(t, "https://site/shows/example-show/", e.BestMatch)

	_, ok = c.Lookup("No URL")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())
	assert.Empty(t, c.NewEntries())
}

func TestRecordThenLookup(t *testing.T) {
	c := New(nil)
	c.Record("Show", "https://site/shows/show/")

	e, ok := c.Lookup("Show")
	assert.True(t, ok)
	assert.Equal(t, models.MatchEntry{SearchTerm: "Show", BestMatch: "https://site/shows/show/"}, e)
	assert.Len(t, c.NewEntries(), 1)

	c.Record("Show", "https://site/shows/show/")
	assert.Len(t, c.NewEntries(), 1)
}

func TestLookupIsExact(t *testing.T) {
	c := New(nil)
	c.Record("Show Name", "u")

	_, ok := c.Lookup("show name")
	assert.False(t, ok)
	_, ok = c.Lookup("Show  Name")
	assert.False(t, ok)
}

func TestNotFoundExclusive(t *testing.T) {
	c := New(nil)

	c.MarkNotFound("Missing")
	assert.True(t, c.IsNotFound("Missing"))

	c.Record("Missing", "https://site/shows/missing/")
	assert.False(t, c.IsNotFound("Missing"))

	c.MarkNotFound("Missing")
	assert.False(t, c.IsNotFound("Missing"))
	_, ok := c.Lookup("Missing")
	assert.True(t, ok)
}

func TestConcurrentAccess(t *testing.T) {
	c := New(nil)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			term := fmt.Sprintf("term-%d", i%10)
			if i%2 == 0 {
				c.Record(term, "u-"+term)
			} else {
				c.MarkNotFound(term)
			}
			c.Lookup(term)
			c.IsNotFound(term)
		}()
	}
	wg.Wait()

	for i := range 10 {
		term := fmt.Sprintf("term-%d", i)
		_, matched := c.Lookup(term)
		assert.False(t, matched && c.IsNotFound(term), "term %s in both sets", term)
	}
}
