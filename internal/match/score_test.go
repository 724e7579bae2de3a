package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreBounds(t *testing.T) {
	pairs := [][2]string{
		{"example-show", "example-show"},
		{"example-show", "example-shore"},
		{"night", "nacht"},
		{"abc", "xyz"},
		{"a", "ab"},
		{"jersey-shore", "jersey-shore-family-vacation"},
	}

	for _, p := range pairs {
		ab := Score(p[0], p[1])
		ba := Score(p[1], p[0])
		assert.Equal(t, ab, ba, "symmetry %q %q", p[0], p[1])
		assert.GreaterOrEqual(t, ab, 0.0)
		assert.LessOrEqual(t, ab, 1.0)
	}
}

func TestScoreExtremes(t *testing.T) {
	assert.Equal(t, 1.0, Score("example-show", "example-show"))
	assert.Equal(t, 1.0, Score("x", "x"))
	assert.Equal(t, 0.0, Score("abc", "xyz"))
	assert.Equal(t, 0.0, Score("a", "b"))
	assert.Greater(t, Score("example-show", "example-shows"), 0.8)
}

func TestBestMatch(t *testing.T) {
	s := NewScorer(0.6, "https://site/shows/")

	t.Run("exact slug wins", func(t *testing.T) {
		best, score, ok := s.BestMatch("Example Show - Extra", []string{
			"https://site/shows/other-thing/",
			"https://site/shows/example-show/",
		})
		assert.True(t, ok)
		assert.Equal(t, "https://site/shows/example-show/", best)
		assert.Equal(t, 1.0, score)
	})

	t.Run("nothing above floor", func(t *testing.T) {
		best, score, ok := s.BestMatch("Example Show", []string{
			"https://site/shows/zzz/",
			"https://site/shows/qqq-www/",
		})
		assert.False(t, ok)
		assert.Empty(t, best)
		assert.Less(t, score, 0.6)
	})

	t.Run("empty candidates", func(t *testing.T) {
		_, score, ok := s.BestMatch("Example Show", nil)
		assert.False(t, ok)
		assert.Zero(t, score)
	})

	t.Run("first seen wins ties", func(t *testing.T) {
		best, _, ok := s.BestMatch("Example Show", []string{
			"https://site/shows/example-show/",
			"https://site/shows/example-show",
		})
		assert.True(t, ok)
		assert.Equal(t, "https://site/shows/example-show/", best)
	})

	t.Run("floor is strict", func(t *testing.T) {
		strict := NewScorer(0.999, "https://site/shows/")
		_, _, ok := strict.BestMatch("example show", []string{"https://site/shows/example-shows/"})
		assert.False(t, ok)
	})

	t.Run("score equal to floor is rejected", func(t *testing.T) {
		best, score, ok := s.BestMatch("abcdef", []string{"https://site/shows/abcdxy/"})
		assert.False(t, ok)
		assert.Empty(t, best)
		assert.Equal(t, 0.6, score)
	})
}

func TestScoreIsExactForSimpleFractions(t *testing.T) {
	assert.Equal(t, 0.6, Score("abcdef", "abcdxy"))
	assert.Equal(t, 0.5, Score("abc", "abx"))
}

func TestNewScorerDefaultFloor(t *testing.T) {
	assert.Equal(t, DefaultMinConfidence, NewScorer(0, "").MinConfidence)
	assert.Equal(t, 0.58, NewScorer(0.58, "").MinConfidence)
}
