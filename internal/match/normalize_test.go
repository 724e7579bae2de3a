package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Example Show - Extra", "example-show"},
		{"Show: Name - Ep 2", "show-name"},
		{"show name", "show-name"},
		{"  Leading   and trailing  ", "leading-and-trailing"},
		{"RuPaul's Drag Race", "rupauls-drag-race"},
		{"Beavis & Butt-Head", "beavis-butt-head"},
		{"Pokémon", "pokemon"},
		{"A -- B", "a-b"},
		{"Tab\tSeparated\nName", "tab-separated-name"},
		{"---", ""},
		{"", ""},
		{"Two - Dashes - Here", "two"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Example Show - Extra",
		"The Challenge: USA",
		"Jersey Shore Family Vacation",
		"19 Kids and Counting",
		"-a--b-",
		"Ça c'est Paris",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNormalizeCaseAndWhitespaceInsensitive(t *testing.T) {
	assert.Equal(t, Normalize("show name"), Normalize("SHOW   NAME"))
	assert.Equal(t, Normalize("Show: Name - Ep 2"), Normalize("show name"))
}

func TestNormalizeCandidate(t *testing.T) {
	base := "https://site/shows/"

	assert.Equal(t, "example-show", NormalizeCandidate("https://site/shows/example-show/", base))
	assert.Equal(t, "example-show", NormalizeCandidate("HTTPS://SITE/SHOWS/Example-Show", base))
	assert.Equal(t, "https://other/x", NormalizeCandidate("https://other/x/", base))
}

func TestSearchTerm(t *testing.T) {
	assert.Equal(t, "Example Show - Extra", SearchTerm("  Example   Show -\tExtra "))
}
