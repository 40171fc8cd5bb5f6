package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/parser"
)

func TestParse(t *testing.T) {
	tests := map[string]struct {
		query string
		terms []string
	}{
		"simple":           {query: "love dogs", terms: []string{"love", "dogs"}},
		"mixed case":       {query: "Love DOGS!", terms: []string{"love", "dogs"}},
		"empty terms skip": {query: "love -- dogs ...", terms: []string{"love", "dogs"}},
		"duplicates kept":  {query: "dogs dogs", terms: []string{"dogs", "dogs"}},
		"boolean words":    {query: "dogs AND cats", terms: []string{"dogs", "and", "cats"}},
		"blank":            {query: "   ", terms: []string{}},
		"punctuation only": {query: "?!", terms: []string{}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			plan := parser.Parse(tc.query)
			assert.Equal(t, tc.terms, plan.Terms)
			assert.Equal(t, tc.query, plan.RawQuery)
			assert.Equal(t, len(tc.terms) == 0, plan.Empty())
		})
	}
}

func TestDistinct(t *testing.T) {
	plan := parser.Parse("b a b c a")
	assert.Equal(t, []string{"b", "a", "c"}, plan.Distinct())
}
