package parser

import (
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/tokenizer"
)

// QueryPlan is a free-text query reduced to its normalized terms. Terms keep
// query order and duplicates; tokens that normalize to nothing are skipped.
type QueryPlan struct {
	Terms    []string
	RawQuery string
}

func Parse(query string) *QueryPlan {
	terms, _ := tokenizer.Terms(query)
	return &QueryPlan{
		Terms:    terms,
		RawQuery: query,
	}
}

// Distinct returns the plan's terms with duplicates removed, in first-seen
// order.
func (p *QueryPlan) Distinct() []string {
	seen := make(map[string]struct{}, len(p.Terms))
	out := make([]string, 0, len(p.Terms))
	for _, term := range p.Terms {
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		out = append(out, term)
	}
	return out
}

// Empty reports whether the query has no usable terms.
func (p *QueryPlan) Empty() bool {
	return len(p.Terms) == 0
}
