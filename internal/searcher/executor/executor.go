// Package executor runs parsed queries against the live corpus.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/tracing"
)

// SearchResult is the response for a single query. TermStats maps each
// distinct query term to its document frequency; TotalHits counts every
// matching document before the limit is applied.
type SearchResult struct {
	Query      string             `json:"query"`
	Terms      []string           `json:"terms"`
	TotalHits  int                `json:"total_hits"`
	Results    []ranker.ScoredDoc `json:"results"`
	TermStats  map[string]int     `json:"term_stats"`
	Generation uint64             `json:"generation"`
}

// CorpusSource hands out the live corpus with its generation.
// indexer.Engine implements it.
type CorpusSource interface {
	Current() (*index.Corpus, uint64)
}

type Executor struct {
	corpora CorpusSource
	logger  *slog.Logger
}

func New(corpora CorpusSource) *Executor {
	return &Executor{
		corpora: corpora,
		logger:  slog.Default().With("component", "query-executor"),
	}
}

// Generation returns the generation queries are currently served from.
func (e *Executor) Generation() uint64 {
	_, gen := e.corpora.Current()
	return gen
}

// Execute scores plan against one corpus snapshot. A rebuild that lands
// mid-query does not affect the result.
func (e *Executor) Execute(ctx context.Context, plan *parser.QueryPlan, limit int) (*SearchResult, error) {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrTimeout, err)
		}
		return nil, fmt.Errorf("query cancelled: %w", err)
	}

	_, span := tracing.StartChildSpan(ctx, "execute")
	defer span.End()

	corpus, gen := e.corpora.Current()
	span.SetAttr("generation", gen)
	result := &SearchResult{
		Query:      plan.RawQuery,
		Terms:      plan.Terms,
		Results:    []ranker.ScoredDoc{},
		TermStats:  make(map[string]int),
		Generation: gen,
	}
	if plan.Empty() || corpus.DocCount() == 0 {
		return result, nil
	}

	matched := make(map[int]struct{})
	for _, term := range plan.Distinct() {
		postings := corpus.Postings(term)
		result.TermStats[term] = len(postings)
		for _, doc := range postings {
			matched[doc] = struct{}{}
		}
	}
	result.TotalHits = len(matched)
	span.SetAttr("total_hits", result.TotalHits)
	if result.TotalHits == 0 {
		return result, nil
	}
	result.Results = ranker.Rank(corpus, plan.Terms, limit)

	e.logger.Debug("query executed",
		"terms", len(plan.Terms),
		"total_hits", result.TotalHits,
		"returned", len(result.Results),
		"generation", gen,
	)
	return result, nil
}
