// Package handler exposes the search service over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/tracing"
)

type SearchExecutor interface {
	Execute(ctx context.Context, plan *parser.QueryPlan, limit int) (*executor.SearchResult, error)
	Generation() uint64
}

// Corpora is the read and rebuild surface of indexer.Engine.
type Corpora interface {
	Current() (*index.Corpus, uint64)
	Rebuild(ctx context.Context) error
	Stats() indexer.Stats
}

// Options carries the optional collaborators. Any of them may be nil.
type Options struct {
	Cache     *cache.QueryCache
	Collector *analytics.Collector
	Metrics   *metrics.Metrics
}

type Handler struct {
	executor     SearchExecutor
	corpora      Corpora
	cache        *cache.QueryCache
	collector    *analytics.Collector
	metrics      *metrics.Metrics
	defaultLimit int
	maxResults   int
	logger       *slog.Logger
}

func New(exec SearchExecutor, corpora Corpora, defaultLimit, maxResults int, opts Options) *Handler {
	return &Handler{
		executor:     exec,
		corpora:      corpora,
		cache:        opts.Cache,
		collector:    opts.Collector,
		metrics:      opts.Metrics,
		defaultLimit: defaultLimit,
		maxResults:   maxResults,
		logger:       slog.Default().With("component", "search-handler"),
	}
}

// Register mounts every search-service route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/idf", h.IDF)
	mux.HandleFunc("GET /api/v1/documents", h.Documents)
	mux.HandleFunc("GET /api/v1/vocabulary", h.Vocabulary)
	mux.HandleFunc("POST /api/v1/reload", h.Reload)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, span := tracing.StartSpan(r.Context(), "search", middleware.GetRequestID(r.Context()))
	log := logger.FromContext(ctx)
	defer func() {
		span.End()
		span.Log(log)
	}()

	query, limit, err := h.searchParams(r)
	if err != nil {
		h.fail(w, err, "invalid request")
		return
	}

	plan := parser.Parse(query)
	span.SetAttr("terms", len(plan.Terms))
	if plan.Empty() {
		h.writeJSON(w, http.StatusOK, &executor.SearchResult{
			Query:      query,
			Terms:      []string{},
			Results:    []ranker.ScoredDoc{},
			TermStats:  map[string]int{},
			Generation: h.executor.Generation(),
		})
		return
	}

	var (
		result   *executor.SearchResult
		cacheHit bool
	)
	if h.cache != nil {
		result, cacheHit, err = h.cache.GetOrCompute(ctx, plan, limit, h.executor.Generation(), func(ctx context.Context) (*executor.SearchResult, error) {
			return h.executor.Execute(ctx, plan, limit)
		})
	} else {
		result, err = h.executor.Execute(ctx, plan, limit)
	}
	if err != nil {
		log.Error("search execution failed", "query", query, "error", err)
		h.observe("error", cacheHit, start, 0)
		status := apperrors.HTTPStatusCode(err)
		if errors.Is(err, context.Canceled) {
			status = http.StatusServiceUnavailable
		}
		h.writeError(w, status, "search failed")
		return
	}

	latency := time.Since(start)
	span.SetAttr("cache_hit", cacheHit)
	resultType := "hit"
	if result.TotalHits == 0 {
		resultType = "zero_result"
	}
	h.observe(resultType, cacheHit, start, len(result.Results))

	log.Info("search completed",
		"query", query,
		"total_hits", result.TotalHits,
		"returned", len(result.Results),
		"cache_hit", cacheHit,
		"generation", result.Generation,
		"latency_ms", latency.Milliseconds(),
	)
	if h.collector != nil {
		eventType := analytics.EventCacheMiss
		switch {
		case result.TotalHits == 0:
			eventType = analytics.EventZeroResult
		case cacheHit:
			eventType = analytics.EventCacheHit
		}
		h.collector.TrackSearch(analytics.SearchEvent{
			Type:       eventType,
			Query:      query,
			Terms:      plan.Terms,
			TotalHits:  result.TotalHits,
			Returned:   len(result.Results),
			LatencyMs:  latency.Milliseconds(),
			CacheHit:   cacheHit,
			Generation: result.Generation,
			Timestamp:  time.Now().UTC(),
			RequestID:  middleware.GetRequestID(ctx),
		})
	}

	h.writeJSON(w, http.StatusOK, result)
}

// searchParams reads q and limit. limit defaults to defaultLimit and is
// clamped to maxResults.
func (h *Handler) searchParams(r *http.Request) (string, int, error) {
	query := r.URL.Query().Get("q")
	if query == "" {
		return "", 0, apperrors.Invalidf("query parameter 'q' is required")
	}
	limit := h.defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			return "", 0, apperrors.Invalidf("limit must be a positive integer")
		}
		limit = min(parsed, h.maxResults)
	}
	return query, limit, nil
}

func (h *Handler) observe(resultType string, cacheHit bool, start time.Time, returned int) {
	if h.metrics == nil {
		return
	}
	cacheStatus := "miss"
	if cacheHit {
		cacheStatus = "hit"
	}
	h.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	h.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(time.Since(start).Seconds())
	if resultType != "error" {
		h.metrics.SearchResultsCount.Observe(float64(returned))
	}
}

type idfResponse struct {
	Term       string  `json:"term"`
	Normalized string  `json:"normalized"`
	DocFreq    int     `json:"doc_freq"`
	IDF        float64 `json:"idf"`
	Documents  int     `json:"documents"`
	Generation uint64  `json:"generation"`
}

// IDF serves GET /api/v1/idf?term=. The term is normalized first; a term
// that normalizes to nothing has idf 0.
func (h *Handler) IDF(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("term")
	if term == "" {
		h.fail(w, apperrors.Invalidf("query parameter 'term' is required"), "invalid request")
		return
	}
	corpus, gen := h.corpora.Current()
	normalized := tokenizer.Normalize(term)
	h.writeJSON(w, http.StatusOK, idfResponse{
		Term:       term,
		Normalized: normalized,
		DocFreq:    corpus.DocFreq(normalized),
		IDF:        corpus.IDF(normalized),
		Documents:  corpus.DocCount(),
		Generation: gen,
	})
}

type documentsResponse struct {
	Count      int              `json:"count"`
	Generation uint64           `json:"generation"`
	Documents  []index.DocStats `json:"documents"`
}

func (h *Handler) Documents(w http.ResponseWriter, r *http.Request) {
	corpus, gen := h.corpora.Current()
	h.writeJSON(w, http.StatusOK, documentsResponse{
		Count:      corpus.DocCount(),
		Generation: gen,
		Documents:  corpus.Documents(),
	})
}

type vocabularyResponse struct {
	Count      int               `json:"count"`
	Generation uint64            `json:"generation"`
	Terms      []index.TermEntry `json:"terms"`
}

func (h *Handler) Vocabulary(w http.ResponseWriter, r *http.Request) {
	corpus, gen := h.corpora.Current()
	terms := corpus.Snapshot()
	h.writeJSON(w, http.StatusOK, vocabularyResponse{
		Count:      len(terms),
		Generation: gen,
		Terms:      terms,
	})
}

// Reload serves POST /api/v1/reload. A failed rebuild leaves the previous
// corpus serving and reports the failure.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.corpora.Rebuild(ctx); err != nil {
		logger.FromContext(ctx).Error("manual reload failed", "error", err)
		h.writeJSON(w, apperrors.HTTPStatusCode(err), map[string]any{
			"error": "reload failed",
			"cause": err.Error(),
			"stats": h.corpora.Stats(),
		})
		return
	}
	if h.cache != nil {
		if err := h.cache.Invalidate(ctx); err != nil {
			h.logger.Warn("cache invalidation after reload failed", "error", err)
		}
	}
	h.writeJSON(w, http.StatusOK, h.corpora.Stats())
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	h.writeJSON(w, http.StatusOK, h.cache.Stats())
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// fail answers with err's status and its public message, or fallback.
func (h *Handler) fail(w http.ResponseWriter, err error, fallback string) {
	h.writeError(w, apperrors.HTTPStatusCode(err), apperrors.PublicMessage(err, fallback))
}
