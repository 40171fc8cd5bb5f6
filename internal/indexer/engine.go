// Package indexer owns the live corpus. The Engine loads documents from an
// ingestion.Source, builds an immutable index.Corpus, and swaps it in
// atomically so queries never observe a partially built index.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/ingestion/validator"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/resilience"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/tracing"
)

type snapshot struct {
	corpus     *index.Corpus
	generation uint64
	builtAt    time.Time
	skipped    []string
}

// Stats describes the live corpus.
type Stats struct {
	Source     string    `json:"source"`
	Documents  int       `json:"documents"`
	Terms      int       `json:"terms"`
	Generation uint64    `json:"generation"`
	BuiltAt    time.Time `json:"built_at"`
	Skipped    []string  `json:"skipped,omitempty"`
	LastError  string    `json:"last_error,omitempty"`
}

// RebuildReport is passed to rebuild hooks after every attempt.
type RebuildReport struct {
	Generation uint64
	Documents  int
	Terms      int
	Skipped    int
	Duration   time.Duration
	Err        error
}

type Engine struct {
	cfg     config.IndexerConfig
	source  ingestion.Source
	metrics *metrics.Metrics
	logger  *slog.Logger

	current   atomic.Pointer[snapshot]
	rebuildMu sync.Mutex

	mu      sync.RWMutex
	lastErr error
	hooks   []func(RebuildReport)
}

// NewEngine creates an Engine serving an empty corpus at generation 0. m may
// be nil.
func NewEngine(cfg config.IndexerConfig, src ingestion.Source, m *metrics.Metrics) *Engine {
	e := &Engine{
		cfg:     cfg,
		source:  src,
		metrics: m,
		logger:  slog.Default().With("component", "indexer", "source", src.Name()),
	}
	e.current.Store(&snapshot{corpus: index.Build(nil)})
	return e
}

// OnRebuild registers fn to run after each rebuild attempt, successful or
// not. Hooks run synchronously on the rebuilding goroutine.
func (e *Engine) OnRebuild(fn func(RebuildReport)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hooks = append(e.hooks, fn)
}

// Rebuild loads every document from the source and replaces the live corpus.
// Concurrent calls are serialized. On any failure the previous corpus keeps
// serving and the error is returned.
func (e *Engine) Rebuild(ctx context.Context) error {
	e.rebuildMu.Lock()
	defer e.rebuildMu.Unlock()

	ctx, span := tracing.StartSpan(ctx, "corpus-rebuild", uuid.NewString())
	defer func() {
		span.End()
		span.Log(e.logger)
	}()

	start := time.Now()
	corpus, skipped, err := e.build(ctx)
	elapsed := time.Since(start)

	report := RebuildReport{Duration: elapsed, Err: err}
	if err != nil {
		span.SetAttr("error", err.Error())
		e.setLastErr(err)
		e.observe("failure", elapsed)
		e.logger.Error("corpus rebuild failed",
			"error", err,
			"duration_ms", elapsed.Milliseconds(),
			"generation", e.Generation(),
		)
		e.notify(report)
		return err
	}

	prev := e.current.Load()
	next := &snapshot{
		corpus:     corpus,
		generation: prev.generation + 1,
		builtAt:    time.Now(),
		skipped:    skipped,
	}
	e.current.Store(next)
	span.SetAttr("generation", next.generation)
	e.setLastErr(nil)
	e.observe("success", elapsed)
	if e.metrics != nil {
		e.metrics.CorpusDocuments.Set(float64(corpus.DocCount()))
		e.metrics.CorpusTerms.Set(float64(corpus.TermCount()))
		e.metrics.CorpusGeneration.Set(float64(next.generation))
	}
	e.logger.Info("corpus rebuilt",
		"generation", next.generation,
		"documents", corpus.DocCount(),
		"terms", corpus.TermCount(),
		"skipped", len(skipped),
		"duration_ms", elapsed.Milliseconds(),
	)

	report.Skipped = len(skipped)
	report.Generation = next.generation
	report.Documents = corpus.DocCount()
	report.Terms = corpus.TermCount()
	e.notify(report)
	return nil
}

func (e *Engine) build(ctx context.Context) (*index.Corpus, []string, error) {
	loadCtx, loadSpan := tracing.StartChildSpan(ctx, "load")
	var entries []index.Entry
	retryCfg := resilience.RetryConfig{
		MaxAttempts: e.cfg.LoadAttempts,
		Retryable:   retryable,
	}
	attempts := 0
	err := resilience.Retry(loadCtx, "corpus-load", retryCfg, func() error {
		attempts++
		var loaded []index.Entry
		err := resilience.WithTimeout(loadCtx, e.cfg.LoadTimeout, "corpus-load", func(ctx context.Context) error {
			var err error
			loaded, err = e.source.Load(ctx)
			return err
		})
		if err != nil {
			return err
		}
		entries = loaded
		return nil
	})
	loadSpan.SetAttr("attempts", attempts)
	loadSpan.SetAttr("documents", len(entries))
	loadSpan.End()
	if err != nil {
		return nil, nil, fmt.Errorf("loading from %s: %w", e.source.Name(), err)
	}
	if err := validator.ValidateEntries(entries); err != nil {
		return nil, nil, fmt.Errorf("validating documents from %s: %w", e.source.Name(), err)
	}
	entries, skipped := validator.DropOversized(entries, e.cfg.MaxDocumentBytes)
	for _, id := range skipped {
		e.logger.Warn("document skipped, over size limit",
			"doc_id", id,
			"max_bytes", e.cfg.MaxDocumentBytes,
		)
	}
	_, buildSpan := tracing.StartChildSpan(ctx, "index")
	corpus := index.Build(entries)
	buildSpan.SetAttr("terms", corpus.TermCount())
	buildSpan.SetAttr("skipped", len(skipped))
	buildSpan.End()
	return corpus, skipped, nil
}

// Read and validation failures will not go away on their own.
func retryable(err error) bool {
	return !errors.Is(err, apperrors.ErrDocumentRead) &&
		!errors.Is(err, apperrors.ErrInvalidInput) &&
		!errors.Is(err, context.Canceled)
}

func (e *Engine) observe(status string, elapsed time.Duration) {
	if e.metrics == nil {
		return
	}
	e.metrics.CorpusRebuildsTotal.WithLabelValues(status).Inc()
	e.metrics.CorpusRebuildSeconds.Observe(elapsed.Seconds())
}

func (e *Engine) setLastErr(err error) {
	e.mu.Lock()
	e.lastErr = err
	e.mu.Unlock()
}

func (e *Engine) notify(report RebuildReport) {
	e.mu.RLock()
	hooks := make([]func(RebuildReport), len(e.hooks))
	copy(hooks, e.hooks)
	e.mu.RUnlock()
	for _, fn := range hooks {
		fn(report)
	}
}

// Corpus returns the live corpus. Callers should fetch it once per query and
// use that value throughout.
func (e *Engine) Corpus() *index.Corpus {
	return e.current.Load().corpus
}

// Current returns the live corpus together with its generation.
func (e *Engine) Current() (*index.Corpus, uint64) {
	s := e.current.Load()
	return s.corpus, s.generation
}

func (e *Engine) Generation() uint64 {
	return e.current.Load().generation
}

// Ready reports whether at least one rebuild has succeeded.
func (e *Engine) Ready() bool {
	return e.Generation() > 0
}

func (e *Engine) Stats() Stats {
	s := e.current.Load()
	stats := Stats{
		Source:     e.source.Name(),
		Documents:  s.corpus.DocCount(),
		Terms:      s.corpus.TermCount(),
		Generation: s.generation,
		BuiltAt:    s.builtAt,
		Skipped:    s.skipped,
	}
	e.mu.RLock()
	if e.lastErr != nil {
		stats.LastError = e.lastErr.Error()
	}
	e.mu.RUnlock()
	return stats
}

// HealthCheck reports down until the first corpus is built and degraded when
// the most recent rebuild failed.
func (e *Engine) HealthCheck(ctx context.Context) health.ComponentHealth {
	stats := e.Stats()
	switch {
	case stats.Generation == 0:
		return health.ComponentHealth{Status: health.StatusDown, Message: "corpus not built"}
	case stats.LastError != "":
		return health.ComponentHealth{
			Status:  health.StatusDegraded,
			Message: fmt.Sprintf("serving generation %d; last rebuild failed: %s", stats.Generation, stats.LastError),
		}
	default:
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("generation %d, %d documents", stats.Generation, stats.Documents),
		}
	}
}

// StartReloadLoop rebuilds the corpus every ReloadInterval until ctx is
// cancelled. It does nothing when the interval is zero.
func (e *Engine) StartReloadLoop(ctx context.Context) {
	if e.cfg.ReloadInterval <= 0 {
		return
	}
	ticker := time.NewTicker(e.cfg.ReloadInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				e.logger.Info("reload loop stopping")
				return
			case <-ticker.C:
				// Failures are logged inside Rebuild; the old corpus stays live.
				_ = e.Rebuild(ctx)
			}
		}
	}()
	e.logger.Info("reload loop started", "interval", e.cfg.ReloadInterval)
}
