// Package consumer turns corpus-reload events from Kafka into Engine
// rebuilds.
package consumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/resilience"
)

// Rebuilder is the part of indexer.Engine the consumer drives.
type Rebuilder interface {
	Rebuild(ctx context.Context) error
	Generation() uint64
}

// Invalidator drops cached query results after a successful rebuild.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// ReloadConsumer wraps a Kafka consumer subscribed to the reload topic.
type ReloadConsumer struct {
	consumer *kafka.Consumer
	logger   *slog.Logger
}

func New(kafkaConsumer *kafka.Consumer) *ReloadConsumer {
	return &ReloadConsumer{
		consumer: kafkaConsumer,
		logger:   slog.Default().With("component", "reload-consumer"),
	}
}

// Start blocks until ctx is cancelled.
func (rc *ReloadConsumer) Start(ctx context.Context) error {
	rc.logger.Info("reload consumer starting")
	return rc.consumer.Start(ctx)
}

// HandleReload returns a MessageHandler that rebuilds the corpus for every
// ReloadEvent, retrying a failed rebuild with backoff per retry. Undecodable
// messages are logged and dropped. A rebuild that still fails once retries run
// out is returned as an error; the consumer moves past it either way, and the
// previous corpus keeps serving until the next reload event or periodic
// rebuild. inv may be nil.
func HandleReload(engine Rebuilder, inv Invalidator, retry resilience.RetryConfig) kafka.MessageHandler {
	logger := slog.Default().With("component", "reload-consumer")
	if retry.Retryable == nil {
		retry.Retryable = func(err error) bool { return !errors.Is(err, context.Canceled) }
	}
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[ingestion.ReloadEvent](value)
		if err != nil {
			logger.Error("failed to decode reload event",
				"error", err,
				"key", string(key),
			)
			return nil
		}
		logger.Info("reload requested",
			"reason", event.Reason,
			"requested_by", event.RequestedBy,
			"requested_at", event.RequestedAt,
		)
		err = resilience.Retry(ctx, "corpus-reload", retry, func() error {
			return engine.Rebuild(ctx)
		})
		if err != nil {
			return fmt.Errorf("rebuilding corpus (%s): %w", event.Reason, err)
		}
		if inv != nil {
			if err := inv.Invalidate(ctx); err != nil {
				logger.Warn("cache invalidation after reload failed", "error", err)
			}
		}
		logger.Info("reload complete", "generation", engine.Generation())
		return nil
	}
}
