package analytics

import (
	"context"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/kafka"
)

// Publisher ships a batch of events downstream. *kafka.Producer implements
// it.
type Publisher interface {
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

// Recorder consumes events in process. *Aggregator implements it.
type Recorder interface {
	RecordSearch(SearchEvent)
	RecordReload(ReloadEvent)
}

// Collector fans events out to an in-process Recorder and, when a Publisher
// is set, to Kafka. Publishing happens on a background goroutine in batches
// of up to batchSize events or every flushInterval; events that do not fit in
// the buffer are dropped.
type Collector struct {
	recorder      Recorder
	publisher     Publisher
	eventCh       chan kafka.Event
	batchSize     int
	flushInterval time.Duration
	logger        *slog.Logger
	done          chan struct{}
}

// NewCollector creates a Collector. Either recorder or publisher may be nil.
func NewCollector(recorder Recorder, publisher Publisher, bufferSize, batchSize int, flushInterval time.Duration) *Collector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	if flushInterval <= 0 {
		flushInterval = 5 * time.Second
	}
	return &Collector{
		recorder:      recorder,
		publisher:     publisher,
		eventCh:       make(chan kafka.Event, bufferSize),
		batchSize:     batchSize,
		flushInterval: flushInterval,
		logger:        slog.Default().With("component", "analytics-collector"),
		done:          make(chan struct{}),
	}
}

// Start launches the publish loop. It returns immediately; call Close after
// cancelling ctx to wait for the final flush.
func (c *Collector) Start(ctx context.Context) {
	if c.publisher == nil {
		close(c.done)
		return
	}
	go c.run(ctx)
	c.logger.Info("analytics collector started",
		"buffer_size", cap(c.eventCh),
		"batch_size", c.batchSize,
		"flush_interval", c.flushInterval,
	)
}

func (c *Collector) TrackSearch(event SearchEvent) {
	if c.recorder != nil {
		c.recorder.RecordSearch(event)
	}
	c.enqueue(event)
}

func (c *Collector) TrackReload(event ReloadEvent) {
	if c.recorder != nil {
		c.recorder.RecordReload(event)
	}
	c.enqueue(event)
}

// Close waits for the publish loop to drain. It must follow cancellation of
// the context passed to Start.
func (c *Collector) Close() {
	<-c.done
}

func (c *Collector) enqueue(event kafka.Keyed) {
	if c.publisher == nil {
		return
	}
	select {
	case c.eventCh <- kafka.Event{Value: event}:
	default:
		c.logger.Warn("analytics event dropped (buffer full)")
	}
}

func (c *Collector) run(ctx context.Context) {
	defer close(c.done)
	ticker := time.NewTicker(c.flushInterval)
	defer ticker.Stop()

	batch := make([]kafka.Event, 0, c.batchSize)
	for {
		select {
		case event := <-c.eventCh:
			batch = append(batch, event)
			if len(batch) >= c.batchSize {
				batch = c.flush(ctx, batch)
			}
		case <-ticker.C:
			batch = c.flush(ctx, batch)
		case <-ctx.Done():
			c.drain(batch)
			return
		}
	}
}

// drain publishes whatever is buffered with a short deadline of its own.
func (c *Collector) drain(batch []kafka.Event) {
	for {
		select {
		case event := <-c.eventCh:
			batch = append(batch, event)
		default:
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			c.flush(flushCtx, batch)
			return
		}
	}
}

func (c *Collector) flush(ctx context.Context, batch []kafka.Event) []kafka.Event {
	if len(batch) == 0 {
		return batch
	}
	if err := c.publisher.PublishBatch(ctx, batch); err != nil {
		c.logger.Error("analytics batch publish failed",
			"batch_size", len(batch),
			"error", err,
		)
	} else {
		c.logger.Debug("analytics batch published", "events", len(batch))
	}
	return batch[:0]
}
