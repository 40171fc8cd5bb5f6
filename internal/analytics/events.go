// Package analytics tracks search and corpus-rebuild activity. Events are
// aggregated in process for the /api/v1/analytics endpoint and, when Kafka is
// configured, published in batches to the analytics topic.
package analytics

import "time"

type EventType string

const (
	EventCacheHit     EventType = "cache_hit"
	EventCacheMiss    EventType = "cache_miss"
	EventZeroResult   EventType = "zero_result"
	EventCorpusReload EventType = "corpus_reload"
)

type SearchEvent struct {
	Type       EventType `json:"type"`
	Query      string    `json:"query"`
	Terms      []string  `json:"terms"`
	TotalHits  int       `json:"total_hits"`
	Returned   int       `json:"returned"`
	LatencyMs  int64     `json:"latency_ms"`
	CacheHit   bool      `json:"cache_hit"`
	Generation uint64    `json:"generation"`
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id"`
}

// ReloadEvent records one corpus rebuild attempt. Error is empty on success.
type ReloadEvent struct {
	Type       EventType `json:"type"`
	Generation uint64    `json:"generation"`
	Documents  int       `json:"documents"`
	Terms      int       `json:"terms"`
	DurationMs int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// PartitionKey keeps every event for one normalized query on one partition.
func (e SearchEvent) PartitionKey() string { return queryKey(e) }

func (e ReloadEvent) PartitionKey() string { return "reload" }
