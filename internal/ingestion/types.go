// Package ingestion defines where documents come from: the Source contract
// the indexer builds corpora from, and the Kafka event schema used to request
// a rebuild.
package ingestion

import (
	"context"
	"time"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/index"
)

// Source produces the full, ordered list of documents to index. Every call
// returns a complete snapshot; sources never stream partial updates.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]index.Entry, error)
}

// ReloadEvent is the Kafka message payload asking indexers to rebuild their
// corpus from the configured source.
type ReloadEvent struct {
	Reason      string    `json:"reason"`
	RequestedBy string    `json:"requested_by,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// PartitionKey sends every reload request to one partition, in order.
func (ReloadEvent) PartitionKey() string { return "reload" }
