package loader

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
)

// selectDocuments reads the corpus from a table shaped like:
//
//	CREATE TABLE documents (
//	    id         BIGSERIAL PRIMARY KEY,
//	    identifier TEXT NOT NULL UNIQUE,
//	    content    TEXT NOT NULL
//	);
const selectDocuments = `SELECT identifier, content FROM documents ORDER BY id`

// PostgresSource loads documents from PostgreSQL in primary-key order.
type PostgresSource struct {
	db *sql.DB
}

func NewPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

func (s *PostgresSource) Name() string {
	return "postgres:documents"
}

func (s *PostgresSource) Load(ctx context.Context) ([]index.Entry, error) {
	rows, err := s.db.QueryContext(ctx, selectDocuments)
	if err != nil {
		return nil, fmt.Errorf("%w: querying documents: %w", apperrors.ErrSourceUnavailable, err)
	}
	defer rows.Close()

	entries := make([]index.Entry, 0)
	for rows.Next() {
		var e index.Entry
		if err := rows.Scan(&e.ID, &e.Content); err != nil {
			return nil, fmt.Errorf("%w: scanning document row: %w", apperrors.ErrDocumentRead, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating documents: %w", apperrors.ErrSourceUnavailable, err)
	}
	return entries, nil
}
