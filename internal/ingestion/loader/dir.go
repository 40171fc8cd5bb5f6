// Package loader implements ingestion.Source for the places documents live:
// a flat directory of text files and a PostgreSQL documents table.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
)

// DefaultExtension is the file suffix indexed when none is configured.
const DefaultExtension = ".txt"

// DirSource reads every file in a single directory whose name ends with the
// configured extension. Subdirectories are not descended into. Entries are
// returned in file-name order and identified by their joined path.
type DirSource struct {
	dir         string
	extension   string
	concurrency int
	logger      *slog.Logger
}

// NewDirSource creates a DirSource. An empty extension means ".txt" and a
// non-positive concurrency reads files one at a time.
func NewDirSource(dir, extension string, concurrency int) *DirSource {
	if extension == "" {
		extension = DefaultExtension
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &DirSource{
		dir:         dir,
		extension:   extension,
		concurrency: concurrency,
		logger:      slog.Default().With("component", "dir-source", "dir", dir),
	}
}

func (s *DirSource) Name() string {
	return "directory:" + s.dir
}

// Load lists the directory and reads matching files concurrently. Any file
// that cannot be read or is not valid UTF-8 fails the whole load, so a
// corpus is never built from a partial listing.
func (s *DirSource) Load(ctx context.Context) ([]index.Entry, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: reading directory %s: %w", apperrors.ErrSourceUnavailable, s.dir, err)
	}
	paths := make([]string, 0, len(dirEntries))
	for _, entry := range dirEntries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), s.extension) {
			continue
		}
		paths = append(paths, filepath.Join(s.dir, entry.Name()))
	}

	entries := make([]index.Entry, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			content, err := readText(path)
			if err != nil {
				return err
			}
			entries[i] = index.Entry{ID: path, Content: content}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	s.logger.Debug("directory loaded",
		"files", len(entries),
		"skipped", len(dirEntries)-len(entries),
	)
	return entries, nil
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperrors.ErrDocumentRead, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8", apperrors.ErrDocumentRead, path)
	}
	return string(data), nil
}
