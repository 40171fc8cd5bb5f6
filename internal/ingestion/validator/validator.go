// Package validator checks loaded documents before they reach the index. It
// enforces unique non-empty identifiers and UTF-8 content with per-document
// error details, and filters out documents over an optional size ceiling.
package validator

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
)

// ValidationError holds per-document validation failure messages keyed by
// identifier (or entry position when the identifier is empty).
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s:%s", key, e.Fields[key]))
	}
	return strings.Join(parts, "; ")
}

// Unwrap lets callers match validation failures with errors.Is against
// apperrors.ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	return apperrors.ErrInvalidInput
}

// ValidateEntries checks every entry and returns a *ValidationError listing
// all problems found.
func ValidateEntries(entries []index.Entry) error {
	errs := make(map[string]string)
	seen := make(map[string]int, len(entries))
	for i, entry := range entries {
		if strings.TrimSpace(entry.ID) == "" {
			errs[fmt.Sprintf("entry[%d]", i)] = "identifier is required"
			continue
		}
		if first, dup := seen[entry.ID]; dup {
			errs[entry.ID] = fmt.Sprintf("duplicate identifier (entries %d and %d)", first, i)
			continue
		}
		seen[entry.ID] = i
		if !utf8.ValidString(entry.Content) {
			errs[entry.ID] = "content is not valid UTF-8"
		}
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

// DropOversized returns the entries whose content fits in maxBytes, in their
// original order, and the identifiers of those left out. maxBytes <= 0 keeps
// every entry.
func DropOversized(entries []index.Entry, maxBytes int) ([]index.Entry, []string) {
	if maxBytes <= 0 {
		return entries, nil
	}
	var dropped []string
	kept := make([]index.Entry, 0, len(entries))
	for _, entry := range entries {
		if len(entry.Content) > maxBytes {
			dropped = append(dropped, entry.ID)
			continue
		}
		kept = append(kept, entry)
	}
	return kept, dropped
}
