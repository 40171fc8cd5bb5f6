package validator_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/ingestion/validator"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
)

func TestValidateEntriesAccepts(t *testing.T) {
	entries := []index.Entry{
		{ID: "doc1", Content: "dogs are the greatest pets"},
		{ID: "doc2", Content: ""},
		{ID: "doc3", Content: "naïve café"},
	}
	assert.NoError(t, validator.ValidateEntries(entries))
	assert.NoError(t, validator.ValidateEntries(nil))
}

func TestValidateEntriesRejects(t *testing.T) {
	entries := []index.Entry{
		{ID: "", Content: "orphan"},
		{ID: "dup", Content: "one"},
		{ID: "dup", Content: "two"},
		{ID: "bin", Content: string([]byte{0xff, 0xfe, 'a'})},
		{ID: "big", Content: strings.Repeat("a", 1<<21)},
	}
	err := validator.ValidateEntries(entries)
	require.Error(t, err)

	var verr *validator.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 3)
	assert.Contains(t, verr.Fields["entry[0]"], "identifier")
	assert.Contains(t, verr.Fields["dup"], "duplicate")
	assert.Contains(t, verr.Fields["bin"], "UTF-8")
	assert.NotContains(t, verr.Fields, "big", "size is not a validation failure")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestValidationErrorMessageIsSorted(t *testing.T) {
	err := &validator.ValidationError{Fields: map[string]string{"b": "two", "a": "one"}}
	assert.Equal(t, "a:one; b:two", err.Error())
}

func TestDropOversized(t *testing.T) {
	entries := []index.Entry{
		{ID: "small", Content: "dogs"},
		{ID: "big", Content: strings.Repeat("a", 11)},
		{ID: "edge", Content: strings.Repeat("b", 10)},
		{ID: "huge", Content: strings.Repeat("c", 100)},
	}

	kept, dropped := validator.DropOversized(entries, 10)
	require.Len(t, kept, 2)
	assert.Equal(t, "small", kept[0].ID)
	assert.Equal(t, "edge", kept[1].ID)
	assert.Equal(t, []string{"big", "huge"}, dropped)

	kept, dropped = validator.DropOversized(entries, 0)
	assert.Equal(t, entries, kept)
	assert.Empty(t, dropped)
}
