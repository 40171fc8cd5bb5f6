package index

import (
	"sort"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/tokenizer"
)

// DocumentIndex is the term-frequency table of a single document. It is
// immutable once built.
type DocumentIndex struct {
	id         string
	termFreq   map[string]float64
	tokenCount int
}

// NewDocumentIndex tokenizes content and computes the normalized frequency of
// every term. Frequencies are divided by the number of raw whitespace tokens,
// including tokens that normalize to nothing, with a floor of one.
func NewDocumentIndex(id string, content string) *DocumentIndex {
	terms, rawCount := tokenizer.Terms(content)

	counts := make(map[string]int, len(terms))
	for _, term := range terms {
		counts[term]++
	}
	total := rawCount
	if total < 1 {
		total = 1
	}
	termFreq := make(map[string]float64, len(counts))
	for term, n := range counts {
		termFreq[term] = float64(n) / float64(total)
	}
	return &DocumentIndex{
		id:         id,
		termFreq:   termFreq,
		tokenCount: rawCount,
	}
}

// Identifier returns the caller-supplied document identifier.
func (d *DocumentIndex) Identifier() string {
	return d.id
}

// TermFrequency normalizes term and returns its frequency in the document,
// or 0 if the document does not contain it.
func (d *DocumentIndex) TermFrequency(term string) float64 {
	return d.termFreq[tokenizer.Normalize(term)]
}

// Vocabulary returns a new set of the distinct terms in the document.
func (d *DocumentIndex) Vocabulary() map[string]struct{} {
	vocab := make(map[string]struct{}, len(d.termFreq))
	for term := range d.termFreq {
		vocab[term] = struct{}{}
	}
	return vocab
}

// Terms returns the vocabulary in ascending order.
func (d *DocumentIndex) Terms() []string {
	terms := make([]string, 0, len(d.termFreq))
	for term := range d.termFreq {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// TokenCount is the number of raw whitespace tokens in the source text.
func (d *DocumentIndex) TokenCount() int {
	return d.tokenCount
}

func (d *DocumentIndex) frequency(term string) float64 {
	return d.termFreq[term]
}
