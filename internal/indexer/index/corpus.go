// Package index holds the in-memory tf-idf index: one DocumentIndex per
// document and a Corpus that owns them together with the inverted index.
// A Corpus is read-only after Build and safe for concurrent readers.
package index

import (
	"math"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/ranker"
)

var _ ranker.Scorer = (*Corpus)(nil)

// Corpus is an immutable collection of documents plus the inverted index
// mapping each term to the positions of the documents that contain it.
type Corpus struct {
	documents []*DocumentIndex
	inverted  map[string][]int
}

// Build indexes entries in order. Each document's position in the input is
// its arena index; posting lists are ascending and free of duplicates.
func Build(entries []Entry) *Corpus {
	c := &Corpus{
		documents: make([]*DocumentIndex, 0, len(entries)),
		inverted:  make(map[string][]int),
	}
	for i, entry := range entries {
		doc := NewDocumentIndex(entry.ID, entry.Content)
		c.documents = append(c.documents, doc)
		for term := range doc.termFreq {
			c.inverted[term] = append(c.inverted[term], i)
		}
	}
	return c
}

// DocCount returns the number of documents in the corpus.
func (c *Corpus) DocCount() int {
	return len(c.documents)
}

// TermCount returns the number of distinct terms in the inverted index.
func (c *Corpus) TermCount() int {
	return len(c.inverted)
}

// Document returns the document at arena index i, or nil if out of range.
func (c *Corpus) Document(i int) *DocumentIndex {
	if i < 0 || i >= len(c.documents) {
		return nil
	}
	return c.documents[i]
}

// Postings returns a copy of the arena indices of documents containing term.
func (c *Corpus) Postings(term string) []int {
	postings := c.inverted[tokenizer.Normalize(term)]
	if len(postings) == 0 {
		return nil
	}
	out := make([]int, len(postings))
	copy(out, postings)
	return out
}

// DocFreq returns the number of documents containing term.
func (c *Corpus) DocFreq(term string) int {
	return len(c.inverted[tokenizer.Normalize(term)])
}

// IDF returns ln(N / df) for term, or 0 when no document contains it.
func (c *Corpus) IDF(term string) float64 {
	return c.idf(tokenizer.Normalize(term))
}

func (c *Corpus) idf(term string) float64 {
	df := len(c.inverted[term])
	if df == 0 {
		return 0
	}
	return math.Log(float64(len(c.documents)) / float64(df))
}

// TermFrequencyAt returns the frequency of term in the document at arena
// index doc.
func (c *Corpus) TermFrequencyAt(doc int, term string) float64 {
	d := c.Document(doc)
	if d == nil {
		return 0
	}
	return d.frequency(tokenizer.Normalize(term))
}

// IdentifierAt returns the identifier of the document at arena index doc.
func (c *Corpus) IdentifierAt(doc int) string {
	d := c.Document(doc)
	if d == nil {
		return ""
	}
	return d.Identifier()
}

// Search returns the identifiers of every document matching at least one
// query term, best tf-idf score first. Equal scores keep input order.
func (c *Corpus) Search(query string) []string {
	scored := c.Score(query, 0)
	ids := make([]string, 0, len(scored))
	for _, s := range scored {
		ids = append(ids, s.DocID)
	}
	return ids
}

// Score ranks documents against query and returns at most limit results
// with their scores. A non-positive limit returns all matches.
func (c *Corpus) Score(query string, limit int) []ranker.ScoredDoc {
	plan := parser.Parse(query)
	if plan.Empty() || len(c.documents) == 0 {
		return []ranker.ScoredDoc{}
	}
	return ranker.Rank(c, plan.Terms, limit)
}

// Documents returns per-document statistics in corpus order.
func (c *Corpus) Documents() []DocStats {
	stats := make([]DocStats, 0, len(c.documents))
	for _, d := range c.documents {
		stats = append(stats, DocStats{
			DocID:      d.Identifier(),
			TokenCount: d.TokenCount(),
			Terms:      len(d.termFreq),
		})
	}
	return stats
}

// Snapshot lists every indexed term with its document frequency, idf and
// containing documents, sorted by term.
func (c *Corpus) Snapshot() []TermEntry {
	entries := make([]TermEntry, 0, len(c.inverted))
	for term, postings := range c.inverted {
		docs := make([]string, 0, len(postings))
		for _, i := range postings {
			docs = append(docs, c.documents[i].Identifier())
		}
		entries = append(entries, TermEntry{
			Term:      term,
			DocFreq:   len(postings),
			IDF:       c.idf(term),
			Documents: docs,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Term < entries[j].Term
	})
	return entries
}
