// Package ranker scores candidate documents against a list of query terms
// with plain tf-idf and orders them by descending score.
package ranker

import (
	"container/heap"
	"sort"
)

// ScoredDoc is a ranked document identifier.
type ScoredDoc struct {
	DocID string  `json:"doc_id"`
	Score float64 `json:"score"`
}

// Scorer exposes the index statistics the ranker needs. Documents are
// addressed by their position in the corpus, which is also the tie-break
// order.
type Scorer interface {
	Postings(term string) []int
	IDF(term string) float64
	TermFrequencyAt(doc int, term string) float64
	IdentifierAt(doc int) string
}

type candidate struct {
	doc   int
	score float64
}

// Rank scores every document containing at least one of terms by
// sum(idf(t) * tf(d, t)) over all terms, duplicates included. Results are
// ordered by score descending and then by corpus position ascending. A limit
// of zero or less returns every candidate.
func Rank(s Scorer, terms []string, limit int) []ScoredDoc {
	idf := make(map[string]float64, len(terms))
	candidates := make(map[int]struct{})
	for _, term := range terms {
		if term == "" {
			continue
		}
		postings := s.Postings(term)
		if len(postings) == 0 {
			continue
		}
		if _, seen := idf[term]; !seen {
			idf[term] = s.IDF(term)
		}
		for _, doc := range postings {
			candidates[doc] = struct{}{}
		}
	}

	scored := make([]candidate, 0, len(candidates))
	for doc := range candidates {
		var score float64
		for _, term := range terms {
			weight, ok := idf[term]
			if !ok {
				continue
			}
			score += weight * s.TermFrequencyAt(doc, term)
		}
		scored = append(scored, candidate{doc: doc, score: score})
	}

	if limit > 0 && len(scored) > limit {
		scored = topK(scored, limit)
	} else {
		sort.Slice(scored, func(i, j int) bool {
			return ranksBefore(scored[i], scored[j])
		})
	}

	result := make([]ScoredDoc, 0, len(scored))
	for _, c := range scored {
		result = append(result, ScoredDoc{
			DocID: s.IdentifierAt(c.doc),
			Score: c.score,
		})
	}
	return result
}

func ranksBefore(a, b candidate) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	return a.doc < b.doc
}

// topK keeps the best k candidates in a bounded min-heap and returns them in
// rank order.
func topK(all []candidate, k int) []candidate {
	h := &candidateHeap{}
	heap.Init(h)
	for _, c := range all {
		heap.Push(h, c)
		if h.Len() > k {
			heap.Pop(h)
		}
	}
	result := make([]candidate, h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(h).(candidate)
	}
	return result
}

// candidateHeap is ordered worst-first so the root is the next to evict.
type candidateHeap []candidate

func (h candidateHeap) Len() int { return len(h) }

func (h candidateHeap) Less(i, j int) bool { return ranksBefore(h[j], h[i]) }

func (h candidateHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *candidateHeap) Push(x interface{}) {
	*h = append(*h, x.(candidate))
}

func (h *candidateHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
