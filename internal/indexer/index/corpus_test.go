package index_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/index"
)

func doggos() []index.Entry {
	return []index.Entry{
		{ID: "doc1", Content: "dogs are the greatest pets"},
		{ID: "doc2", Content: "cats seem pretty okay"},
		{ID: "doc3", Content: "i love dogs"},
	}
}

func TestBuildInvertedIndex(t *testing.T) {
	c := index.Build(doggos())
	assert.Equal(t, 3, c.DocCount())
	assert.Equal(t, []int{0, 2}, c.Postings("dogs"))
	assert.Equal(t, []int{0, 2}, c.Postings("Dogs!"))
	assert.Equal(t, []int{1}, c.Postings("cats"))
	assert.Nil(t, c.Postings("horses"))
	assert.Equal(t, 2, c.DocFreq("dogs"))
}

func TestBuildNoDuplicatePostings(t *testing.T) {
	c := index.Build([]index.Entry{
		{ID: "a", Content: "dogs dogs dogs"},
		{ID: "b", Content: "dogs"},
	})
	assert.Equal(t, []int{0, 1}, c.Postings("dogs"))
}

func TestInvertedIndexMatchesVocabularies(t *testing.T) {
	c := index.Build(doggos())
	total := 0
	for i := 0; i < c.DocCount(); i++ {
		doc := c.Document(i)
		for term := range doc.Vocabulary() {
			assert.Contains(t, c.Postings(term), i)
			assert.Positive(t, doc.TermFrequency(term))
		}
	}
	for _, entry := range c.Snapshot() {
		assert.LessOrEqual(t, entry.DocFreq, c.DocCount())
		total++
	}
	assert.Equal(t, c.TermCount(), total)
}

func TestIDF(t *testing.T) {
	c := index.Build(doggos())
	assert.InDelta(t, math.Log(3.0/2), c.IDF("dogs"), 1e-12)
	assert.InDelta(t, math.Log(3.0), c.IDF("love"), 1e-12)
	assert.Positive(t, c.IDF("dogs"))
	assert.Zero(t, c.IDF("nonexistent"))
	assert.Zero(t, c.IDF(""))
}

func TestIDFMonotonic(t *testing.T) {
	c := index.Build([]index.Entry{
		{ID: "1", Content: "rare common everywhere"},
		{ID: "2", Content: "common everywhere"},
		{ID: "3", Content: "everywhere"},
	})
	assert.Greater(t, c.IDF("rare"), c.IDF("common"))
	assert.Greater(t, c.IDF("common"), c.IDF("everywhere"))
	assert.Zero(t, c.IDF("everywhere"))
}

func TestEmptyCorpus(t *testing.T) {
	c := index.Build(nil)
	assert.Zero(t, c.DocCount())
	assert.Zero(t, c.IDF("x"))
	assert.Empty(t, c.Search("anything"))
	assert.NotNil(t, c.Search("anything"))
	assert.Empty(t, c.Snapshot())
	assert.Nil(t, c.Document(0))
}

func TestSearchSingleTerm(t *testing.T) {
	c := index.Build(doggos())
	results := c.Search("dogs")
	assert.ElementsMatch(t, []string{"doc1", "doc3"}, results)
	assert.NotContains(t, results, "doc2")
}

func TestSearchMultiTerm(t *testing.T) {
	c := index.Build(doggos())
	assert.Equal(t, []string{"doc3", "doc1"}, c.Search("love dogs"))
}

func TestScoreValues(t *testing.T) {
	c := index.Build(doggos())
	scored := c.Score("love dogs", 0)
	require.Len(t, scored, 2)
	want3 := math.Log(3.0/2)/3 + math.Log(3.0)/3
	want1 := math.Log(3.0/2) / 5
	assert.InDelta(t, want3, scored[0].Score, 1e-12)
	assert.InDelta(t, want1, scored[1].Score, 1e-12)
}

func TestSearchEmptyAndUnmatchedQueries(t *testing.T) {
	c := index.Build(doggos())
	assert.Empty(t, c.Search(""))
	assert.Empty(t, c.Search("   "))
	assert.Empty(t, c.Search("?! ..."))
	assert.Empty(t, c.Search("horses"))
}

func TestSearchSkipsEmptyTerms(t *testing.T) {
	c := index.Build(doggos())
	assert.Equal(t, c.Score("love dogs", 0), c.Score("love -- dogs !!", 0))
}

func TestSearchTieBreakIsInsertionOrder(t *testing.T) {
	c := index.Build([]index.Entry{
		{ID: "zeta", Content: "apple pie"},
		{ID: "alpha", Content: "apple tart"},
		{ID: "mid", Content: "pear"},
	})
	assert.Equal(t, []string{"zeta", "alpha"}, c.Search("apple"))
}

func TestSearchZeroScoreCandidatesIncluded(t *testing.T) {
	c := index.Build([]index.Entry{
		{ID: "a", Content: "shared"},
		{ID: "b", Content: "shared"},
	})
	scored := c.Score("shared", 0)
	require.Len(t, scored, 2)
	assert.Zero(t, scored[0].Score)
	assert.Equal(t, "a", scored[0].DocID)
}

func TestSearchDuplicateQueryTermsCountTwice(t *testing.T) {
	c := index.Build(doggos())
	once := c.Score("love", 0)
	twice := c.Score("love love", 0)
	require.Len(t, once, 1)
	require.Len(t, twice, 1)
	assert.InDelta(t, 2*once[0].Score, twice[0].Score, 1e-12)
}

func TestScoreLimit(t *testing.T) {
	c := index.Build(doggos())
	scored := c.Score("love dogs cats", 1)
	require.Len(t, scored, 1)
	assert.Equal(t, c.Search("love dogs cats")[0], scored[0].DocID)
}

func TestSearchIdempotentAcrossRebuilds(t *testing.T) {
	first := index.Build(doggos())
	second := index.Build(doggos())
	for _, q := range []string{"dogs", "love dogs", "cats dogs pets", "okay", "", "nothing"} {
		assert.Equal(t, first.Search(q), second.Search(q), "query %q", q)
	}
}

func TestSearchReturnsOnlyInputIdentifiers(t *testing.T) {
	entries := doggos()
	known := make(map[string]int)
	for _, e := range entries {
		known[e.ID]++
	}
	c := index.Build(entries)
	results := c.Search("dogs cats love the okay i")
	seen := make(map[string]bool)
	for _, id := range results {
		assert.Equal(t, 1, known[id])
		assert.False(t, seen[id], "duplicate %s", id)
		seen[id] = true
	}
	assert.Len(t, results, 3)
}

func TestSnapshotAndDocuments(t *testing.T) {
	c := index.Build(doggos())
	snap := c.Snapshot()
	require.NotEmpty(t, snap)
	for i := 1; i < len(snap); i++ {
		assert.Less(t, snap[i-1].Term, snap[i].Term)
	}
	for _, e := range snap {
		if e.Term == "dogs" {
			assert.Equal(t, 2, e.DocFreq)
			assert.Equal(t, []string{"doc1", "doc3"}, e.Documents)
		}
	}
	docs := c.Documents()
	require.Len(t, docs, 3)
	assert.Equal(t, index.DocStats{DocID: "doc1", TokenCount: 5, Terms: 5}, docs[0])
}

func TestConcurrentReaders(t *testing.T) {
	c := index.Build(doggos())
	want := c.Search("love dogs")
	done := make(chan []string, 16)
	for i := 0; i < 16; i++ {
		go func() { done <- c.Search("love dogs") }()
	}
	for i := 0; i < 16; i++ {
		assert.Equal(t, want, <-done)
	}
}

func BenchmarkBuild(b *testing.B) {
	entries := make([]index.Entry, 1000)
	for i := range entries {
		entries[i] = index.Entry{ID: string(rune('a' + i%26)), Content: "search engine with distributed indexing and query processing"}
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = index.Build(entries)
	}
}

func BenchmarkSearch(b *testing.B) {
	c := index.Build(doggos())
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Search("love dogs")
	}
}
