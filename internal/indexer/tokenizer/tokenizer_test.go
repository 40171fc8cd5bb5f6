package tokenizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/tokenizer"
)

func TestNormalize(t *testing.T) {
	tests := map[string]struct {
		input string
		want  string
	}{
		"trailing punctuation": {input: "Hello!", want: "hello"},
		"apostrophe":           {input: "DON'T", want: "dont"},
		"only punctuation":     {input: "...", want: ""},
		"empty":                {input: "", want: ""},
		"digits kept":          {input: "Go1.22", want: "go122"},
		"underscore kept":      {input: "snake_case", want: "snake_case"},
		"inner symbols":        {input: "e-mail@home", want: "emailhome"},
		"accented letters":     {input: "Café", want: "café"},
		"superscript digit":    {input: "x²", want: "x²"},
		"vulgar fraction":      {input: "½cup", want: "½cup"},
		"letter numeral":       {input: "Ⅻ", want: "ⅻ"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, tokenizer.Normalize(tc.input))
		})
	}
}

func TestFields(t *testing.T) {
	assert.Equal(t, []string{"dogs", "are", "great!"}, tokenizer.Fields("  dogs\tare\n great!  "))
	assert.Empty(t, tokenizer.Fields(" \n\t "))
}

func TestTermsCountsDroppedTokens(t *testing.T) {
	terms, raw := tokenizer.Terms("Dogs -- are, the GREATEST pets !!")
	assert.Equal(t, []string{"dogs", "are", "the", "greatest", "pets"}, terms)
	assert.Equal(t, 7, raw)
}

func TestTermsEmpty(t *testing.T) {
	terms, raw := tokenizer.Terms("")
	assert.Empty(t, terms)
	assert.Equal(t, 0, raw)
}

func BenchmarkTerms(b *testing.B) {
	text := "The quick brown fox jumps over the lazy dog. Distributed search, don't panic!"
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = tokenizer.Terms(text)
	}
}
