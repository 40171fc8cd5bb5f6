// Package tokenizer turns raw text into index terms. Text is split on
// whitespace and every token is lower-cased with all non-word characters
// deleted. No stemming or stop-word removal is applied.
package tokenizer

import (
	"regexp"
	"strings"
)

// nonWord matches runs of characters outside the word class: letters, any
// numeric character (superscripts, fractions and letter numerals included)
// and underscore.
var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// Normalize maps a raw token to its canonical term. The result is empty when
// the token holds no word characters at all.
func Normalize(token string) string {
	return nonWord.ReplaceAllString(strings.ToLower(token), "")
}

// Fields splits text into whitespace-delimited raw tokens.
func Fields(text string) []string {
	return strings.Fields(text)
}

// Terms normalizes every whitespace token of text and drops the ones that
// normalize to the empty string. rawCount is the number of tokens before
// anything was dropped.
func Terms(text string) (terms []string, rawCount int) {
	words := Fields(text)
	terms = make([]string, 0, len(words))
	for _, word := range words {
		term := Normalize(word)
		if term == "" {
			continue
		}
		terms = append(terms, term)
	}
	return terms, len(words)
}
