package search

import (
	"strings"
	"unicode"

	"github.com/agext/levenshtein"
)

// Normalize lower-cases s, drops every character that is neither a letter,
// a digit nor whitespace, and collapses whitespace runs to single spaces.
// "http-loadbalancer" becomes "httploadbalancer".
func Normalize(s string) string {
	return normalize(s, false)
}

// split is Normalize with punctuation treated as a word boundary
func split(s string) string {
	return normalize(s, true)
}

func normalize(s string, punctBreaks bool) string {
	var b strings.Builder
	b.Grow(len(s))
	space := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			space = false
		case unicode.IsSpace(r) || punctBreaks:
			if !space {
				b.WriteByte(' ')
				space = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// Tokenize normalizes s and returns the tokens at least minLen runes long,
// in first-seen order without duplicates
func Tokenize(s string, minLen int) []string {
	return appendTokens(nil, make(map[string]struct{}), Normalize(s), minLen)
}

// IndexTerms is Tokenize plus the tokens produced by splitting on
// punctuation, so "origin-pool" is reachable as originpool, origin and pool.
func IndexTerms(s string, minLen int) []string {
	seen := make(map[string]struct{})
	out := appendTokens(nil, seen, Normalize(s), minLen)
	return appendTokens(out, seen, split(s), minLen)
}

func appendTokens(out []string, seen map[string]struct{}, normalized string, minLen int) []string {
	for _, f := range strings.Fields(normalized) {
		if len([]rune(f)) < minLen {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// Distance is the Levenshtein edit distance with unit costs
func Distance(a, b string) int {
	return levenshtein.Distance(a, b, nil)
}
