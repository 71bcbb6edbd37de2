package ai

import (
	"regexp"
	"sort"
	"strings"
)

var wordRe = regexp.MustCompile(`\b[a-zA-Z]{3,}\b`)

// stopwords filtered out of keyword mining.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "had": {}, "her": {}, "was": {},
	"one": {}, "our": {}, "out": {}, "day": {}, "get": {}, "has": {},
	"him": {}, "his": {}, "how": {}, "man": {}, "new": {}, "now": {},
	"old": {}, "see": {}, "two": {}, "way": {}, "who": {}, "boy": {},
	"did": {}, "its": {}, "let": {}, "put": {}, "say": {}, "she": {},
	"too": {}, "use": {}, "this": {}, "that": {}, "with": {}, "have": {},
	"from": {}, "they": {}, "been": {}, "were": {}, "there": {},
}

// TopKeywords mines the limit most frequent words (length > 3, stopwords
// removed) across the given texts, most frequent first. Ties are broken
// alphabetically so the result is stable.
func TopKeywords(texts []string, limit int) []string {
	counts := make(map[string]int)
	for _, text := range texts {
		for _, word := range wordRe.FindAllString(strings.ToLower(text), -1) {
			if len(word) <= 3 {
				continue
			}
			if _, ok := stopwords[word]; ok {
				continue
			}
			counts[word]++
		}
	}
	if len(counts) == 0 {
		return nil
	}

	words := make([]string, 0, len(counts))
	for word := range counts {
		words = append(words, word)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})

	if limit > 0 && len(words) > limit {
		words = words[:limit]
	}
	return words
}
