package engine

import (
	"regexp"
	"unicode/utf8"
)

const (
	maxKeywords      = 5
	minKeywordLength = 4
)

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// ExtractKeywords returns up to five lower-cased words of four or more
// characters that are not stop words, in message order. Duplicates are kept.
func (e *Engine) ExtractKeywords(text string) []string {
	keywords := []string{}
	for _, w := range wordPattern.FindAllString(lower(text), -1) {
		if _, stop := e.stopWords[w]; stop {
			continue
		}
		if utf8.RuneCountInString(w) < minKeywordLength {
			continue
		}
		keywords = append(keywords, w)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}
