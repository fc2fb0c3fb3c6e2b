package wordcloud

import (
	"regexp"
	"strings"
)

var reWord = regexp.MustCompile(`[a-z]+`)

// Common filler words excluded from frequency counts.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"of": true, "to": true, "in": true, "on": true, "for": true, "with": true,
	"is": true, "are": true, "was": true, "were": true, "be": true, "been": true,
	"it": true, "this": true, "that": true, "these": true, "those": true,
	"i": true, "you": true, "he": true, "she": true, "we": true, "they": true,
	"at": true, "by": true, "from": true, "as": true, "my": true, "our": true,
	"their": true, "its": true, "so": true, "too": true, "very": true,
}

// Frequencies tokenizes text into lowercase word runs, drops stopwords and
// single letters, and returns each remaining word's frequency relative to
// the most common one (the top word maps to 1.0).
func Frequencies(text string) map[string]float64 {
	counts := make(map[string]int)
	max := 0
	for _, w := range reWord.FindAllString(strings.ToLower(text), -1) {
		if len(w) < 2 || stopwords[w] {
			continue
		}
		counts[w]++
		if counts[w] > max {
			max = counts[w]
		}
	}

	if max == 0 {
		return map[string]float64{}
	}

	freqs := make(map[string]float64, len(counts))
	for w, c := range counts {
		freqs[w] = float64(c) / float64(max)
	}
	return freqs
}
