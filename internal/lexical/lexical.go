// Package lexical implements term-based ranking over small in-memory
// corpora: TF-IDF with cosine similarity, Okapi BM25, and a weighted
// hybrid of the two.
//
// These rankers score documents by term statistics alone. The keyword-gap
// lab uses them to show where pure lexical matching fails: synonyms and
// paraphrases score zero no matter how relevant the document is.
package lexical

import (
	"sort"
	"strings"
	"unicode"
)

// Tokenize lowercases text and splits it into alphanumeric terms. Anything
// that is not a letter or digit separates terms, so "company-approved"
// yields "company" and "approved".
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// ScoredDoc pairs a corpus index with its relevance score.
type ScoredDoc struct {
	// Index is the document's position in the corpus the ranker was built on.
	Index int

	// Score is the ranker-specific relevance score. TF-IDF scores are cosine
	// similarities in [0,1]; BM25 scores are unbounded.
	Score float64
}

// TopK returns the k highest-scoring documents in descending score order.
// Ties keep corpus order. k larger than the corpus returns everything.
func TopK(scores []float64, k int) []ScoredDoc {
	ranked := make([]ScoredDoc, len(scores))
	for i, s := range scores {
		ranked[i] = ScoredDoc{Index: i, Score: s}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if k > 0 && k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked
}

// termCounts counts term occurrences in a token list.
func termCounts(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}
	return counts
}
