// Package chunk implements the document chunking strategies demonstrated by
// the labs: fixed-window splitting, recursive character splitting with
// overlap, and sentence-aware splitting.
//
// All splitters operate on runes, not bytes, so multi-byte text never gets
// cut inside a character.
package chunk

import "strings"

// Chunk is one piece of a split document.
type Chunk struct {
	// Text is the chunk content.
	Text string

	// Index is the zero-based position of the chunk within its document.
	Index int
}

// Splitter splits a document into chunks.
// Implementations: FixedSplitter, RecursiveSplitter, SentenceSplitter.
type Splitter interface {
	Split(text string) []Chunk
}

// Texts returns just the chunk contents, in order.
func Texts(chunks []Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}

// EndsAtSentenceBoundary reports whether the chunk text ends with sentence
// punctuation. The chunking labs use it to show which strategies break
// mid-sentence.
func EndsAtSentenceBoundary(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	switch trimmed[len(trimmed)-1] {
	case '.', '!', '?':
		return true
	}
	return false
}
