package chunk

import "strings"

// SentenceSplitter packs whole sentences into chunks of at most MaxChars
// runes. Chunks always end on a sentence boundary, which is what the
// character-based strategies cannot guarantee.
type SentenceSplitter struct {
	// MaxChars is the chunk budget in runes. A single sentence longer than
	// the budget becomes its own oversized chunk rather than being cut.
	MaxChars int

	// OverlapSentences is how many trailing sentences of one chunk reappear
	// at the start of the next.
	OverlapSentences int
}

// NewSentenceSplitter returns a SentenceSplitter with the given budget and
// no sentence overlap.
func NewSentenceSplitter(maxChars int) *SentenceSplitter {
	if maxChars <= 0 {
		maxChars = 400
	}
	return &SentenceSplitter{MaxChars: maxChars}
}

// Split implements Splitter.
func (s *SentenceSplitter) Split(text string) []Chunk {
	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []Chunk
	var buf []string
	bufLen := 0

	flush := func() {
		if len(buf) == 0 {
			return
		}
		chunks = append(chunks, Chunk{
			Text:  strings.Join(buf, " "),
			Index: len(chunks),
		})

		if s.OverlapSentences > 0 && s.OverlapSentences < len(buf) {
			buf = append([]string(nil), buf[len(buf)-s.OverlapSentences:]...)
		} else {
			buf = nil
		}
		bufLen = 0
		for _, kept := range buf {
			bufLen += len([]rune(kept)) + 1
		}
	}

	for _, sent := range sentences {
		sl := len([]rune(sent))
		if bufLen+sl > s.MaxChars && len(buf) > 0 {
			flush()
		}
		buf = append(buf, sent)
		bufLen += sl + 1
	}
	flush()

	return chunks
}

// SplitSentences splits text into sentences on '.', '!' and '?' followed by
// whitespace or end of text. Whitespace around sentences is trimmed and the
// terminating punctuation is kept.
func SplitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)

	start := 0
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		// Consume runs of terminators ("..." or "?!")
		for i+1 < len(runes) {
			next := runes[i+1]
			if next == '.' || next == '!' || next == '?' {
				i++
				continue
			}
			break
		}
		atEnd := i+1 >= len(runes)
		if !atEnd && !isSpace(runes[i+1]) {
			// Mid-token punctuation like "3.5" or "AWS-POL-S3-001." inside a word
			continue
		}
		sent := strings.TrimSpace(string(runes[start : i+1]))
		if sent != "" {
			sentences = append(sentences, sent)
		}
		start = i + 1
	}

	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return false
}
