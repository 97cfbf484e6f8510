package chunk

// FixedSplitter cuts a fixed-size window out of the text every Step runes.
// When Size > Step adjacent windows overlap by Size-Step runes; the window
// ignores all structure and routinely breaks words and sentences.
//
// This is the splitter the baseline retrieval system ships with, and it is
// the first thing to look at when that system scores badly.
type FixedSplitter struct {
	// Size is the window length in runes.
	Size int

	// Step is how far the window advances between chunks.
	Step int
}

// NewFixedSplitter returns a FixedSplitter with the given window size and
// step. Non-positive values fall back to the baseline defaults (120/100).
func NewFixedSplitter(size, step int) *FixedSplitter {
	if size <= 0 {
		size = 120
	}
	if step <= 0 {
		step = 100
	}
	return &FixedSplitter{Size: size, Step: step}
}

// Split implements Splitter.
func (s *FixedSplitter) Split(text string) []Chunk {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	var chunks []Chunk
	for i := 0; i < len(runes); i += s.Step {
		end := i + s.Size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, Chunk{
			Text:  string(runes[i:end]),
			Index: len(chunks),
		})
	}
	return chunks
}
