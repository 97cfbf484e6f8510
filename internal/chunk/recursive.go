package chunk

import "strings"

// DefaultSeparators are tried in order: paragraph breaks first, then line
// breaks, then spaces, and finally individual characters as a last resort.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// RecursiveSplitter splits text on a hierarchy of separators, preferring the
// coarsest separator that still yields pieces small enough, then merges
// pieces into chunks of at most ChunkSize runes with ChunkOverlap runes
// carried over between adjacent chunks.
type RecursiveSplitter struct {
	// ChunkSize is the maximum chunk length in runes.
	ChunkSize int

	// ChunkOverlap is how many trailing runes of one chunk reappear at the
	// start of the next. Must be smaller than ChunkSize.
	ChunkOverlap int

	// Separators are tried in order; nil means DefaultSeparators.
	Separators []string
}

// NewRecursiveSplitter returns a RecursiveSplitter with the given size and
// overlap and the default separator hierarchy.
func NewRecursiveSplitter(chunkSize, chunkOverlap int) *RecursiveSplitter {
	if chunkSize <= 0 {
		chunkSize = 200
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 0
	}
	return &RecursiveSplitter{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		Separators:   DefaultSeparators,
	}
}

// Split implements Splitter.
func (s *RecursiveSplitter) Split(text string) []Chunk {
	seps := s.Separators
	if seps == nil {
		seps = DefaultSeparators
	}

	var chunks []Chunk
	for _, piece := range s.splitText(text, seps) {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		chunks = append(chunks, Chunk{Text: piece, Index: len(chunks)})
	}
	return chunks
}

// splitText recursively splits text with the first applicable separator and
// merges the resulting pieces back into chunks within the size budget.
func (s *RecursiveSplitter) splitText(text string, separators []string) []string {
	if len([]rune(text)) <= s.ChunkSize {
		return []string{text}
	}

	sep, rest := pickSeparator(text, separators)
	pieces := splitKeepNonEmpty(text, sep)

	// Pieces still over budget are split again with the finer separators.
	var sized []string
	for _, p := range pieces {
		if len([]rune(p)) > s.ChunkSize && len(rest) > 0 {
			sized = append(sized, s.splitText(p, rest)...)
		} else {
			sized = append(sized, p)
		}
	}

	return s.merge(sized, sep)
}

// pickSeparator returns the first separator that occurs in the text, plus the
// remaining (finer) separators after it.
func pickSeparator(text string, separators []string) (string, []string) {
	for i, sep := range separators {
		if sep == "" {
			return "", nil
		}
		if strings.Contains(text, sep) {
			return sep, separators[i+1:]
		}
	}
	return "", nil
}

// splitKeepNonEmpty splits text by sep, dropping empty pieces. An empty
// separator splits into individual runes.
func splitKeepNonEmpty(text, sep string) []string {
	var raw []string
	if sep == "" {
		for _, r := range text {
			raw = append(raw, string(r))
		}
	} else {
		raw = strings.Split(text, sep)
	}

	pieces := raw[:0]
	for _, p := range raw {
		if p != "" {
			pieces = append(pieces, p)
		}
	}
	return pieces
}

// merge greedily joins pieces with sep into chunks of at most ChunkSize
// runes, carrying ChunkOverlap trailing runes of content into the next chunk.
func (s *RecursiveSplitter) merge(pieces []string, sep string) []string {
	sepLen := len([]rune(sep))

	var merged []string
	var buf []string
	bufLen := 0

	flush := func() {
		if len(buf) == 0 {
			return
		}
		merged = append(merged, strings.Join(buf, sep))

		// Keep trailing pieces within the overlap budget for the next chunk
		var kept []string
		keptLen := 0
		for i := len(buf) - 1; i >= 0; i-- {
			pl := len([]rune(buf[i]))
			if keptLen+pl > s.ChunkOverlap {
				break
			}
			kept = append([]string{buf[i]}, kept...)
			keptLen += pl + sepLen
		}
		buf = kept
		bufLen = keptLen
	}

	for _, p := range pieces {
		pl := len([]rune(p))
		if bufLen+pl+sepLen > s.ChunkSize && len(buf) > 0 {
			flush()
		}
		buf = append(buf, p)
		bufLen += pl + sepLen

		// Overlap carry plus a large piece can still overshoot; shed leading
		// pieces until the buffer fits (a lone oversized piece stays whole).
		for bufLen > s.ChunkSize && len(buf) > 1 {
			bufLen -= len([]rune(buf[0])) + sepLen
			buf = buf[1:]
		}
	}
	if len(buf) > 0 {
		merged = append(merged, strings.Join(buf, sep))
	}
	return merged
}
