package lexical

import "math"

// Default Okapi BM25 parameters.
const (
	DefaultK1      = 1.5
	DefaultB       = 0.75
	DefaultEpsilon = 0.25
)

// BM25 ranks documents with the Okapi BM25 formula.
//
// idf uses the probabilistic form ln((N-df+0.5)/(df+0.5)), which goes
// negative for terms in more than half the corpus; negative values are
// floored at Epsilon times the average idf so common terms still count
// a little instead of subtracting.
type BM25 struct {
	// K1 controls term-frequency saturation.
	K1 float64

	// B controls document-length normalization. 0 disables it, 1 normalizes
	// fully.
	B float64

	// Epsilon is the floor for negative idf values, as a fraction of the
	// average idf.
	Epsilon float64

	docs      []string
	tokenized [][]string
	docLens   []float64
	avgLen    float64
	idf       map[string]float64
}

// NewBM25 builds a BM25 model over the corpus with default parameters.
func NewBM25(docs []string) *BM25 {
	m := &BM25{
		K1:      DefaultK1,
		B:       DefaultB,
		Epsilon: DefaultEpsilon,
		docs:    docs,
	}
	m.fit()
	return m
}

func (m *BM25) fit() {
	m.tokenized = make([][]string, len(m.docs))
	m.docLens = make([]float64, len(m.docs))

	df := make(map[string]int)
	var total float64
	for i, d := range m.docs {
		m.tokenized[i] = Tokenize(d)
		m.docLens[i] = float64(len(m.tokenized[i]))
		total += m.docLens[i]
		for t := range termCounts(m.tokenized[i]) {
			df[t]++
		}
	}
	if len(m.docs) > 0 {
		m.avgLen = total / float64(len(m.docs))
	}

	n := float64(len(m.docs))
	m.idf = make(map[string]float64, len(df))

	var idfSum float64
	var negative []string
	for t, d := range df {
		idf := math.Log((n - float64(d) + 0.5) / (float64(d) + 0.5))
		m.idf[t] = idf
		idfSum += idf
		if idf < 0 {
			negative = append(negative, t)
		}
	}
	if len(m.idf) > 0 {
		floor := m.Epsilon * idfSum / float64(len(m.idf))
		for _, t := range negative {
			m.idf[t] = floor
		}
	}
}

// Docs returns the corpus the model was built on.
func (m *BM25) Docs() []string { return m.docs }

// Scores returns the BM25 score of every corpus document for the query, in
// corpus order. Query terms outside the vocabulary contribute nothing.
func (m *BM25) Scores(query string) []float64 {
	qTokens := Tokenize(query)
	scores := make([]float64, len(m.docs))

	for i, tokens := range m.tokenized {
		counts := termCounts(tokens)
		var score float64
		for _, t := range qTokens {
			f := float64(counts[t])
			if f == 0 {
				continue
			}
			idf := m.idf[t]
			norm := 1 - m.B + m.B*m.docLens[i]/m.avgLen
			score += idf * f * (m.K1 + 1) / (f + m.K1*norm)
		}
		scores[i] = score
	}
	return scores
}
