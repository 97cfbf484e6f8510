package lexical

import "math"

// TFIDF ranks documents by cosine similarity between TF-IDF vectors.
//
// It uses smoothed inverse document frequency, idf = ln((1+N)/(1+df)) + 1,
// and L2-normalizes every vector, so scores are cosine similarities
// in [0,1] and a document can never score on a term it does not contain.
type TFIDF struct {
	docs    []string
	vocab   map[string]int
	idf     []float64
	vectors [][]float64
}

// NewTFIDF builds a TF-IDF model over the corpus. The corpus is fixed at
// construction; score any number of queries against it afterwards.
func NewTFIDF(docs []string) *TFIDF {
	m := &TFIDF{
		docs:  docs,
		vocab: make(map[string]int),
	}

	tokenized := make([][]string, len(docs))
	for i, d := range docs {
		tokenized[i] = Tokenize(d)
		for _, t := range tokenized[i] {
			if _, ok := m.vocab[t]; !ok {
				m.vocab[t] = len(m.vocab)
			}
		}
	}

	df := make([]int, len(m.vocab))
	for _, tokens := range tokenized {
		for t := range termCounts(tokens) {
			df[m.vocab[t]]++
		}
	}

	n := float64(len(docs))
	m.idf = make([]float64, len(m.vocab))
	for i, d := range df {
		m.idf[i] = math.Log((1+n)/(1+float64(d))) + 1
	}

	m.vectors = make([][]float64, len(docs))
	for i, tokens := range tokenized {
		m.vectors[i] = m.vectorize(tokens)
	}
	return m
}

// Docs returns the corpus the model was built on.
func (m *TFIDF) Docs() []string { return m.docs }

// Scores returns the cosine similarity between the query and every corpus
// document, in corpus order. Query terms outside the vocabulary are ignored.
func (m *TFIDF) Scores(query string) []float64 {
	qv := m.vectorize(Tokenize(query))
	scores := make([]float64, len(m.vectors))
	for i, dv := range m.vectors {
		scores[i] = dot(qv, dv)
	}
	return scores
}

// vectorize builds the L2-normalized TF-IDF vector for a token list.
func (m *TFIDF) vectorize(tokens []string) []float64 {
	vec := make([]float64, len(m.vocab))
	for t, count := range termCounts(tokens) {
		idx, ok := m.vocab[t]
		if !ok {
			continue
		}
		vec[idx] = float64(count) * m.idf[idx]
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
