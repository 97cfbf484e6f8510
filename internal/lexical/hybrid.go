package lexical

// Hybrid combines TF-IDF cosine similarity and BM25 into one score per
// document. BM25 scores are unbounded, so they are max-normalized into
// [0,1] before weighting; TF-IDF cosines are already in [0,1].
//
//	score = WeightTFIDF*tfidf + WeightBM25*bm25/max(bm25)
type Hybrid struct {
	// WeightTFIDF and WeightBM25 weight the two rankers. They should sum
	// to 1 for scores to stay in [0,1].
	WeightTFIDF float64
	WeightBM25  float64

	tfidf *TFIDF
	bm25  *BM25
}

// NewHybrid builds both rankers over the corpus. Weights default to an even
// 0.5/0.5 split when both are zero.
func NewHybrid(docs []string, weightTFIDF, weightBM25 float64) *Hybrid {
	if weightTFIDF == 0 && weightBM25 == 0 {
		weightTFIDF, weightBM25 = 0.5, 0.5
	}
	return &Hybrid{
		WeightTFIDF: weightTFIDF,
		WeightBM25:  weightBM25,
		tfidf:       NewTFIDF(docs),
		bm25:        NewBM25(docs),
	}
}

// Docs returns the corpus the rankers were built on.
func (h *Hybrid) Docs() []string { return h.tfidf.Docs() }

// Scores returns the combined score of every corpus document for the query,
// in corpus order.
func (h *Hybrid) Scores(query string) []float64 {
	tfidfScores := h.tfidf.Scores(query)
	bm25Scores := normalizeMax(h.bm25.Scores(query))

	scores := make([]float64, len(tfidfScores))
	for i := range scores {
		scores[i] = h.WeightTFIDF*tfidfScores[i] + h.WeightBM25*bm25Scores[i]
	}
	return scores
}

// normalizeMax scales scores by the maximum value. All-zero input is
// returned unchanged.
func normalizeMax(scores []float64) []float64 {
	var max float64
	for _, s := range scores {
		if s > max {
			max = s
		}
	}
	if max == 0 {
		return scores
	}
	out := make([]float64, len(scores))
	for i, s := range scores {
		out[i] = s / max
	}
	return out
}
