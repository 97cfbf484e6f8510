package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raglab/raglab/internal/lexical"
	"github.com/raglab/raglab/internal/samples"
)

// lexicalQueries are the standard demo queries for the ranking labs.
var lexicalQueries = []string{
	"remote work policy",
	"health insurance benefits",
	"pet policy dogs",
}

var lexicalCmd = &cobra.Command{
	Use:   "lexical",
	Short: "Lexical ranking labs",
	Long: `Labs ranking the employee handbook with term-based scoring: TF-IDF
cosine similarity, BM25, a weighted hybrid of the two, and a
demonstration of where keyword matching breaks down.`,
}

var lexicalTFIDFCmd = &cobra.Command{
	Use:   "tfidf [query...]",
	Short: "Rank documents with TF-IDF cosine similarity",
	RunE: func(_ *cobra.Command, args []string) error {
		runLexicalRanker("TF-IDF", queriesOrDefault(args), func(docs []string) scorer {
			return lexical.NewTFIDF(docs)
		})
		return nil
	},
}

var lexicalBM25Cmd = &cobra.Command{
	Use:   "bm25 [query...]",
	Short: "Rank documents with BM25",
	RunE: func(_ *cobra.Command, args []string) error {
		runLexicalRanker("BM25", queriesOrDefault(args), func(docs []string) scorer {
			return lexical.NewBM25(docs)
		})
		return nil
	},
}

var lexicalHybridCmd = &cobra.Command{
	Use:   "hybrid [query]",
	Short: "Combine TF-IDF and BM25 with different weights",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		query := "remote work policy"
		if len(args) == 1 {
			query = args[0]
		}
		runLexicalHybrid(query)
		return nil
	},
}

var lexicalGapCmd = &cobra.Command{
	Use:   "gap",
	Short: "Show where keyword matching fails",
	RunE: func(_ *cobra.Command, _ []string) error {
		runLexicalGap()
		return nil
	},
}

func init() {
	lexicalCmd.AddCommand(
		lexicalTFIDFCmd,
		lexicalBM25Cmd,
		lexicalHybridCmd,
		lexicalGapCmd,
	)
	rootCmd.AddCommand(lexicalCmd)
}

// scorer is what every lexical ranker exposes.
type scorer interface {
	Scores(query string) []float64
}

func queriesOrDefault(args []string) []string {
	if len(args) > 0 {
		return args
	}
	return lexicalQueries
}

// runLexicalRanker ranks the handbook corpus for each query and prints the
// top three documents.
func runLexicalRanker(name string, queries []string, build func([]string) scorer) {
	corpus := samples.TechCorpHandbook()
	ranker := build(samples.HandbookTexts())

	fmt.Printf("%s search over %d handbook documents\n", name, len(corpus))
	for _, query := range queries {
		fmt.Printf("\nSearching for: %q\n", query)
		printTopDocs(corpus, ranker.Scores(query), 3)
	}
}

func runLexicalHybrid(query string) {
	corpus := samples.TechCorpHandbook()
	texts := samples.HandbookTexts()

	presets := []struct {
		tfidf, bm25 float64
		label       string
	}{
		{0.5, 0.5, "Equal weights"},
		{0.3, 0.7, "BM25 favored"},
		{0.7, 0.3, "TF-IDF favored"},
	}

	fmt.Printf("Hybrid search for: %q\n", query)
	for _, p := range presets {
		fmt.Printf("\n%s (TF-IDF: %.1f, BM25: %.1f)\n", p.label, p.tfidf, p.bm25)
		hybrid := lexical.NewHybrid(texts, p.tfidf, p.bm25)
		printTopDocs(corpus, hybrid.Scores(query), 3)
	}
}

func runLexicalGap() {
	corpus := samples.TechCorpHandbook()
	model := lexical.NewTFIDF(samples.HandbookTexts())

	// The handbook says "remote work", never "distributed workforce".
	query := "distributed workforce policies"
	fmt.Printf("Searching for: %q\n", query)

	scores := model.Scores(query)
	printTopDocs(corpus, scores, 3)

	top := lexical.TopK(scores, 1)
	if len(top) == 0 || top[0].Score < 0.05 {
		fmt.Println("\nNo relevant documents found.")
	}
	fmt.Println("\nThe query shares no vocabulary with \"remote work policy\", so")
	fmt.Println("term-based ranking scores it near zero even though the meaning")
	fmt.Println("matches. Embedding-based search closes this gap.")
}

func printTopDocs(corpus []samples.HandbookDoc, scores []float64, k int) {
	for i, sd := range lexical.TopK(scores, k) {
		fmt.Printf("  %d. Score: %.4f - %s\n", i+1, sd.Score, corpus[sd.Index].Name)
	}
}
