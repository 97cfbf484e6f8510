// Package eval scores a retrieval system against a fixed query suite.
//
// The pass criterion is strict on purpose: every required term of a case
// must appear, case-insensitively, in one and the same retrieved result.
// Terms scattered across results do not count. A fragmenting chunker fails
// this even when each term is individually retrievable, which is exactly
// the failure the debugging lab plants.
package eval

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/raglab/raglab/internal/vectorstore"
)

// TargetAccuracy is the percentage the retrieval system should reach.
const TargetAccuracy = 90

// DefaultResultsPerQuery is how many results each evaluation query asks for.
const DefaultResultsPerQuery = 2

// Searcher answers retrieval queries. *rag.System implements it.
type Searcher interface {
	Search(ctx context.Context, query string, n int) ([]vectorstore.Result, error)
}

// CaseResult records the outcome of a single case.
type CaseResult struct {
	Query  string
	Passed bool
}

// Report summarizes an evaluation run.
type Report struct {
	Accuracy float64
	Total    int
	Passed   int
	Cases    []CaseResult
}

// Gap returns how far accuracy falls short of the target. Negative means
// the target is exceeded.
func (r *Report) Gap() float64 {
	return TargetAccuracy - r.Accuracy
}

// Accuracy runs every case against the searcher, asking for nResults per
// query, and returns the report.
func Accuracy(ctx context.Context, s Searcher, cases []Case, nResults int) (*Report, error) {
	if nResults <= 0 {
		nResults = DefaultResultsPerQuery
	}

	report := &Report{Total: len(cases)}
	for _, c := range cases {
		results, err := s.Search(ctx, c.Query, nResults)
		if err != nil {
			return nil, fmt.Errorf("search %q: %w", c.Query, err)
		}

		passed := anyResultHasAll(results, c.MustHaveAll)
		if passed {
			report.Passed++
		}
		report.Cases = append(report.Cases, CaseResult{Query: c.Query, Passed: passed})
	}

	if report.Total > 0 {
		report.Accuracy = float64(report.Passed) / float64(report.Total) * 100
	}
	return report, nil
}

// anyResultHasAll reports whether a single result contains every term,
// case-insensitively.
func anyResultHasAll(results []vectorstore.Result, terms []string) bool {
	for _, r := range results {
		content := strings.ToLower(r.Content)
		all := true
		for _, term := range terms {
			if !strings.Contains(content, strings.ToLower(term)) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

// Run evaluates the searcher on the full suite, prints per-case outcomes
// to w, and writes "BASELINE:<accuracy>" to outputFile when it is non-empty.
func Run(ctx context.Context, w io.Writer, s Searcher, outputFile string) (*Report, error) {
	report, err := Accuracy(ctx, s, Cases(), DefaultResultsPerQuery)
	if err != nil {
		return nil, err
	}

	for _, c := range report.Cases {
		status := "FAIL"
		if c.Passed {
			status = "PASS"
		}
		fmt.Fprintf(w, "%s  %s\n", status, c.Query)
	}
	fmt.Fprintf(w, "\nAccuracy: %.1f%%\n", report.Accuracy)
	fmt.Fprintf(w, "Target:   %d%%\n", TargetAccuracy)
	fmt.Fprintf(w, "Gap:      %.1f%%\n", report.Gap())

	if outputFile != "" {
		line := fmt.Sprintf("BASELINE:%v", report.Accuracy)
		if err := os.WriteFile(outputFile, []byte(line), 0o644); err != nil {
			return nil, fmt.Errorf("write results: %w", err)
		}
		fmt.Fprintf(w, "\nResults saved to %s\n", outputFile)
	}
	return report, nil
}

// Inspect runs one query and prints each result's source, similarity and a
// content preview to w.
func Inspect(ctx context.Context, w io.Writer, s Searcher, query string, n int) error {
	results, err := s.Search(ctx, query, n)
	if err != nil {
		return fmt.Errorf("search %q: %w", query, err)
	}

	fmt.Fprintf(w, "Query: %s\n", query)
	if len(results) == 0 {
		fmt.Fprintln(w, "No results found")
		return nil
	}

	for i, r := range results {
		preview := r.Content
		if runes := []rune(preview); len(runes) > 200 {
			preview = string(runes[:200]) + "..."
		}
		fmt.Fprintf(w, "\nResult %d:\n", i+1)
		fmt.Fprintf(w, "  Source:     %s\n", r.Metadata["source"])
		fmt.Fprintf(w, "  Similarity: %.4f\n", r.Similarity)
		fmt.Fprintf(w, "  Content:    %s\n", preview)
	}
	return nil
}
