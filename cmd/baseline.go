package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/raglab/raglab/internal/chunk"
	"github.com/raglab/raglab/internal/config"
	"github.com/raglab/raglab/internal/eval"
	"github.com/raglab/raglab/internal/rag"
	"github.com/raglab/raglab/internal/samples"
)

var (
	docsDirFlag    string
	outputFileFlag string
	fixedFlag      bool
	inspectNFlag   int
)

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Score the retrieval system against the evaluation suite",
	Long: `Builds the retrieval system over the AWS compliance corpus, runs the
evaluation suite, and records the accuracy baseline.

The system starts deliberately misconfigured: a fixed 120-character
window shreds sentences, noise perturbs every query vector, and only
one result comes back per query. Accuracy lands far below the target.
The debugging exercise is to find and fix those defects; --fixed
shows the repaired configuration for comparison.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runBaseline(cmd.Context())
	},
}

var baselineInspectCmd = &cobra.Command{
	Use:   "inspect <query>",
	Short: "Show what the system retrieves for one query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBaselineInspect(cmd.Context(), args[0])
	},
}

func init() {
	baselineCmd.PersistentFlags().StringVar(&docsDirFlag, "docs", "", "index documents from this directory instead of the built-in corpus")
	baselineCmd.PersistentFlags().BoolVar(&fixedFlag, "fixed", false, "run the repaired configuration")
	baselineCmd.Flags().StringVar(&outputFileFlag, "output", "baseline_accuracy.txt", "file to record the accuracy baseline in")
	baselineInspectCmd.Flags().IntVar(&inspectNFlag, "n", eval.DefaultResultsPerQuery, "results to retrieve")
	baselineCmd.AddCommand(baselineInspectCmd)
	rootCmd.AddCommand(baselineCmd)
}

// newBaselineSystem builds and indexes the retrieval system the evaluation
// runs against.
func newBaselineSystem(ctx context.Context, cfg *config.Config) (*rag.System, func(), error) {
	logger := newLogger()

	store, err := newStore(ctx, cfg, logger, "aws_compliance", false)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = store.Close() }

	var opts []rag.Option
	if fixedFlag {
		opts = append(opts,
			rag.WithSplitter(chunk.NewSentenceSplitter(cfg.SentenceMaxChars)),
			rag.WithoutQueryNoise(),
			rag.WithMaxResults(cfg.TopK),
		)
	}
	sys := rag.New(store, logger, opts...)

	var chunks int
	if docsDirFlag != "" {
		chunks, err = sys.ProcessDocuments(ctx, docsDirFlag)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
	} else {
		docs, err := samples.AWSComplianceDocs()
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		for _, doc := range docs {
			n, err := sys.AddText(ctx, doc.Name, doc.Content)
			if err != nil {
				cleanup()
				return nil, nil, err
			}
			chunks += n
		}
	}

	fmt.Printf("Indexed %d chunks\n", chunks)
	return sys, cleanup, nil
}

func runBaseline(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	sys, cleanup, err := newBaselineSystem(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if fixedFlag {
		fmt.Println("Configuration: repaired (sentence chunking, no query noise, full result set)")
	} else {
		fmt.Println("Configuration: as shipped")
	}
	fmt.Println()

	report, err := eval.Run(ctx, os.Stdout, sys, outputFileFlag)
	if err != nil {
		return err
	}

	if report.Accuracy < eval.TargetAccuracy {
		fmt.Println("\nAccuracy is below target. Inspect a failing query with")
		fmt.Println("  raglab baseline inspect \"S3 bucket encryption policy\"")
		fmt.Println("and look at what comes back: how long are the results, do they")
		fmt.Println("end mid-sentence, how many are there?")
	} else {
		fmt.Println("\nTarget reached.")
	}
	return nil
}

func runBaselineInspect(ctx context.Context, query string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	sys, cleanup, err := newBaselineSystem(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Println()
	return eval.Inspect(ctx, os.Stdout, sys, query, inspectNFlag)
}

var _ eval.Searcher = (*rag.System)(nil)
