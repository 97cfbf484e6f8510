package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/raglab/raglab/internal/config"
	"github.com/raglab/raglab/internal/pipeline"
)

// demoQuestions run when no question is given on the command line.
var demoQuestions = []string{
	"What's the reimbursement policy for home office equipment?",
	"Can I get money back for buying a desk?",
	"How much can I claim for my home office?",
	"What's the travel expense policy?",
	"How many vacation days do I get?",
}

var showPromptFlag bool

var pipelineCmd = &cobra.Command{
	Use:   "pipeline [question]",
	Short: "Run the complete RAG pipeline",
	Long: `Runs the full retrieval-augmented generation flow over the TechCorp
policy corpus: chunk, embed, store, retrieve, augment, generate.

Without an argument it walks through a set of demo questions. With
the local provider the generation step returns a canned answer; the
retrieval and prompt assembly are the real thing.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		questions := demoQuestions
		if len(args) == 1 {
			questions = args
		}
		return runPipeline(cmd.Context(), questions)
	},
}

func init() {
	pipelineCmd.Flags().BoolVar(&showPromptFlag, "show-prompt", false, "print the augmented prompt sent to the generator")
	rootCmd.AddCommand(pipelineCmd)
}

func runPipeline(ctx context.Context, questions []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := newLogger()

	store, err := newStore(ctx, cfg, logger, "techcorp_policies", false)
	if err != nil {
		return err
	}
	defer store.Close()

	var chat pipeline.Chatter
	if cfg.Provider == config.ProviderOpenAI {
		chat, err = pipeline.NewOpenAIChat(os.Getenv("OPENAI_API_KEY"), cfg.ChatModel)
		if err != nil {
			return err
		}
	}

	p := pipeline.New(store, chat, logger)

	chunks, err := p.Index(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Indexed the policy corpus: %d chunks\n", chunks)

	for i, question := range questions {
		fmt.Printf("\n=== Question %d: %s\n", i+1, question)

		answer, err := p.Answer(ctx, question)
		if err != nil {
			return err
		}

		fmt.Println("Retrieved sources:")
		for j, src := range answer.Sources {
			title := src.Metadata["title"]
			if title == "" {
				title = src.ID
			}
			fmt.Printf("  %d. %s (similarity %.3f)\n", j+1, title, src.Similarity)
		}

		if showPromptFlag {
			fmt.Printf("\nAugmented prompt:\n%s\n", answer.Prompt)
		}

		fmt.Printf("\nResponse:\n%s\n", answer.Response)
	}
	return nil
}
