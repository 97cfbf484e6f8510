package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/raglab/raglab/internal/config"
)

// Version information (injected at build time via ldflags)
var (
	AppVersion = "development"
	BuildTime  = "unknown"
	GitCommit  = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version and configuration",
	RunE: func(_ *cobra.Command, _ []string) error {
		return runVersion()
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion() error {
	fmt.Printf("raglab %s\n", AppVersion)
	fmt.Printf("Build Time: %s\n", BuildTime)
	fmt.Printf("Git Commit: %s\n", GitCommit)
	fmt.Println()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	fmt.Println("Configuration:")
	fmt.Printf("  Provider: %s\n", cfg.Provider)
	fmt.Printf("  Embedding model: %s\n", cfg.EmbeddingModel)
	fmt.Printf("  Chat model: %s\n", cfg.ChatModel)
	fmt.Printf("  Store backend: %s\n", cfg.StoreBackend)
	fmt.Printf("  Persist path: %s\n", cfg.PersistPath)

	// Only relevant for the openai provider, but worth surfacing either way.
	key := os.Getenv("OPENAI_API_KEY")
	if key != "" && len(key) > 8 {
		fmt.Printf("  OPENAI_API_KEY: %s...%s (configured)\n", key[:4], key[len(key)-4:])
	} else if key != "" {
		fmt.Println("  OPENAI_API_KEY: (configured)")
	} else {
		fmt.Println("  OPENAI_API_KEY: not set")
		fmt.Println()
		fmt.Println("Hint: the local provider needs no key. For real embeddings:")
		fmt.Println("  export RAGLAB_PROVIDER=openai")
		fmt.Println("  export OPENAI_API_KEY=your-api-key")
	}
	return nil
}
