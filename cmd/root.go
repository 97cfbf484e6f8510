// Package cmd implements the raglab command line interface. Each
// subcommand is one lab: chunking strategies, vector store operations,
// lexical ranking, the full pipeline walkthrough, and the baseline
// debugging exercise.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/raglab/raglab/internal/config"
	"github.com/raglab/raglab/internal/embed"
	"github.com/raglab/raglab/internal/log"
	"github.com/raglab/raglab/internal/vectorstore"
)

var debugFlag bool

var rootCmd = &cobra.Command{
	Use:   "raglab",
	Short: "raglab - hands-on retrieval-augmented generation labs",
	Long: `raglab is a set of hands-on labs for retrieval-augmented generation.

Each subcommand demonstrates one building block: document chunking,
vector storage and search, lexical ranking, the complete RAG pipeline,
and a deliberately broken retrieval system to debug.

All labs run offline by default using a deterministic local embedder.
Set RAGLAB_PROVIDER=openai and OPENAI_API_KEY to use real embeddings.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	// A missing .env is fine; explicit environment always wins.
	_ = godotenv.Load()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")
}

// newLogger builds the CLI logger. Logs go to stderr so lab output on
// stdout stays clean.
func newLogger() log.Logger {
	cfg := log.Config{Level: slog.LevelInfo}
	if debugFlag {
		cfg.Level = slog.LevelDebug
	}
	return log.NewWithWriter(os.Stderr, cfg)
}

// newEmbedder builds the configured embedder, wrapped in a cache. The cache
// uses Redis when an address is configured and process memory otherwise.
func newEmbedder(cfg *config.Config, logger log.Logger) (embed.Embedder, error) {
	var (
		inner embed.Embedder
		scope string
		err   error
	)
	switch cfg.Provider {
	case config.ProviderOpenAI:
		inner, err = embed.NewOpenAI(os.Getenv("OPENAI_API_KEY"), cfg.EmbeddingModel)
		if err != nil {
			return nil, err
		}
		scope = cfg.EmbeddingModel
	default:
		inner = embed.NewLocal()
		scope = config.ProviderLocal
	}

	store, err := newCacheStore(cfg)
	if err != nil {
		return nil, err
	}
	return embed.NewCache(inner, store, scope, logger), nil
}

// newBackend builds the configured vector store backend. The persist flag
// selects on-disk chromem instead of in-memory.
func newBackend(ctx context.Context, cfg *config.Config, collection string, persist bool, dim int) (vectorstore.Backend, error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		return vectorstore.NewPostgres(ctx, cfg.PostgresDSN(), collection, dim)
	case config.BackendQdrant:
		return newQdrantBackend(ctx, cfg, collection, dim)
	default:
		if persist {
			return vectorstore.NewChromemPersistent(cfg.PersistPath, collection)
		}
		return vectorstore.NewChromem(collection)
	}
}

// newStore wires the configured embedder and backend into a Store.
func newStore(ctx context.Context, cfg *config.Config, logger log.Logger, collection string, persist bool) (*vectorstore.Store, error) {
	embedder, err := newEmbedder(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	backend, err := newBackend(ctx, cfg, collection, persist, embedder.Dimension())
	if err != nil {
		return nil, fmt.Errorf("create %s backend: %w", cfg.StoreBackend, err)
	}
	return vectorstore.New(embedder, backend, logger), nil
}
