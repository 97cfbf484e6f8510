package cmd

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/raglab/raglab/internal/config"
	"github.com/raglab/raglab/internal/embed"
	"github.com/raglab/raglab/internal/vectorstore"
)

// newCacheStore picks the embedding cache store: Redis when configured,
// process memory otherwise.
func newCacheStore(cfg *config.Config) (embed.CacheStore, error) {
	if cfg.RedisAddr == "" {
		return embed.NewMemoryStore(), nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	return embed.NewRedisStore(client, 0), nil
}

// newQdrantBackend parses the configured Qdrant URL and connects.
func newQdrantBackend(ctx context.Context, cfg *config.Config, collection string, dim int) (vectorstore.Backend, error) {
	if cfg.QdrantURL == "" {
		return nil, fmt.Errorf("qdrant backend selected but qdrant_url is empty")
	}

	raw := cfg.QdrantURL
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse qdrant url: %w", err)
	}

	port := 6334
	if u.Port() != "" {
		port, err = strconv.Atoi(u.Port())
		if err != nil {
			return nil, fmt.Errorf("invalid qdrant port: %w", err)
		}
	}

	// An explicit qdrant_collection overrides the per-lab collection name.
	if cfg.QdrantCollection != "" {
		collection = cfg.QdrantCollection
	}

	return vectorstore.NewQdrant(ctx, vectorstore.QdrantConfig{
		Host:       u.Hostname(),
		Port:       port,
		APIKey:     cfg.QdrantAPIKey,
		UseTLS:     u.Scheme == "https",
		Collection: collection,
		Dimension:  dim,
	})
}
