// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.raglab/config.yaml or ./config.yaml)
//  3. Default values (sensible defaults so every lab runs offline)
//
// Main configuration categories:
//   - Embedding: provider selection (local hashing vs OpenAI), model names
//   - Chunking: sizes and overlaps for each splitter
//   - Retrieval: top-k and hybrid scoring weights
//   - Store: vector store backend and connection settings
//   - Eval: target accuracy for the baseline exercise
//
// Security: sensitive values (passwords, API keys) are masked in MarshalJSON.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

var (
	// ErrMissingAPIKey indicates OPENAI_API_KEY is required but not set.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidProvider indicates the embedding provider is not supported.
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrInvalidChunkSize indicates a chunk size is out of range.
	ErrInvalidChunkSize = errors.New("invalid chunk size")

	// ErrInvalidChunkOverlap indicates the overlap is negative or >= chunk size.
	ErrInvalidChunkOverlap = errors.New("invalid chunk overlap")

	// ErrInvalidWeights indicates the hybrid scoring weights do not sum to 1.
	ErrInvalidWeights = errors.New("invalid hybrid weights")

	// ErrInvalidStoreBackend indicates the vector store backend is unknown.
	ErrInvalidStoreBackend = errors.New("invalid store backend")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidTopK indicates top-k is not a positive number.
	ErrInvalidTopK = errors.New("invalid top-k")
)

// Embedding provider identifiers used in Config.Provider.
const (
	// ProviderLocal is the deterministic offline embedder. Default, so every
	// lab runs without credentials.
	ProviderLocal = "local"

	// ProviderOpenAI uses the OpenAI embeddings API (requires OPENAI_API_KEY).
	ProviderOpenAI = "openai"
)

// Vector store backend identifiers used in Config.StoreBackend.
const (
	BackendChromem  = "chromem"
	BackendPostgres = "postgres"
	BackendQdrant   = "qdrant"
)

// DefaultEmbeddingModel is the OpenAI embedding model used when the openai
// provider is selected.
const DefaultEmbeddingModel = "text-embedding-3-small"

// DefaultChatModel is the OpenAI chat model used by the pipeline walkthrough.
const DefaultChatModel = "gpt-4o-mini"

// Config stores application configuration.
// SECURITY: sensitive fields are explicitly masked in MarshalJSON().
type Config struct {
	// Embedding configuration
	Provider       string `mapstructure:"provider" json:"provider"`               // "local" (default) or "openai"
	EmbeddingModel string `mapstructure:"embedding_model" json:"embedding_model"` // OpenAI embedding model
	ChatModel      string `mapstructure:"chat_model" json:"chat_model"`           // OpenAI chat model (pipeline demo)

	// Chunking configuration
	ChunkSize        int `mapstructure:"chunk_size" json:"chunk_size"`                 // recursive splitter max chars
	ChunkOverlap     int `mapstructure:"chunk_overlap" json:"chunk_overlap"`           // recursive splitter overlap
	FixedChunkSize   int `mapstructure:"fixed_chunk_size" json:"fixed_chunk_size"`     // baseline fixed window size
	FixedChunkStep   int `mapstructure:"fixed_chunk_step" json:"fixed_chunk_step"`     // baseline fixed window step
	SentenceMaxChars int `mapstructure:"sentence_max_chars" json:"sentence_max_chars"` // sentence splitter budget

	// Retrieval configuration
	TopK        int     `mapstructure:"top_k" json:"top_k"`
	TFIDFWeight float64 `mapstructure:"tfidf_weight" json:"tfidf_weight"`
	BM25Weight  float64 `mapstructure:"bm25_weight" json:"bm25_weight"`

	// Evaluation configuration
	TargetAccuracy float64 `mapstructure:"target_accuracy" json:"target_accuracy"`

	// Vector store configuration
	StoreBackend string `mapstructure:"store_backend" json:"store_backend"` // chromem (default), postgres, qdrant
	PersistPath  string `mapstructure:"persist_path" json:"persist_path"`   // chromem on-disk location

	// PostgreSQL configuration (store_backend = postgres)
	PostgresHost     string `mapstructure:"postgres_host" json:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port" json:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user" json:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password" json:"postgres_password"` // SENSITIVE: masked in MarshalJSON
	PostgresDBName   string `mapstructure:"postgres_db_name" json:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode" json:"postgres_ssl_mode"`

	// Qdrant configuration (store_backend = qdrant)
	QdrantURL        string `mapstructure:"qdrant_url" json:"qdrant_url"`
	QdrantAPIKey     string `mapstructure:"qdrant_api_key" json:"qdrant_api_key"` // SENSITIVE: masked in MarshalJSON
	QdrantCollection string `mapstructure:"qdrant_collection" json:"qdrant_collection"`

	// Redis embedding cache (empty address disables the cache)
	RedisAddr string `mapstructure:"redis_addr" json:"redis_addr"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".raglab"))
	}
	v.AddConfigPath(".")

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is not an error, defaults apply
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"config_name", "config.yaml")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns the built-in configuration without touching the filesystem.
// Used by tests and by labs that run with fixed parameters.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	// Unmarshal of hardcoded defaults cannot fail
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("BUG: unmarshaling default config: %v", err))
	}
	return &cfg
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	// Embedding defaults: local provider keeps every lab runnable offline
	v.SetDefault("provider", ProviderLocal)
	v.SetDefault("embedding_model", DefaultEmbeddingModel)
	v.SetDefault("chat_model", DefaultChatModel)

	// Chunking defaults (the baseline system deliberately uses the
	// fixed-window values; see internal/rag)
	v.SetDefault("chunk_size", 200)
	v.SetDefault("chunk_overlap", 50)
	v.SetDefault("fixed_chunk_size", 120)
	v.SetDefault("fixed_chunk_step", 100)
	v.SetDefault("sentence_max_chars", 400)

	// Retrieval defaults
	v.SetDefault("top_k", 3)
	v.SetDefault("tfidf_weight", 0.3)
	v.SetDefault("bm25_weight", 0.7)

	// Evaluation defaults
	v.SetDefault("target_accuracy", 90.0)

	// Store defaults
	v.SetDefault("store_backend", BackendChromem)
	v.SetDefault("persist_path", "./raglab_db")

	// PostgreSQL defaults (matching docker-compose.yml)
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "raglab")
	v.SetDefault("postgres_password", "raglab_dev_password")
	v.SetDefault("postgres_db_name", "raglab")
	v.SetDefault("postgres_ssl_mode", "disable")

	// Qdrant defaults
	v.SetDefault("qdrant_url", "")
	v.SetDefault("qdrant_collection", "raglab_docs")

	// Redis cache disabled by default
	v.SetDefault("redis_addr", "")
}

// bindEnvVariables binds environment variable overrides explicitly.
//
// NOTE: OPENAI_API_KEY is read directly by the embed and pipeline packages,
// not via viper. Validation checks its presence when provider is "openai".
func bindEnvVariables(v *viper.Viper) {
	// Hardcoded strings can't fail to bind; a panic here is a bug
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("provider", "RAGLAB_PROVIDER")
	mustBind("store_backend", "RAGLAB_STORE_BACKEND")
	mustBind("persist_path", "RAGLAB_PERSIST_PATH")
	mustBind("postgres_host", "RAGLAB_POSTGRES_HOST")
	mustBind("postgres_port", "RAGLAB_POSTGRES_PORT")
	mustBind("postgres_user", "RAGLAB_POSTGRES_USER")
	mustBind("postgres_password", "RAGLAB_POSTGRES_PASSWORD")
	mustBind("postgres_db_name", "RAGLAB_POSTGRES_DB")
	mustBind("qdrant_url", "RAGLAB_QDRANT_URL")
	mustBind("qdrant_api_key", "RAGLAB_QDRANT_API_KEY")
	mustBind("redis_addr", "RAGLAB_REDIS_ADDR")
}

// Validate checks the configuration for invalid values (fail-fast).
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderLocal:
		// No credentials needed
	case ProviderOpenAI:
		if os.Getenv("OPENAI_API_KEY") == "" {
			return fmt.Errorf("%w: provider %q requires OPENAI_API_KEY", ErrMissingAPIKey, c.Provider)
		}
	default:
		return fmt.Errorf("%w: %q (must be %q or %q)", ErrInvalidProvider, c.Provider, ProviderLocal, ProviderOpenAI)
	}

	if c.ChunkSize <= 0 || c.FixedChunkSize <= 0 || c.SentenceMaxChars <= 0 {
		return fmt.Errorf("%w: sizes must be positive", ErrInvalidChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: overlap %d must be in [0, %d)", ErrInvalidChunkOverlap, c.ChunkOverlap, c.ChunkSize)
	}
	if c.FixedChunkStep <= 0 {
		return fmt.Errorf("%w: fixed chunk step must be positive", ErrInvalidChunkSize)
	}

	if c.TopK <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTopK, c.TopK)
	}

	const weightTolerance = 1e-9
	if c.TFIDFWeight < 0 || c.BM25Weight < 0 ||
		c.TFIDFWeight+c.BM25Weight < 1-weightTolerance ||
		c.TFIDFWeight+c.BM25Weight > 1+weightTolerance {
		return fmt.Errorf("%w: tfidf=%.2f bm25=%.2f must be non-negative and sum to 1",
			ErrInvalidWeights, c.TFIDFWeight, c.BM25Weight)
	}

	switch c.StoreBackend {
	case BackendChromem, BackendPostgres, BackendQdrant:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStoreBackend, c.StoreBackend)
	}

	if c.StoreBackend == BackendPostgres {
		if c.PostgresPort < 1 || c.PostgresPort > 65535 {
			return fmt.Errorf("%w: %d", ErrInvalidPostgresPort, c.PostgresPort)
		}
	}

	return nil
}

// PostgresDSN returns the connection string for the PostgreSQL backend.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword,
		c.PostgresDBName, c.PostgresSSLMode)
}

// maskedValue is the placeholder for masked sensitive data.
const maskedValue = "████████"

// maskSecret masks a secret string for safe logging. Secrets of 8 chars or
// fewer are fully masked to prevent substring matching; longer secrets keep
// the first and last two characters for debug utility.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	return s[:2] + "<" + maskedValue + ">" + s[len(s)-2:]
}

// MarshalJSON implements json.Marshaler with explicit sensitive field masking.
// When adding new sensitive fields, update this method.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	a := alias(c)
	a.PostgresPassword = maskSecret(a.PostgresPassword)
	a.QdrantAPIKey = maskSecret(a.QdrantAPIKey)
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// String implements Stringer to prevent accidental printing of secrets.
func (c Config) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}
