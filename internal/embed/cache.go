package embed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/raglab/raglab/internal/log"
)

// ErrCacheMiss is returned by a CacheStore when the key is absent.
var ErrCacheMiss = errors.New("embed: cache miss")

// CacheStore holds previously computed vectors by key.
// Implementations: MemoryStore, RedisStore.
type CacheStore interface {
	// Get returns the cached vector or ErrCacheMiss.
	Get(ctx context.Context, key string) ([]float32, error)

	// Set stores a vector under the key.
	Set(ctx context.Context, key string, vec []float32) error
}

// Cache wraps an Embedder so each distinct text is only embedded once.
// Store failures are logged and the text is embedded directly, so a broken
// cache degrades to the uncached path instead of failing requests.
type Cache struct {
	inner  Embedder
	store  CacheStore
	scope  string
	logger log.Logger

	hits   int64
	misses int64
	mu     sync.Mutex
}

// NewCache wraps inner with the given store. The scope is mixed into every
// key so vectors from different providers or models never collide; pass the
// model name.
func NewCache(inner Embedder, store CacheStore, scope string, logger log.Logger) *Cache {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Cache{inner: inner, store: store, scope: scope, logger: logger}
}

// Dimension implements Embedder.
func (c *Cache) Dimension() int { return c.inner.Dimension() }

// Key returns the cache key for a text: the hex SHA-256 of the scope and
// the text.
func (c *Cache) Key(text string) string {
	sum := sha256.Sum256([]byte(c.scope + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

// Stats returns the hit and miss counts since construction.
func (c *Cache) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Embed implements Embedder.
func (c *Cache) Embed(ctx context.Context, text string) ([]float32, error) {
	key := c.Key(text)

	vec, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		c.count(true)
		return vec, nil
	case errors.Is(err, ErrCacheMiss):
		c.count(false)
	default:
		c.count(false)
		c.logger.Warn("embedding cache read failed", "error", err)
	}

	vec, err = c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := c.store.Set(ctx, key, vec); err != nil {
		c.logger.Warn("embedding cache write failed", "error", err)
	}
	return vec, nil
}

// EmbedBatch implements Embedder. Cached texts are served from the store;
// the remainder goes to the inner embedder in a single batch.
func (c *Cache) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}

	out := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int

	for i, text := range texts {
		vec, err := c.store.Get(ctx, c.Key(text))
		if err == nil {
			c.count(true)
			out[i] = vec
			continue
		}
		if !errors.Is(err, ErrCacheMiss) {
			c.logger.Warn("embedding cache read failed", "error", err)
		}
		c.count(false)
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) == 0 {
		return out, nil
	}

	vecs, err := c.inner.EmbedBatch(ctx, missing)
	if err != nil {
		return nil, err
	}
	for j, vec := range vecs {
		out[missingIdx[j]] = vec
		if err := c.store.Set(ctx, c.Key(missing[j]), vec); err != nil {
			c.logger.Warn("embedding cache write failed", "error", err)
		}
	}
	return out, nil
}

func (c *Cache) count(hit bool) {
	c.mu.Lock()
	if hit {
		c.hits++
	} else {
		c.misses++
	}
	c.mu.Unlock()
}

// MemoryStore is an in-process CacheStore backed by a map.
type MemoryStore struct {
	mu   sync.RWMutex
	vecs map[string][]float32
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{vecs: make(map[string][]float32)}
}

// Get implements CacheStore.
func (m *MemoryStore) Get(_ context.Context, key string) ([]float32, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	vec, ok := m.vecs[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return vec, nil
}

// Set implements CacheStore.
func (m *MemoryStore) Set(_ context.Context, key string, vec []float32) error {
	m.mu.Lock()
	m.vecs[key] = vec
	m.mu.Unlock()
	return nil
}

// Len returns the number of cached vectors.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.vecs)
}

// redisKeyPrefix namespaces cache entries in a shared Redis instance.
const redisKeyPrefix = "raglab:embedding:"

// RedisStore is a CacheStore backed by Redis, for caches shared between
// runs or processes. Vectors are stored as JSON arrays.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore returns a RedisStore on the given client. A zero ttl means
// entries never expire.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Get implements CacheStore.
func (r *RedisStore) Get(ctx context.Context, key string) ([]float32, error) {
	data, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var vec []float32
	if err := json.Unmarshal(data, &vec); err != nil {
		return nil, fmt.Errorf("decode cached vector: %w", err)
	}
	return vec, nil
}

// Set implements CacheStore.
func (r *RedisStore) Set(ctx context.Context, key string, vec []float32) error {
	data, err := json.Marshal(vec)
	if err != nil {
		return fmt.Errorf("encode vector: %w", err)
	}
	if err := r.client.Set(ctx, redisKeyPrefix+key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
