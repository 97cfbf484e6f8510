package embed

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/raglab/raglab/internal/log"
)

// countingEmbedder wraps Local and counts inner calls so tests can assert
// what the cache absorbed.
type countingEmbedder struct {
	*Local
	calls atomic.Int64
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls.Add(1)
	return c.Local.Embed(ctx, text)
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	c.calls.Add(1)
	return c.Local.EmbedBatch(ctx, texts)
}

// failingStore errors on every operation.
type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]float32, error) {
	return nil, errors.New("store down")
}

func (failingStore) Set(context.Context, string, []float32) error {
	return errors.New("store down")
}

func TestCacheMemory(t *testing.T) {
	ctx := context.Background()

	t.Run("second embed is a hit", func(t *testing.T) {
		inner := &countingEmbedder{Local: NewLocal()}
		c := NewCache(inner, NewMemoryStore(), "local", log.NewNop())

		first, err := c.Embed(ctx, "vacation policy")
		if err != nil {
			t.Fatalf("Embed: %v", err)
		}
		second, err := c.Embed(ctx, "vacation policy")
		if err != nil {
			t.Fatalf("Embed: %v", err)
		}

		if inner.calls.Load() != 1 {
			t.Errorf("inner embedder called %d times, want 1", inner.calls.Load())
		}
		if CosineSimilarity(first, second) < 0.9999 {
			t.Error("cached vector differs from the original")
		}
		if hits, misses := c.Stats(); hits != 1 || misses != 1 {
			t.Errorf("stats = %d hits / %d misses, want 1/1", hits, misses)
		}
	})

	t.Run("batch embeds only the misses", func(t *testing.T) {
		inner := &countingEmbedder{Local: NewLocal()}
		store := NewMemoryStore()
		c := NewCache(inner, store, "local", log.NewNop())

		if _, err := c.Embed(ctx, "alpha"); err != nil {
			t.Fatalf("Embed: %v", err)
		}

		vecs, err := c.EmbedBatch(ctx, []string{"alpha", "bravo", "charlie"})
		if err != nil {
			t.Fatalf("EmbedBatch: %v", err)
		}
		if len(vecs) != 3 {
			t.Fatalf("got %d vectors, want 3", len(vecs))
		}
		for i, v := range vecs {
			if v == nil {
				t.Errorf("vector %d is nil", i)
			}
		}
		// One call for the warm-up embed, one for the batch of misses.
		if inner.calls.Load() != 2 {
			t.Errorf("inner embedder called %d times, want 2", inner.calls.Load())
		}
		if store.Len() != 3 {
			t.Errorf("store holds %d vectors, want 3", store.Len())
		}
	})

	t.Run("scope separates models", func(t *testing.T) {
		a := NewCache(NewLocal(), NewMemoryStore(), "model-a", log.NewNop())
		b := NewCache(NewLocal(), NewMemoryStore(), "model-b", log.NewNop())
		if a.Key("same text") == b.Key("same text") {
			t.Error("different scopes produced the same key")
		}
	})

	t.Run("broken store degrades to direct embedding", func(t *testing.T) {
		inner := &countingEmbedder{Local: NewLocal()}
		c := NewCache(inner, failingStore{}, "local", log.NewNop())

		for i := 0; i < 2; i++ {
			vec, err := c.Embed(ctx, "still works")
			if err != nil {
				t.Fatalf("Embed with broken store: %v", err)
			}
			if len(vec) != LocalDimension {
				t.Fatalf("got %d dims, want %d", len(vec), LocalDimension)
			}
		}
		if inner.calls.Load() != 2 {
			t.Errorf("inner embedder called %d times, want 2", inner.calls.Load())
		}
	})
}

func TestRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		store := NewRedisStore(client, 0)
		want := []float32{0.25, -0.5, 1}

		if err := store.Set(ctx, "k1", want); err != nil {
			t.Fatalf("Set: %v", err)
		}
		got, err := store.Get(ctx, "k1")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if len(got) != len(want) {
			t.Fatalf("got %d values, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("value %d = %v, want %v", i, got[i], want[i])
			}
		}
	})

	t.Run("missing key", func(t *testing.T) {
		store := NewRedisStore(client, 0)
		if _, err := store.Get(ctx, "absent"); !errors.Is(err, ErrCacheMiss) {
			t.Errorf("err = %v, want ErrCacheMiss", err)
		}
	})

	t.Run("ttl expires entries", func(t *testing.T) {
		store := NewRedisStore(client, time.Minute)
		if err := store.Set(ctx, "expiring", []float32{1}); err != nil {
			t.Fatalf("Set: %v", err)
		}

		mr.FastForward(2 * time.Minute)

		if _, err := store.Get(ctx, "expiring"); !errors.Is(err, ErrCacheMiss) {
			t.Errorf("err = %v, want ErrCacheMiss after ttl", err)
		}
	})

	t.Run("backs the cache", func(t *testing.T) {
		inner := &countingEmbedder{Local: NewLocal()}
		c := NewCache(inner, NewRedisStore(client, 0), "local", log.NewNop())

		if _, err := c.Embed(ctx, "shared cache entry"); err != nil {
			t.Fatalf("Embed: %v", err)
		}
		if _, err := c.Embed(ctx, "shared cache entry"); err != nil {
			t.Fatalf("Embed: %v", err)
		}
		if inner.calls.Load() != 1 {
			t.Errorf("inner embedder called %d times, want 1", inner.calls.Load())
		}
	})
}
