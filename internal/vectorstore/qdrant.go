package vectorstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// qdrant point payload keys.
const (
	payloadDocID   = "doc_id"
	payloadContent = "content"
	metadataPrefix = "meta_"
)

// Qdrant is a Backend over a Qdrant collection.
//
// Qdrant point IDs must be UUIDs or integers, so document IDs are mapped to
// deterministic UUIDs and the original ID travels in the payload.
type Qdrant struct {
	client     *qdrant.Client
	collection string
}

// QdrantConfig holds Qdrant connection settings.
type QdrantConfig struct {
	Host       string
	Port       int
	APIKey     string
	UseTLS     bool
	Collection string

	// Dimension is the embedding size used when the collection has to be
	// created.
	Dimension int
}

// NewQdrant connects to Qdrant and creates the collection if it does not
// exist.
func NewQdrant(ctx context.Context, cfg QdrantConfig) (*Qdrant, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("qdrant host is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}
	if cfg.Collection == "" {
		cfg.Collection = "documents"
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}

	q := &Qdrant{client: client, collection: cfg.Collection}
	if err := q.ensureCollection(ctx, cfg.Dimension); err != nil {
		client.Close()
		return nil, err
	}
	return q, nil
}

func (q *Qdrant) ensureCollection(ctx context.Context, dim int) error {
	exists, err := q.client.CollectionExists(ctx, q.collection)
	if err != nil {
		return fmt.Errorf("check collection %q: %w", q.collection, err)
	}
	if exists {
		return nil
	}
	if dim <= 0 {
		return fmt.Errorf("invalid embedding dimension %d", dim)
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dim),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection %q: %w", q.collection, err)
	}
	return nil
}

// pointID maps a document ID to a stable UUID.
func pointID(docID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(docID)).String()
}

// Upsert implements Backend.
func (q *Qdrant) Upsert(ctx context.Context, docs []Document) error {
	points := make([]*qdrant.PointStruct, len(docs))
	for i, d := range docs {
		if len(d.Embedding) == 0 {
			return fmt.Errorf("document %q has no embedding", d.ID)
		}

		payload := map[string]any{
			payloadDocID:   d.ID,
			payloadContent: d.Content,
		}
		for k, v := range d.Metadata {
			payload[metadataPrefix+k] = v
		}

		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(pointID(d.ID)),
			Vectors: qdrant.NewVectors(d.Embedding...),
			Payload: qdrant.NewValueMap(payload),
		}
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upsert points: %w", err)
	}
	return nil
}

// Query implements Backend.
func (q *Qdrant) Query(ctx context.Context, vector []float32, k int, filter map[string]string) ([]Result, error) {
	limit := uint64(k)
	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		Filter:         buildFilter(filter),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("query points: %w", err)
	}

	results := make([]Result, 0, len(points))
	for _, point := range points {
		r := Result{Similarity: point.Score}
		for key, value := range point.Payload {
			switch key {
			case payloadDocID:
				r.ID = value.GetStringValue()
			case payloadContent:
				r.Content = value.GetStringValue()
			default:
				if len(key) > len(metadataPrefix) && key[:len(metadataPrefix)] == metadataPrefix {
					if r.Metadata == nil {
						r.Metadata = make(map[string]string)
					}
					r.Metadata[key[len(metadataPrefix):]] = value.GetStringValue()
				}
			}
		}
		results = append(results, r)
	}
	return results, nil
}

// buildFilter converts metadata equality pairs into a Qdrant filter.
func buildFilter(filter map[string]string) *qdrant.Filter {
	if len(filter) == 0 {
		return nil
	}

	conditions := make([]*qdrant.Condition, 0, len(filter))
	for key, value := range filter {
		conditions = append(conditions, &qdrant.Condition{
			ConditionOneOf: &qdrant.Condition_Field{
				Field: &qdrant.FieldCondition{
					Key:   metadataPrefix + key,
					Match: &qdrant.Match{MatchValue: &qdrant.Match_Keyword{Keyword: value}},
				},
			},
		})
	}
	return &qdrant.Filter{Must: conditions}
}

// Count implements Backend.
func (q *Qdrant) Count(ctx context.Context) (int, error) {
	exact := true
	count, err := q.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: q.collection,
		Exact:          &exact,
	})
	if err != nil {
		return 0, fmt.Errorf("count points: %w", err)
	}
	return int(count), nil
}

// Close implements Backend.
func (q *Qdrant) Close() error {
	return q.client.Close()
}

var _ Backend = (*Qdrant)(nil)
