package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	pgxvector "github.com/pgvector/pgvector-go/pgx"
)

// Postgres is a Backend over a Postgres table with a pgvector column.
// Cosine distance drives ordering; similarity is reported as 1 - distance.
type Postgres struct {
	pool  *pgxpool.Pool
	table string
	dim   int
}

// NewPostgres connects to Postgres and prepares the documents table with an
// embedding column of the given dimension. The pgvector extension is created
// if missing.
func NewPostgres(ctx context.Context, dsn, table string, dim int) (*Postgres, error) {
	if table == "" {
		table = "documents"
	}
	if dim <= 0 {
		return nil, fmt.Errorf("invalid embedding dimension %d", dim)
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	p := &Postgres{pool: pool, table: table, dim: dim}
	if err := p.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("create vector extension: %w", err)
	}

	schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id         text PRIMARY KEY,
			content    text NOT NULL,
			metadata   jsonb NOT NULL DEFAULT '{}',
			embedding  vector(%d) NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		)`, p.table, p.dim)
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create table %s: %w", p.table, err)
	}

	index := fmt.Sprintf(
		`CREATE INDEX IF NOT EXISTS %s_embedding_idx ON %s USING hnsw (embedding vector_cosine_ops)`,
		p.table, p.table)
	if _, err := p.pool.Exec(ctx, index); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// Upsert implements Backend.
func (p *Postgres) Upsert(ctx context.Context, docs []Document) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, content, metadata, embedding)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			content   = EXCLUDED.content,
			metadata  = EXCLUDED.metadata,
			embedding = EXCLUDED.embedding`, p.table)

	for _, d := range docs {
		if len(d.Embedding) == 0 {
			return fmt.Errorf("document %q has no embedding", d.ID)
		}
		meta, err := json.Marshal(metadataOrEmpty(d.Metadata))
		if err != nil {
			return fmt.Errorf("encode metadata for %q: %w", d.ID, err)
		}
		_, err = p.pool.Exec(ctx, query, d.ID, d.Content, meta, pgvector.NewVector(d.Embedding))
		if err != nil {
			return fmt.Errorf("upsert document %q: %w", d.ID, err)
		}
	}
	return nil
}

// Query implements Backend.
func (p *Postgres) Query(ctx context.Context, vector []float32, k int, filter map[string]string) ([]Result, error) {
	query := fmt.Sprintf(`
		SELECT id, content, metadata, embedding, 1 - (embedding <=> $1) AS similarity
		FROM %s
		WHERE metadata @> $2
		ORDER BY embedding <=> $1
		LIMIT $3`, p.table)

	filterJSON, err := json.Marshal(metadataOrEmpty(filter))
	if err != nil {
		return nil, fmt.Errorf("encode filter: %w", err)
	}

	rows, err := p.pool.Query(ctx, query, pgvector.NewVector(vector), filterJSON, k)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var meta []byte
		var emb pgvector.Vector
		if err := rows.Scan(&r.ID, &r.Content, &meta, &emb, &r.Similarity); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if err := json.Unmarshal(meta, &r.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata for %q: %w", r.ID, err)
		}
		r.Embedding = emb.Slice()
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return results, nil
}

// Count implements Backend.
func (p *Postgres) Count(ctx context.Context) (int, error) {
	var count int
	query := fmt.Sprintf(`SELECT count(*) FROM %s`, p.table)
	if err := p.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return count, nil
}

// List implements Lister.
func (p *Postgres) List(ctx context.Context) ([]Document, error) {
	query := fmt.Sprintf(`SELECT id, content, metadata, embedding FROM %s ORDER BY id`, p.table)
	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		var meta []byte
		var emb pgvector.Vector
		if err := rows.Scan(&d.ID, &d.Content, &meta, &emb); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if err := json.Unmarshal(meta, &d.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata for %q: %w", d.ID, err)
		}
		d.Embedding = emb.Slice()
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return docs, nil
}

// Close implements Backend.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// metadataOrEmpty keeps jsonb values as objects rather than SQL nulls.
func metadataOrEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

var _ Backend = (*Postgres)(nil)
var _ Lister = (*Postgres)(nil)
