package repository

import (
	"context"
	"fmt"

	"github.com/cloo-solutions/docchat/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

const defaultChunkTable = "chunks"

// VectorIndex stores chunk embeddings in a pgvector-backed table. The
// namespace column keeps each document's vectors isolated; similarity is
// cosine distance mapped onto (0, 1] via 1/(1+distance).
//
// At 2048 dimensions the table sits above pgvector's ANN index limit, so
// queries run an exact scan within the namespace. Namespaces hold one
// document's chunks, which keeps that scan small.
type VectorIndex struct {
	pool  *pgxpool.Pool
	table string
}

func NewVectorIndex(pool *pgxpool.Pool) *VectorIndex {
	return NewVectorIndexWithTable(pool, defaultChunkTable)
}

func NewVectorIndexWithTable(pool *pgxpool.Pool, table string) *VectorIndex {
	if table == "" {
		table = defaultChunkTable
	}
	return &VectorIndex{pool: pool, table: table}
}

// Upsert replaces the namespace's vectors with the given chunks. Chunks and
// vectors are matched by position.
func (r *VectorIndex) Upsert(ctx context.Context, namespace string, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return domain.NewDomainError(domain.ErrCodeInternalError, "chunk and vector counts differ")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return indexError("begin upsert", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE namespace = $1`, r.table),
		namespace,
	); err != nil {
		return indexError("clear namespace", err)
	}

	batch := &pgx.Batch{}
	for i, c := range chunks {
		batch.Queue(
			fmt.Sprintf(
				`INSERT INTO %s (namespace, page, ordinal, content, embedding)
				 VALUES ($1, $2, $3, $4, $5)`, r.table),
			namespace, c.Page, c.Ordinal, c.Text, pgvector.NewVector(vectors[i]),
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return indexError("insert chunks", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return indexError("commit upsert", err)
	}
	return nil
}

// Query returns up to k chunks from the namespace ordered by descending
// similarity to the given vector.
func (r *VectorIndex) Query(ctx context.Context, namespace string, vector []float32, k int) ([]domain.ChunkMatch, error) {
	if k <= 0 {
		k = 8
	}

	rows, err := r.pool.Query(ctx,
		fmt.Sprintf(
			`SELECT namespace, page, ordinal, content, 1.0 / (1.0 + (embedding <=> $1)) AS score
			 FROM %s
			 WHERE namespace = $2
			 ORDER BY score DESC
			 LIMIT $3`, r.table),
		pgvector.NewVector(vector), namespace, k,
	)
	if err != nil {
		return nil, indexError("similarity search", err)
	}
	defer rows.Close()

	matches := make([]domain.ChunkMatch, 0, k)
	for rows.Next() {
		var m domain.ChunkMatch
		var score float64
		if err := rows.Scan(&m.DocumentID, &m.Page, &m.Ordinal, &m.Text, &score); err != nil {
			return nil, indexError("scan match", err)
		}
		m.Score = float32(score)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, indexError("read matches", err)
	}

	return matches, nil
}

// DeleteNamespace removes every vector belonging to the namespace. Deleting
// an empty namespace is not an error.
func (r *VectorIndex) DeleteNamespace(ctx context.Context, namespace string) error {
	if _, err := r.pool.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE namespace = $1`, r.table),
		namespace,
	); err != nil {
		return indexError("delete namespace", err)
	}
	return nil
}

func indexError(op string, err error) error {
	return domain.NewDomainErrorWithCause(domain.ErrCodeIndexUnavailable, "vector index: "+op+" failed", err)
}
