package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PipelineRow is the relational shape of one rag_pipelines row. It is kept
// separate from the domain Pipeline type in internal/rag so this package
// has no dependency on it; the rag package converts between the two.
type PipelineRow struct {
	ID                string
	Name              string
	Description       string
	Status            string
	ChunkingConfig    []byte
	EmbeddingConfig   []byte
	VectorStoreConfig []byte
	RetrievalConfig   []byte
	LLMConfig         []byte
	DocumentCount     int
	ChunkCount        int
	TotalQueries      int64
	LastQueryAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ErrNotFound is returned by repository lookups that find no matching row.
var ErrNotFound = errors.New("row not found")

// PipelineRepository is the persistence boundary for the pipeline catalog.
type PipelineRepository struct {
	pool *pgxpool.Pool
}

func NewPipelineRepository(pool *pgxpool.Pool) *PipelineRepository {
	return &PipelineRepository{pool: pool}
}

const pipelineColumns = `id, name, description, status, chunking_config, embedding_config,
	vector_store_config, retrieval_config, llm_config, document_count, chunk_count,
	total_queries, last_query_at, created_at, updated_at`

func scanPipelineRow(row pgx.Row) (*PipelineRow, error) {
	var p PipelineRow
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Status, &p.ChunkingConfig,
		&p.EmbeddingConfig, &p.VectorStoreConfig, &p.RetrievalConfig, &p.LLMConfig,
		&p.DocumentCount, &p.ChunkCount, &p.TotalQueries, &p.LastQueryAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Create inserts a new pipeline row in the "created" status.
func (r *PipelineRepository) Create(ctx context.Context, name, description string, chunking, embedding, vectorStore, retrieval, llm interface{}) (*PipelineRow, error) {
	chunkingJSON, err := json.Marshal(chunking)
	if err != nil {
		return nil, fmt.Errorf("marshal chunking config: %w", err)
	}
	embeddingJSON, err := json.Marshal(embedding)
	if err != nil {
		return nil, fmt.Errorf("marshal embedding config: %w", err)
	}
	vectorStoreJSON, err := json.Marshal(vectorStore)
	if err != nil {
		return nil, fmt.Errorf("marshal vector store config: %w", err)
	}
	retrievalJSON, err := json.Marshal(retrieval)
	if err != nil {
		return nil, fmt.Errorf("marshal retrieval config: %w", err)
	}
	llmJSON, err := json.Marshal(llm)
	if err != nil {
		return nil, fmt.Errorf("marshal llm config: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO rag_pipelines (name, description, status, chunking_config, embedding_config,
			vector_store_config, retrieval_config, llm_config)
		VALUES ($1, $2, 'created', $3, $4, $5, $6, $7)
		RETURNING `+pipelineColumns,
		name, description, chunkingJSON, embeddingJSON, vectorStoreJSON, retrievalJSON, llmJSON)
	return scanPipelineRow(row)
}

// Get fetches a pipeline by id.
func (r *PipelineRepository) Get(ctx context.Context, id string) (*PipelineRow, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+pipelineColumns+` FROM rag_pipelines WHERE id = $1`, id)
	return scanPipelineRow(row)
}

// GetByName fetches a pipeline by its unique human name.
func (r *PipelineRepository) GetByName(ctx context.Context, name string) (*PipelineRow, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+pipelineColumns+` FROM rag_pipelines WHERE name = $1`, name)
	return scanPipelineRow(row)
}

// List returns every pipeline, most recently created first.
func (r *PipelineRepository) List(ctx context.Context) ([]PipelineRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+pipelineColumns+` FROM rag_pipelines ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PipelineRow
	for rows.Next() {
		p, err := scanPipelineRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// SetStatus transitions a pipeline's lifecycle status.
func (r *PipelineRepository) SetStatus(ctx context.Context, id, status string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE rag_pipelines SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementCounters adds deltas to a pipeline's document_count and
// chunk_count within the same row update used by the ingest coordinator.
func (r *PipelineRepository) IncrementCounters(ctx context.Context, id string, documentDelta, chunkDelta int) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE rag_pipelines
		SET document_count = document_count + $1, chunk_count = chunk_count + $2, updated_at = NOW()
		WHERE id = $3`, documentDelta, chunkDelta, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordQuery bumps total_queries and stamps last_query_at for a query
// served against a ready pipeline.
func (r *PipelineRepository) RecordQuery(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE rag_pipelines SET total_queries = total_queries + 1, last_query_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a pipeline row; rag_documents cascade via the foreign key.
func (r *PipelineRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM rag_pipelines WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
