package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DocumentRow is the relational shape of one rag_documents row.
type DocumentRow struct {
	ID               string
	PipelineID       string
	FileName         string
	FileSizeBytes    int64
	FileType         string
	ChunkCount       int
	CharacterCount   int
	WordCount        int
	Status           string
	ErrorMessage     string
	ProcessingTimeMs int64
	CreatedAt        time.Time
}

// DocumentRepository is the persistence boundary for per-pipeline documents.
type DocumentRepository struct {
	pool *pgxpool.Pool
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

const documentColumns = `id, pipeline_id, file_name, file_size_bytes, file_type, chunk_count,
	character_count, word_count, status, error_message, processing_time_ms, created_at`

func scanDocumentRow(row pgx.Row) (*DocumentRow, error) {
	var d DocumentRow
	var errMsg *string
	err := row.Scan(&d.ID, &d.PipelineID, &d.FileName, &d.FileSizeBytes, &d.FileType,
		&d.ChunkCount, &d.CharacterCount, &d.WordCount, &d.Status, &errMsg, &d.ProcessingTimeMs, &d.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if errMsg != nil {
		d.ErrorMessage = *errMsg
	}
	return &d, nil
}

// Create inserts a processed or errored document row.
func (r *DocumentRepository) Create(ctx context.Context, d DocumentRow) (*DocumentRow, error) {
	var errMsg interface{}
	if d.ErrorMessage != "" {
		errMsg = d.ErrorMessage
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO rag_documents (pipeline_id, file_name, file_size_bytes, file_type, chunk_count,
			character_count, word_count, status, error_message, processing_time_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+documentColumns,
		d.PipelineID, d.FileName, d.FileSizeBytes, d.FileType, d.ChunkCount,
		d.CharacterCount, d.WordCount, d.Status, errMsg, d.ProcessingTimeMs)
	return scanDocumentRow(row)
}

// Get fetches one document by id, scoped to its pipeline.
func (r *DocumentRepository) Get(ctx context.Context, pipelineID, documentID string) (*DocumentRow, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+documentColumns+` FROM rag_documents WHERE id = $1 AND pipeline_id = $2`,
		documentID, pipelineID)
	return scanDocumentRow(row)
}

// ListByPipeline returns every document ingested into a pipeline, newest first.
func (r *DocumentRepository) ListByPipeline(ctx context.Context, pipelineID string) ([]DocumentRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+documentColumns+` FROM rag_documents WHERE pipeline_id = $1 ORDER BY created_at DESC`, pipelineID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DocumentRow
	for rows.Next() {
		d, err := scanDocumentRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// Delete removes one document row, scoped to its pipeline.
func (r *DocumentRepository) Delete(ctx context.Context, pipelineID, documentID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM rag_documents WHERE id = $1 AND pipeline_id = $2`, documentID, pipelineID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
