package rag

import (
	"context"
	"encoding/json"

	"github.com/helixrag/ragengine/internal/database"
	"github.com/helixrag/ragengine/internal/errs"
	"github.com/helixrag/ragengine/internal/vectorstore"
)

// Registry is the pipeline catalog: create, fetch, list, and delete
// pipelines, and enforce the lifecycle and embedding-immutability
// invariants around them. It owns no chunking/embedding/vector-store
// logic itself; the ingest coordinator and retriever consult it for a
// pipeline's current config and status.
type Registry struct {
	pipelines *database.PipelineRepository
	documents *database.DocumentRepository
	stores    vectorstore.Factory
	optimizer *database.QueryOptimizer
}

// NewRegistry wires the registry to its repositories and vector store factory.
func NewRegistry(pipelines *database.PipelineRepository, documents *database.DocumentRepository, stores vectorstore.Factory) *Registry {
	return &Registry{pipelines: pipelines, documents: documents, stores: stores}
}

// WithQueryOptimizer attaches a cached fast path for ListReady, returning
// the same Registry for chaining at construction time.
func (r *Registry) WithQueryOptimizer(o *database.QueryOptimizer) *Registry {
	r.optimizer = o
	return r
}

// ListReady returns a denormalized summary of every READY pipeline,
// served from the query optimizer's cache when one is attached.
func (r *Registry) ListReady(ctx context.Context) ([]database.PipelineSummary, error) {
	if r.optimizer == nil {
		pipelines, err := r.List(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]database.PipelineSummary, 0, len(pipelines))
		for _, p := range pipelines {
			if p.Status != StatusReady {
				continue
			}
			out = append(out, database.PipelineSummary{
				ID: p.ID, Name: p.Name, Status: string(p.Status),
				DocumentCount: p.DocumentCount, ChunkCount: p.ChunkCount, TotalQueries: p.TotalQueries,
			})
		}
		return out, nil
	}
	return r.optimizer.GetReadyPipelines(ctx)
}

// Create validates cfg and inserts a new pipeline in the CREATED status.
// Create registers a pipeline row. It does not open the vector store
// collection up front; the collection is created lazily by the ingest
// coordinator's first OpenOrCreate call, so there is nothing to roll back
// here if a later ingest fails.
func (r *Registry) Create(ctx context.Context, cfg PipelineConfig) (*Pipeline, error) {
	applyDefaults(&cfg)
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	if _, err := r.pipelines.GetByName(ctx, cfg.Name); err == nil {
		return nil, newConflictError("a pipeline named " + cfg.Name + " already exists")
	}

	row, err := r.pipelines.Create(ctx, cfg.Name, cfg.Description, cfg.Chunking, cfg.Embedding, cfg.VectorStore, cfg.Retrieval, cfg.LLM)
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, "create pipeline row", err)
	}
	return rowToPipeline(row)
}

// applyDefaults fills zero-valued config blocks from DefaultPipelineConfig
// so a caller can submit a partial config and still pass validation.
func applyDefaults(cfg *PipelineConfig) {
	def := DefaultPipelineConfig()
	if cfg.Chunking.Strategy == "" {
		cfg.Chunking = def.Chunking
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = def.Embedding.Provider
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore = def.VectorStore
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = def.Retrieval.TopK
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = def.LLM.Provider
	}
}

// Get fetches one pipeline by id.
func (r *Registry) Get(ctx context.Context, id string) (*Pipeline, error) {
	row, err := r.pipelines.Get(ctx, id)
	if err != nil {
		if err == database.ErrNotFound {
			return nil, newNotFoundError("pipeline " + id + " not found")
		}
		return nil, errs.Wrap(errs.KindInternal, "get pipeline", err)
	}
	return rowToPipeline(row)
}

// List returns every pipeline in the catalog.
func (r *Registry) List(ctx context.Context) ([]Pipeline, error) {
	rows, err := r.pipelines.List(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, "list pipelines", err)
	}
	out := make([]Pipeline, 0, len(rows))
	for i := range rows {
		p, err := rowToPipeline(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

// Delete removes a pipeline, its documents (cascade), and its vector
// collection.
func (r *Registry) Delete(ctx context.Context, id string) error {
	if r.stores != nil {
		store, err := r.stores.OpenOrCreate(ctx, id)
		if err == nil {
			_ = store.Drop(ctx)
		}
	}
	if err := r.pipelines.Delete(ctx, id); err != nil {
		if err == database.ErrNotFound {
			return newNotFoundError("pipeline " + id + " not found")
		}
		return errs.Wrap(errs.KindInternal, "delete pipeline", err)
	}
	return nil
}

// RequireReady fetches a pipeline and rejects it unless it is READY,
// the gate every query-path operation must pass through.
func (r *Registry) RequireReady(ctx context.Context, id string) (*Pipeline, error) {
	p, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusReady {
		return nil, newPipelineNotReadyError("pipeline " + id + " is not ready (status: " + string(p.Status) + ")")
	}
	return p, nil
}

// CheckEmbeddingCompatible enforces that an ingest cannot change the
// embedding provider/model of a pipeline that already has indexed
// documents, per the strict immutability rule.
func (r *Registry) CheckEmbeddingCompatible(p *Pipeline, requested EmbeddingConfig) error {
	if p.DocumentCount == 0 {
		return nil
	}
	if p.Config.Embedding.Provider != requested.Provider || p.Config.Embedding.Model != requested.Model {
		return newEmbeddingMismatchError("embedding config is immutable after first ingest: pipeline uses " +
			string(p.Config.Embedding.Provider) + ", requested " + string(requested.Provider))
	}
	return nil
}

// SetStatus transitions a pipeline's lifecycle status.
func (r *Registry) SetStatus(ctx context.Context, id string, status Status) error {
	if err := r.pipelines.SetStatus(ctx, id, string(status)); err != nil {
		if err == database.ErrNotFound {
			return newNotFoundError("pipeline " + id + " not found")
		}
		return errs.Wrap(errs.KindInternal, "update pipeline status", err)
	}
	if r.optimizer != nil {
		r.optimizer.InvalidatePipelineCache()
	}
	return nil
}

// IncrementCounters adjusts document_count/chunk_count after an ingest.
func (r *Registry) IncrementCounters(ctx context.Context, id string, documentDelta, chunkDelta int) error {
	if err := r.pipelines.IncrementCounters(ctx, id, documentDelta, chunkDelta); err != nil {
		if err == database.ErrNotFound {
			return newNotFoundError("pipeline " + id + " not found")
		}
		return errs.Wrap(errs.KindInternal, "increment pipeline counters", err)
	}
	if r.optimizer != nil {
		r.optimizer.InvalidatePipelineCache()
	}
	return nil
}

// RecordQuery bumps a pipeline's query counters.
func (r *Registry) RecordQuery(ctx context.Context, id string) error {
	return r.pipelines.RecordQuery(ctx, id)
}

// Statistics assembles the externally visible summary for a pipeline.
func (r *Registry) Statistics(ctx context.Context, id string) (*Statistics, error) {
	p, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Statistics{
		PipelineID:    p.ID,
		DocumentCount: p.DocumentCount,
		ChunkCount:    p.ChunkCount,
		TotalQueries:  p.TotalQueries,
		LastQueryAt:   p.LastQueryAt,
		Status:        p.Status,
	}, nil
}

func rowToPipeline(row *database.PipelineRow) (*Pipeline, error) {
	p := &Pipeline{
		ID:            row.ID,
		Name:          row.Name,
		Description:   row.Description,
		Status:        Status(row.Status),
		DocumentCount: row.DocumentCount,
		ChunkCount:    row.ChunkCount,
		TotalQueries:  row.TotalQueries,
		LastQueryAt:   row.LastQueryAt,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	p.Name = row.Name

	if err := json.Unmarshal(row.ChunkingConfig, &p.Config.Chunking); err != nil {
		return nil, errs.Wrap(errs.KindInternal, "decode chunking config", err)
	}
	if err := json.Unmarshal(row.EmbeddingConfig, &p.Config.Embedding); err != nil {
		return nil, errs.Wrap(errs.KindInternal, "decode embedding config", err)
	}
	if err := json.Unmarshal(row.VectorStoreConfig, &p.Config.VectorStore); err != nil {
		return nil, errs.Wrap(errs.KindInternal, "decode vector store config", err)
	}
	if err := json.Unmarshal(row.RetrievalConfig, &p.Config.Retrieval); err != nil {
		return nil, errs.Wrap(errs.KindInternal, "decode retrieval config", err)
	}
	if err := json.Unmarshal(row.LLMConfig, &p.Config.LLM); err != nil {
		return nil, errs.Wrap(errs.KindInternal, "decode llm config", err)
	}
	p.Config.Name = row.Name
	p.Config.Description = row.Description
	return p, nil
}
