// Package database provides PostgreSQL access for the pipeline registry.
//
// Connection is established through an optimized pgxpool.Pool sized and
// tuned by PoolConfigOptions:
//
//	cfg := config.Load()
//	db, err := database.NewPostgresDB(ctx, cfg, log)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Repository Pattern
//
// Each domain entity has a corresponding repository built on pgx/v5:
//
//	type PipelineRepository struct {
//	    pool *pgxpool.Pool
//	}
//
//	func (r *PipelineRepository) Create(ctx context.Context, name, description string, chunking, embedding, vectorStore, retrieval, llm interface{}) (*PipelineRow, error)
//	func (r *PipelineRepository) Get(ctx context.Context, id string) (*PipelineRow, error)
//	func (r *PipelineRepository) GetByName(ctx context.Context, name string) (*PipelineRow, error)
//	func (r *PipelineRepository) List(ctx context.Context) ([]PipelineRow, error)
//	func (r *PipelineRepository) SetStatus(ctx context.Context, id, status string) error
//	func (r *PipelineRepository) IncrementCounters(ctx context.Context, id string, documentDelta, chunkDelta int) error
//	func (r *PipelineRepository) RecordQuery(ctx context.Context, id string) error
//	func (r *PipelineRepository) Delete(ctx context.Context, id string) error
//
// # Available Repositories
//
//   - PipelineRepository: pipeline registry rows (rag_pipelines)
//   - DocumentRepository: ingested document metadata (rag_documents)
//
// # Schema
//
//	rag_pipelines  - one row per registered pipeline, holding its config
//	                 blocks (chunking, embedding, vector store, retrieval,
//	                 LLM) as JSONB and running document/chunk counters
//	rag_documents  - one row per ingested document, cascade-deleted with
//	                 its owning pipeline
//
// # Query Optimization
//
// QueryOptimizer wraps the pool with an in-memory result cache for the
// ready-pipelines listing. Writers that change document or chunk counts
// must call InvalidatePipelineCache so cached listings never outlive the
// write.
//
// # Environment Configuration
//
//	DB_HOST         - PostgreSQL host (default: localhost)
//	DB_PORT         - PostgreSQL port (default: 5432)
//	DB_USER         - Database username
//	DB_PASSWORD     - Database password
//	DB_NAME         - Database name
//	DB_SSLMODE      - SSL mode (disable, require, verify-ca, verify-full)
//	DATABASE_URL    - full connection string, takes precedence over the above
//
// # Key Files
//
//   - db.go: pool construction, migrations, health checks
//   - pool_config.go: pgxpool tuning via PoolConfigOptions
//   - query_optimizer.go: cached ready-pipelines listing
//   - pipeline_repository.go: rag_pipelines CRUD
//   - document_repository.go: rag_documents CRUD
package database
