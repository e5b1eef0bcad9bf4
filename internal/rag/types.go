// Package rag implements the pipeline registry, ingest coordinator,
// retriever, and answer synthesizer that bind the engine's other
// components (parser, chunker, embeddings, vector store, reranker, LLM
// dispatch) into the ingest and query flows.
package rag

import "time"

// Status is a pipeline's lifecycle state.
type Status string

const (
	StatusCreated   Status = "created"
	StatusIngesting Status = "ingesting"
	StatusReady     Status = "ready"
	StatusError     Status = "error"
)

// ChunkingStrategy selects one of the five chunker implementations.
type ChunkingStrategy string

const (
	ChunkingFixedSize ChunkingStrategy = "fixed_size"
	ChunkingRecursive ChunkingStrategy = "recursive"
	ChunkingSentence  ChunkingStrategy = "sentence"
	ChunkingParagraph ChunkingStrategy = "paragraph"
	ChunkingSemantic  ChunkingStrategy = "semantic"
)

// EmbeddingProvider selects one of the local or remote embedding models.
type EmbeddingProvider string

const (
	EmbeddingChromaDefault       EmbeddingProvider = "chroma_default"
	EmbeddingBGESmall            EmbeddingProvider = "bge_small"
	EmbeddingSTMPNet             EmbeddingProvider = "st_mpnet"
	EmbeddingSTRoberta           EmbeddingProvider = "st_roberta"
	EmbeddingQwen3               EmbeddingProvider = "qwen3_embed"
	EmbeddingOpenAI              EmbeddingProvider = "openai"
	EmbeddingGoogle              EmbeddingProvider = "google"
	EmbeddingSentenceTransformer EmbeddingProvider = "sentence_transformers"
	EmbeddingHuggingFace         EmbeddingProvider = "huggingface"
)

// VectorStoreType selects the vector store backend. Only "chroma" is a
// public enum choice; "qdrant" exists as an internal alternate adapter
// behind the same vectorstore.Store interface.
type VectorStoreType string

const (
	VectorStoreChroma VectorStoreType = "chroma"
	VectorStoreQdrant VectorStoreType = "qdrant"
)

// LLMProvider selects one of the six chat completion providers.
type LLMProvider string

const (
	LLMGemini     LLMProvider = "gemini"
	LLMGroq       LLMProvider = "groq"
	LLMOpenRouter LLMProvider = "openrouter"
	LLMOpenAI     LLMProvider = "openai"
	LLMAnthropic  LLMProvider = "anthropic"
	LLMDeepSeek   LLMProvider = "deepseek"
)

// FallbackOrder is the fixed provider iteration order used by the LLM
// dispatcher whenever the configured primary provider fails.
var FallbackOrder = []LLMProvider{LLMGemini, LLMGroq, LLMOpenRouter, LLMOpenAI, LLMAnthropic, LLMDeepSeek}

// RerankerModel selects the reranking strategy.
type RerankerModel string

const (
	RerankerQwen3 RerankerModel = "qwen3"
	RerankerLLM   RerankerModel = "llm"
)

// FilterOperator is a metadata filter comparison operator.
type FilterOperator string

const (
	OpEq  FilterOperator = "eq"
	OpNe  FilterOperator = "ne"
	OpGt  FilterOperator = "gt"
	OpGte FilterOperator = "gte"
	OpLt  FilterOperator = "lt"
	OpLte FilterOperator = "lte"
	OpIn  FilterOperator = "in"
	OpNin FilterOperator = "nin"
)

// MetadataFilter is one clause of a query's where-condition. Multiple
// filters on a request are implicitly AND-combined.
type MetadataFilter struct {
	Field string         `json:"field"`
	Op    FilterOperator `json:"op"`
	Value interface{}    `json:"value"`
}

// ChunkingConfig bounds come from SPEC_FULL.md §3: 100 <= ChunkSize <=
// 10000, 0 <= ChunkOverlap <= 2000 and ChunkOverlap < ChunkSize.
type ChunkingConfig struct {
	Strategy     ChunkingStrategy `json:"strategy"`
	ChunkSize    int              `json:"chunk_size"`
	ChunkOverlap int              `json:"chunk_overlap"`
}

// EmbeddingConfig picks the provider+model used to vectorize a pipeline's
// chunks. A pipeline's embedding config is immutable once it has a
// non-empty vector collection (see EmbeddingMismatch in internal/errs).
type EmbeddingConfig struct {
	Provider EmbeddingProvider `json:"provider"`
	Model    string            `json:"model,omitempty"`
	APIKey   string            `json:"-"`
}

// VectorStoreConfig selects the backing ANN index.
type VectorStoreConfig struct {
	Type VectorStoreType `json:"type"`
}

// RetrievalConfig controls the retriever and reranker.
type RetrievalConfig struct {
	TopK           int           `json:"top_k"`
	ScoreThreshold *float32      `json:"score_threshold,omitempty"`
	RerankEnabled  bool          `json:"rerank_enabled"`
	RerankModel    RerankerModel `json:"rerank_model,omitempty"`
	RerankTopK     int           `json:"rerank_top_k,omitempty"`
}

// LLMConfig picks the answer-synthesis provider and model.
type LLMConfig struct {
	Provider       LLMProvider `json:"provider"`
	Model          string      `json:"model,omitempty"`
	GenerateAnswer bool        `json:"generate_answer"`
}

// PipelineConfig bundles the five configuration blocks a pipeline is
// created with.
type PipelineConfig struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Chunking    ChunkingConfig    `json:"chunking_config"`
	Embedding   EmbeddingConfig   `json:"embedding_config"`
	VectorStore VectorStoreConfig `json:"vector_store_config"`
	Retrieval   RetrievalConfig   `json:"retrieval_config"`
	LLM         LLMConfig         `json:"llm_config"`
}

// DefaultPipelineConfig returns the bundle's zero-value-safe defaults for
// the whole pipeline.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Chunking: ChunkingConfig{
			Strategy:     ChunkingRecursive,
			ChunkSize:    512,
			ChunkOverlap: 50,
		},
		Embedding:   EmbeddingConfig{Provider: EmbeddingChromaDefault},
		VectorStore: VectorStoreConfig{Type: VectorStoreChroma},
		Retrieval:   RetrievalConfig{TopK: 5},
		LLM:         LLMConfig{Provider: LLMGemini, GenerateAnswer: false},
	}
}

// Pipeline is the durable catalog row plus its running counters.
type Pipeline struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Status        Status    `json:"status"`
	Config        PipelineConfig `json:"config"`
	DocumentCount int       `json:"document_count"`
	ChunkCount    int       `json:"chunk_count"`
	TotalQueries  int64     `json:"total_queries"`
	LastQueryAt   *time.Time `json:"last_query_at,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DocumentStatus is a document's terminal processing state.
type DocumentStatus string

const (
	DocumentProcessed DocumentStatus = "processed"
	DocumentError     DocumentStatus = "error"
)

// Document is a child row of exactly one Pipeline, never mutated after
// it reaches a terminal status.
type Document struct {
	ID               string         `json:"id"`
	PipelineID       string         `json:"pipeline_id"`
	FileName         string         `json:"file_name"`
	FileSizeBytes    int64          `json:"file_size_bytes"`
	FileType         string         `json:"file_type"`
	ChunkCount       int            `json:"chunk_count"`
	CharacterCount   int            `json:"character_count"`
	WordCount        int            `json:"word_count"`
	Status           DocumentStatus `json:"status"`
	ErrorMessage     string         `json:"error_message,omitempty"`
	ProcessingTimeMs int64          `json:"processing_time_ms"`
	CreatedAt        time.Time      `json:"created_at"`
}

// Chunk lives only in the vector store, never in the relational catalog.
type Chunk struct {
	ID         string                 `json:"id"`
	PipelineID string                 `json:"pipeline_id"`
	DocumentID string                 `json:"document_id"`
	Content    string                 `json:"content"`
	Index      int                    `json:"chunk_index"`
	Total      int                    `json:"chunk_total"`
	Metadata   map[string]interface{} `json:"metadata"`
	Embedding  []float32              `json:"-"`
}

// SearchResult is one retrieved (and optionally reranked) chunk.
type SearchResult struct {
	Chunk        Chunk    `json:"chunk"`
	Score        float32  `json:"score"`
	RerankScore  *float32 `json:"rerank_score,omitempty"`
}

// QueryResponse is the full answer to a pipeline query.
type QueryResponse struct {
	Results          []SearchResult `json:"results"`
	Answer           *string        `json:"answer,omitempty"`
	RerankingApplied bool           `json:"reranking_applied"`
	TotalResults     int            `json:"total_results"`
}

// Statistics is the externally visible summary of a pipeline's state.
type Statistics struct {
	PipelineID    string     `json:"pipeline_id"`
	DocumentCount int        `json:"document_count"`
	ChunkCount    int        `json:"chunk_count"`
	TotalQueries  int64      `json:"total_queries"`
	LastQueryAt   *time.Time `json:"last_query_at,omitempty"`
	Status        Status     `json:"status"`
}

// ValidateConfig enforces the bounds from SPEC_FULL.md §3.
func ValidateConfig(cfg PipelineConfig) error {
	if cfg.Name == "" {
		return newValidationError("name is required")
	}
	if cfg.Chunking.ChunkSize < 100 || cfg.Chunking.ChunkSize > 10_000 {
		return newValidationError("chunk_size must be between 100 and 10000")
	}
	if cfg.Chunking.ChunkOverlap < 0 || cfg.Chunking.ChunkOverlap > 2_000 {
		return newValidationError("chunk_overlap must be between 0 and 2000")
	}
	if cfg.Chunking.ChunkOverlap >= cfg.Chunking.ChunkSize {
		return newValidationError("chunk_overlap must be less than chunk_size")
	}
	if cfg.Retrieval.TopK < 1 || cfg.Retrieval.TopK > 50 {
		return newValidationError("top_k must be between 1 and 50")
	}
	if cfg.Retrieval.RerankTopK > cfg.Retrieval.TopK {
		return newValidationError("rerank_top_k must not exceed top_k")
	}
	if cfg.Retrieval.ScoreThreshold != nil {
		if *cfg.Retrieval.ScoreThreshold < 0.0 || *cfg.Retrieval.ScoreThreshold > 1.0 {
			return newValidationError("score_threshold must be between 0.0 and 1.0")
		}
	}
	return nil
}
