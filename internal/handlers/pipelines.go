package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/helixrag/ragengine/internal/rag"
)

type createPipelineRequest struct {
	Name        string                `json:"name" binding:"required"`
	Description string                `json:"description"`
	Chunking    rag.ChunkingConfig    `json:"chunking_config"`
	Embedding   rag.EmbeddingConfig   `json:"embedding_config"`
	VectorStore rag.VectorStoreConfig `json:"vector_store_config"`
	Retrieval   rag.RetrievalConfig   `json:"retrieval_config"`
	LLM         rag.LLMConfig         `json:"llm_config"`
}

func (s *Server) handleCreatePipeline(c *gin.Context) {
	var req createPipelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg := rag.PipelineConfig{
		Name:        req.Name,
		Description: req.Description,
		Chunking:    req.Chunking,
		Embedding:   req.Embedding,
		VectorStore: req.VectorStore,
		Retrieval:   req.Retrieval,
		LLM:         req.LLM,
	}

	pipeline, err := s.engine.Registry.Create(c.Request.Context(), cfg)
	if err != nil {
		respondError(c, s.log, err)
		return
	}
	c.JSON(http.StatusCreated, pipeline)
}

func (s *Server) handleListPipelines(c *gin.Context) {
	if c.Query("status") == "ready" {
		summaries, err := s.engine.Registry.ListReady(c.Request.Context())
		if err != nil {
			respondError(c, s.log, err)
			return
		}
		c.JSON(http.StatusOK, summaries)
		return
	}

	pipelines, err := s.engine.Registry.List(c.Request.Context())
	if err != nil {
		respondError(c, s.log, err)
		return
	}
	c.JSON(http.StatusOK, pipelines)
}

func (s *Server) handleGetPipeline(c *gin.Context) {
	pipeline, err := s.engine.Registry.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, s.log, err)
		return
	}
	c.JSON(http.StatusOK, pipeline)
}

func (s *Server) handleDeletePipeline(c *gin.Context) {
	if err := s.engine.Registry.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, s.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.engine.Registry.Statistics(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, s.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleConfigOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"chunking_strategy": []rag.ChunkingStrategy{
			rag.ChunkingFixedSize, rag.ChunkingRecursive, rag.ChunkingSentence, rag.ChunkingParagraph, rag.ChunkingSemantic,
		},
		"embedding_provider": []rag.EmbeddingProvider{
			rag.EmbeddingChromaDefault, rag.EmbeddingBGESmall, rag.EmbeddingSTMPNet, rag.EmbeddingSTRoberta,
			rag.EmbeddingQwen3, rag.EmbeddingOpenAI, rag.EmbeddingGoogle, rag.EmbeddingSentenceTransformer, rag.EmbeddingHuggingFace,
		},
		"vector_store_type": []rag.VectorStoreType{rag.VectorStoreChroma},
		"llm_provider":       rag.FallbackOrder,
	})
}
