package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/helixrag/ragengine/internal/rag"
)

type queryRequest struct {
	Query          string               `json:"query" binding:"required"`
	TopK           int                  `json:"top_k"`
	ScoreThreshold *float32             `json:"score_threshold"`
	Filters        []rag.MetadataFilter `json:"filters"`
	RerankEnabled  *bool                `json:"rerank_enabled"`
	GenerateAnswer *bool                `json:"generate_answer"`
}

func (s *Server) handleQuery(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := s.engine.Query(c.Request.Context(), c.Param("id"), rag.QueryRequest{
		Query:          req.Query,
		TopK:           req.TopK,
		ScoreThreshold: req.ScoreThreshold,
		Filters:        req.Filters,
		RerankEnabled:  req.RerankEnabled,
		GenerateAnswer: req.GenerateAnswer,
	})
	if err != nil {
		respondError(c, s.log, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
