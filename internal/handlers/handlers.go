// Package handlers wires the RAG engine's gin routes, translating HTTP
// requests into rag.Engine calls and engine errors into the HTTP status
// codes the errs.Kind taxonomy defines.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/helixrag/ragengine/internal/config"
	"github.com/helixrag/ragengine/internal/errs"
	"github.com/helixrag/ragengine/internal/rag"
)

// Server holds everything the route handlers need.
type Server struct {
	engine *rag.Engine
	cfg    *config.RAGConfig
	log    *logrus.Logger
}

// NewServer builds a Server bound to one already-constructed engine.
func NewServer(engine *rag.Engine, cfg *config.RAGConfig, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{engine: engine, cfg: cfg, log: log}
}

// Register mounts /healthz at the root and every other route onto r under
// /api/v1/rag.
func (s *Server) Register(r *gin.Engine) {
	r.GET("/healthz", s.handleHealthz)

	v1 := r.Group("/api/v1/rag")
	v1.POST("/pipelines", s.handleCreatePipeline)
	v1.GET("/pipelines", s.handleListPipelines)
	v1.GET("/pipelines/:id", s.handleGetPipeline)
	v1.DELETE("/pipelines/:id", s.handleDeletePipeline)
	v1.POST("/pipelines/:id/documents", s.handleUploadDocument)
	v1.GET("/pipelines/:id/documents", s.handleListDocuments)
	v1.DELETE("/pipelines/:id/documents/:doc_id", s.handleDeleteDocument)
	v1.POST("/pipelines/:id/query", s.handleQuery)
	v1.GET("/pipelines/:id/stats", s.handleStats)
	v1.GET("/config/options", s.handleConfigOptions)
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondError translates an error into the HTTP status its errs.Kind
// maps to, falling back to 500 for anything that isn't a tagged *errs.Error.
func respondError(c *gin.Context, log *logrus.Logger, err error) {
	if appErr, ok := errs.As(err); ok {
		log.WithField("kind", appErr.Kind).WithError(err).Warn("request failed")
		c.JSON(appErr.HTTPStatus(), gin.H{"error": appErr.Message, "kind": appErr.Kind, "details": appErr.Details})
		return
	}
	log.WithError(err).Error("unhandled request error")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
