package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/helixrag/ragengine/internal/errs"
	"github.com/helixrag/ragengine/internal/parser"
)

const fallbackMaxUploadBytes = 20 << 20 // 20MB, used if no config was wired

func (s *Server) handleUploadDocument(c *gin.Context) {
	pipelineID := c.Param("id")

	limit := int64(fallbackMaxUploadBytes)
	if s.cfg != nil && s.cfg.MaxUploadBytes > 0 {
		limit = s.cfg.MaxUploadBytes
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field is required"})
		return
	}
	defer file.Close()

	if err := parser.UnsupportedFileType(header.Filename); err != nil {
		respondError(c, s.log, err)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload"})
		return
	}
	if int64(len(data)) > limit {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file exceeds upload size limit"})
		return
	}

	doc, err := s.engine.Ingester.Ingest(c.Request.Context(), pipelineID, header.Filename, data)
	if err != nil {
		if doc != nil {
			// Document row was recorded in the errored state; report both
			// under the status the error's kind maps to.
			status := http.StatusInternalServerError
			if appErr, ok := errs.As(err); ok {
				status = appErr.HTTPStatus()
			}
			c.JSON(status, gin.H{"error": err.Error(), "document": doc})
			return
		}
		respondError(c, s.log, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (s *Server) handleListDocuments(c *gin.Context) {
	docs, err := s.engine.Ingester.ListDocuments(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, s.log, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (s *Server) handleDeleteDocument(c *gin.Context) {
	err := s.engine.Ingester.DeleteDocument(c.Request.Context(), c.Param("id"), c.Param("doc_id"))
	if err != nil {
		respondError(c, s.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
