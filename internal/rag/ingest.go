package rag

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/helixrag/ragengine/internal/chunker"
	"github.com/helixrag/ragengine/internal/database"
	"github.com/helixrag/ragengine/internal/embeddings"
	"github.com/helixrag/ragengine/internal/errs"
	"github.com/helixrag/ragengine/internal/parser"
	"github.com/helixrag/ragengine/internal/vectorstore"
)

// Ingester runs the parse -> chunk -> embed -> index flow for one document
// and keeps the pipeline's relational state consistent with it.
type Ingester struct {
	registry *Registry
	docs     documentStore
	stores   vectorstore.Factory
	embedCfg embeddings.Config
	log      *logrus.Logger
}

// documentStore is the narrow repository surface the ingest coordinator
// needs, satisfied by *database.DocumentRepository.
type documentStore interface {
	Create(ctx context.Context, d database.DocumentRow) (*database.DocumentRow, error)
	Delete(ctx context.Context, pipelineID, documentID string) error
	ListByPipeline(ctx context.Context, pipelineID string) ([]database.DocumentRow, error)
}

// NewIngester wires the coordinator to its dependencies.
func NewIngester(registry *Registry, docs documentStore, stores vectorstore.Factory, embedCfg embeddings.Config, log *logrus.Logger) *Ingester {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Ingester{registry: registry, docs: docs, stores: stores, embedCfg: embedCfg, log: log}
}

// Ingest runs one document through the ingest pipeline and reports the
// resulting Document row. When the document fails after its row could be
// recorded, the errored row is returned together with the cause; when no
// row could be recorded, the Document is nil.
func (in *Ingester) Ingest(ctx context.Context, pipelineID, fileName string, data []byte) (*Document, error) {
	started := time.Now()

	pipeline, err := in.registry.Get(ctx, pipelineID)
	if err != nil {
		return nil, err
	}

	if err := in.registry.CheckEmbeddingCompatible(pipeline, pipeline.Config.Embedding); err != nil {
		return nil, err
	}

	if pipeline.Status != StatusIngesting {
		if err := in.registry.SetStatus(ctx, pipelineID, StatusIngesting); err != nil {
			return nil, err
		}
	}

	documentID := uuid.NewString()
	fileType := extOf(fileName)

	text, err := parser.Parse(fileName, data, in.log)
	if err != nil {
		return in.failDocument(ctx, pipeline, documentID, fileName, fileType, int64(len(data)), started, err)
	}
	if utf8.RuneCountInString(text) == 0 {
		return in.failDocument(ctx, pipeline, documentID, fileName, fileType, int64(len(data)), started,
			errs.New(errs.KindEmptyText, "parsed document produced no text"))
	}

	model, _, err := embeddings.Resolve(embeddings.RequestConfig{
		Provider: string(pipeline.Config.Embedding.Provider),
		Model:    pipeline.Config.Embedding.Model,
	}, in.embedCfg, in.log)
	if err != nil {
		return in.failDocument(ctx, pipeline, documentID, fileName, fileType, int64(len(data)), started, err)
	}

	sentenceModel := embeddings.NewDefaultEncoder()
	embedFn := func(ctx context.Context, texts []string) ([][]float32, error) {
		return sentenceModel.Encode(ctx, texts)
	}
	chunks := chunker.Split(chunker.Name(pipeline.Config.Chunking.Strategy), text,
		pipeline.Config.Chunking.ChunkSize, pipeline.Config.Chunking.ChunkOverlap, embedFn)
	if len(chunks) == 0 {
		return in.failDocument(ctx, pipeline, documentID, fileName, fileType, int64(len(data)), started,
			errs.New(errs.KindEmptyText, "chunking produced no chunks"))
	}

	store, err := in.stores.OpenOrCreate(ctx, pipelineID)
	if err != nil {
		return in.failDocument(ctx, pipeline, documentID, fileName, fileType, int64(len(data)), started, err)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := model.Encode(ctx, texts)
	if err != nil {
		return in.failDocument(ctx, pipeline, documentID, fileName, fileType, int64(len(data)), started,
			errs.Wrap(errs.KindVectorStoreFailure, "embed chunks", err))
	}

	ingestedAt := time.Now().UTC().Format(time.RFC3339)
	records := make([]vectorstore.Record, len(chunks))
	for i, c := range chunks {
		records[i] = vectorstore.Record{
			ID:      fmt.Sprintf("%s_%s_%d", pipelineID, documentID, i),
			Content: c.Content,
			Metadata: map[string]interface{}{
				"pipeline_id": pipelineID,
				"document_id": documentID,
				"file_name":   fileName,
				"chunk_index": i,
				"chunk_total": len(chunks),
				"file_type":   fileType,
				"ingested_at": ingestedAt,
				"token_count": c.TokenCount,
			},
			Vector: vectors[i],
		}
	}

	if err := store.Add(ctx, records); err != nil {
		_ = store.Delete(ctx, map[string]interface{}{"document_id": documentID})
		return in.failDocument(ctx, pipeline, documentID, fileName, fileType, int64(len(data)), started,
			errs.Wrap(errs.KindVectorStoreFailure, "add chunks to vector store", err))
	}

	wordCount := len(splitWords(text))
	row := database.DocumentRow{
		ID:               documentID,
		PipelineID:       pipelineID,
		FileName:         fileName,
		FileSizeBytes:    int64(len(data)),
		FileType:         fileType,
		ChunkCount:       len(chunks),
		CharacterCount:   utf8.RuneCountInString(text),
		WordCount:        wordCount,
		Status:           string(DocumentProcessed),
		ProcessingTimeMs: time.Since(started).Milliseconds(),
	}
	saved, err := in.docs.Create(ctx, row)
	if err != nil {
		_ = store.Delete(ctx, map[string]interface{}{"document_id": documentID})
		return nil, errs.Wrap(errs.KindInternal, "record document row", err)
	}

	if err := in.registry.IncrementCounters(ctx, pipelineID, 1, len(chunks)); err != nil {
		return nil, err
	}
	if err := in.registry.SetStatus(ctx, pipelineID, StatusReady); err != nil {
		return nil, err
	}

	return docRowToDocument(saved), nil
}

// failDocument records an errored document row and decides the pipeline's
// resulting status: ERROR if it has no prior successful documents, READY
// otherwise (the pipeline as a whole is still usable).
func (in *Ingester) failDocument(ctx context.Context, pipeline *Pipeline, documentID, fileName, fileType string, size int64, started time.Time, cause error) (*Document, error) {
	row := database.DocumentRow{
		ID:               documentID,
		PipelineID:       pipeline.ID,
		FileName:         fileName,
		FileSizeBytes:    size,
		FileType:         fileType,
		Status:           string(DocumentError),
		ErrorMessage:     cause.Error(),
		ProcessingTimeMs: time.Since(started).Milliseconds(),
	}
	saved, err := in.docs.Create(ctx, row)
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, "record errored document row", err)
	}

	nextStatus := StatusReady
	if pipeline.DocumentCount == 0 {
		nextStatus = StatusError
	}
	if statusErr := in.registry.SetStatus(ctx, pipeline.ID, nextStatus); statusErr != nil {
		in.log.WithError(statusErr).Warn("failed to update pipeline status after document failure")
	}

	return docRowToDocument(saved), cause
}

// ListDocuments returns every document recorded against a pipeline.
func (in *Ingester) ListDocuments(ctx context.Context, pipelineID string) ([]Document, error) {
	rows, err := in.docs.ListByPipeline(ctx, pipelineID)
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, "list documents", err)
	}
	out := make([]Document, len(rows))
	for i := range rows {
		out[i] = *docRowToDocument(&rows[i])
	}
	return out, nil
}

// DeleteDocument removes a document's chunks from the vector store, its
// relational row, and reconciles the owning pipeline's counters.
func (in *Ingester) DeleteDocument(ctx context.Context, pipelineID, documentID string) error {
	store, err := in.stores.OpenOrCreate(ctx, pipelineID)
	if err != nil {
		return err
	}
	if err := store.Delete(ctx, map[string]interface{}{"document_id": documentID}); err != nil {
		return errs.Wrap(errs.KindVectorStoreFailure, "delete document chunks", err)
	}

	rows, err := in.docs.ListByPipeline(ctx, pipelineID)
	if err != nil {
		return errs.Wrap(errs.KindInternal, "list documents before delete", err)
	}
	var chunkCount int
	var found bool
	for _, row := range rows {
		if row.ID == documentID {
			chunkCount = row.ChunkCount
			found = true
			break
		}
	}
	if !found {
		return newNotFoundError("document " + documentID + " not found")
	}

	if err := in.docs.Delete(ctx, pipelineID, documentID); err != nil {
		return errs.Wrap(errs.KindInternal, "delete document row", err)
	}

	return in.registry.IncrementCounters(ctx, pipelineID, -1, -chunkCount)
}

func docRowToDocument(row *database.DocumentRow) *Document {
	return &Document{
		ID:               row.ID,
		PipelineID:       row.PipelineID,
		FileName:         row.FileName,
		FileSizeBytes:    row.FileSizeBytes,
		FileType:         row.FileType,
		ChunkCount:       row.ChunkCount,
		CharacterCount:   row.CharacterCount,
		WordCount:        row.WordCount,
		Status:           DocumentStatus(row.Status),
		ErrorMessage:     row.ErrorMessage,
		ProcessingTimeMs: row.ProcessingTimeMs,
		CreatedAt:        row.CreatedAt,
	}
}

func extOf(fileName string) string {
	for i := len(fileName) - 1; i >= 0; i-- {
		if fileName[i] == '.' {
			return fileName[i:]
		}
	}
	return ""
}

func splitWords(text string) []string {
	var words []string
	var cur []rune
	for _, r := range text {
		if r == ' ' || r == '\n' || r == '\t' || r == '\r' {
			if len(cur) > 0 {
				words = append(words, string(cur))
				cur = nil
			}
			continue
		}
		cur = append(cur, r)
	}
	if len(cur) > 0 {
		words = append(words, string(cur))
	}
	return words
}
