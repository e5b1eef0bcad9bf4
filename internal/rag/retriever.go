package rag

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/helixrag/ragengine/internal/embeddings"
	"github.com/helixrag/ragengine/internal/errs"
	"github.com/helixrag/ragengine/internal/reranker"
	"github.com/helixrag/ragengine/internal/vectorstore"
)

const (
	minFetchPad = 5
	maxFetchK   = 15
)

// Retriever runs the query -> embed -> ANN search -> filter flow and,
// when enabled, hands candidates to a reranker before returning results.
type Retriever struct {
	registry *Registry
	stores   vectorstore.Factory
	embedCfg embeddings.Config
	llmChat  reranker.LLMChatFunc
	pool     *WorkerPool
	log      *logrus.Logger
}

// NewRetriever wires the retriever to its dependencies. llmChat may be nil
// when no LLM-scored reranker fallback is configured. pool may be nil, in
// which case reranking runs directly on the request goroutine.
func NewRetriever(registry *Registry, stores vectorstore.Factory, embedCfg embeddings.Config, llmChat reranker.LLMChatFunc, pool *WorkerPool, log *logrus.Logger) *Retriever {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Retriever{registry: registry, stores: stores, embedCfg: embedCfg, llmChat: llmChat, pool: pool, log: log}
}

// QueryRequest carries the request-scoped overrides a caller may supply
// on top of the pipeline's own retrieval config.
type QueryRequest struct {
	Query          string
	TopK           int
	ScoreThreshold *float32
	Filters        []MetadataFilter
	RerankEnabled  *bool
	GenerateAnswer *bool
}

// Query runs the full retrieval (and optional rerank) flow for one
// pipeline; answer synthesis happens afterwards in Engine.Query.
func (rt *Retriever) Query(ctx context.Context, pipelineID string, req QueryRequest) (*QueryResponse, error) {
	pipeline, err := rt.registry.RequireReady(ctx, pipelineID)
	if err != nil {
		return nil, err
	}

	cfg := pipeline.Config.Retrieval
	topK := cfg.TopK
	if req.TopK > 0 {
		topK = req.TopK
	}
	rerankEnabled := cfg.RerankEnabled
	if req.RerankEnabled != nil {
		rerankEnabled = *req.RerankEnabled
	}
	threshold := cfg.ScoreThreshold
	if req.ScoreThreshold != nil {
		threshold = req.ScoreThreshold
	}

	fetchK := topK
	if rerankEnabled {
		fetchK = topK + minFetchPad
		if fetchK > maxFetchK {
			fetchK = maxFetchK
		}
	}

	model, _, err := embeddings.Resolve(embeddings.RequestConfig{
		Provider: string(pipeline.Config.Embedding.Provider),
		Model:    pipeline.Config.Embedding.Model,
	}, rt.embedCfg, rt.log)
	if err != nil {
		return nil, err
	}

	// Embedding the query and opening/counting the collection are
	// independent of each other, so run them concurrently.
	var vectors [][]float32
	var store vectorstore.Store
	var count int

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := model.Encode(gCtx, []string{req.Query})
		if err != nil {
			return errs.Wrap(errs.KindVectorStoreFailure, "embed query", err)
		}
		vectors = v
		return nil
	})
	g.Go(func() error {
		s, err := rt.stores.OpenOrCreate(gCtx, pipelineID)
		if err != nil {
			return err
		}
		n, err := s.Count(gCtx)
		if err != nil {
			return errs.Wrap(errs.KindVectorStoreFailure, "count collection", err)
		}
		store, count = s, n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if count == 0 {
		return &QueryResponse{Results: []SearchResult{}, TotalResults: 0}, nil
	}
	if fetchK > count {
		fetchK = count
	}

	where := whereFromFilters(req.Filters)
	matches, err := store.Query(ctx, vectors[0], fetchK, where)
	if err != nil {
		return nil, errs.Wrap(errs.KindVectorStoreFailure, "query collection", err)
	}

	results := make([]SearchResult, 0, len(matches))
	for _, m := range matches {
		score := vectorstore.Score(m.Distance)
		if threshold != nil && score < *threshold {
			continue
		}
		results = append(results, SearchResult{
			Chunk: Chunk{
				ID:         m.ID,
				PipelineID: pipelineID,
				Content:    m.Content,
				Metadata:   m.Metadata,
			},
			Score: score,
		})
	}

	resp := &QueryResponse{Results: results, TotalResults: len(results)}

	if rerankEnabled && len(results) > 0 {
		resp = rt.applyRerank(ctx, req.Query, results, cfg, topK)
	} else if topK > 0 && len(results) > topK {
		resp.Results = results[:topK]
		resp.TotalResults = len(resp.Results)
	}

	if err := rt.registry.RecordQuery(ctx, pipelineID); err != nil {
		rt.log.WithError(err).Warn("failed to record query counters")
	}

	return resp, nil
}

func (rt *Retriever) applyRerank(ctx context.Context, query string, results []SearchResult, cfg RetrievalConfig, topK int) *QueryResponse {
	candidates := make([]reranker.Candidate, len(results))
	for i, r := range results {
		candidates[i] = reranker.Candidate{ID: r.Chunk.ID, Content: r.Chunk.Content, Score: r.Score}
	}

	rerankTopK := cfg.RerankTopK
	if rerankTopK == 0 || rerankTopK > topK {
		rerankTopK = topK
	}

	rr := reranker.New(reranker.Model(cfg.RerankModel), rt.llmChat, rt.log)

	var reranked []reranker.Result
	var applied bool
	runRerank := func() {
		reranked, applied = reranker.RerankOrFallback(ctx, rr, query, candidates, rerankTopK, rt.log)
	}
	if rt.pool != nil {
		rt.pool.Submit(runRerank)
	} else {
		runRerank()
	}

	byID := make(map[string]SearchResult, len(results))
	for _, r := range results {
		byID[r.Chunk.ID] = r
	}

	out := make([]SearchResult, 0, len(reranked))
	for _, rres := range reranked {
		sr, ok := byID[rres.Candidate.ID]
		if !ok {
			continue
		}
		score := rres.RerankScore
		sr.RerankScore = &score
		out = append(out, sr)
	}

	return &QueryResponse{Results: out, RerankingApplied: applied, TotalResults: len(out)}
}

func whereFromFilters(filters []MetadataFilter) map[string]interface{} {
	if len(filters) == 0 {
		return nil
	}
	where := make(map[string]interface{}, len(filters))
	for _, f := range filters {
		where[f.Field] = map[string]interface{}{string(f.Op): f.Value}
	}
	return where
}
