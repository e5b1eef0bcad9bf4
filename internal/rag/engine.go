package rag

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/helixrag/ragengine/internal/database"
	"github.com/helixrag/ragengine/internal/embeddings"
	"github.com/helixrag/ragengine/internal/llm"
	"github.com/helixrag/ragengine/internal/vectorstore"
)

// Engine bundles the registry, ingester, retriever, and synthesizer
// behind one explicitly constructed handle; there is no package-level
// service singleton, only the process-wide model cache held inside the
// reranker package.
type Engine struct {
	Registry    *Registry
	Ingester    *Ingester
	Retriever   *Retriever
	Synthesizer *Synthesizer
	pool        *WorkerPool
}

// NewEngine wires every component together from already-constructed
// repositories, matching cmd/server/main.go's explicit-construction style.
func NewEngine(pipelines *database.PipelineRepository, documents *database.DocumentRepository, stores vectorstore.Factory, embedCfg embeddings.Config, llmCfg llm.Config, workerCount int, log *logrus.Logger) *Engine {
	if log == nil {
		log = logrus.StandardLogger()
	}

	registry := NewRegistry(pipelines, documents, stores)
	ingester := NewIngester(registry, documents, stores, embedCfg, log)

	dispatcher := llm.NewDispatcher(llmCfg, log)
	llmChatForRerank := func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
		return dispatcher.Chat(ctx, systemPrompt, userPrompt, "")
	}

	pool := NewWorkerPool(workerCount)
	retriever := NewRetriever(registry, stores, embedCfg, llmChatForRerank, pool, log)

	synthChat := func(ctx context.Context, systemPrompt, userPrompt, provider string) (string, error) {
		return dispatcher.Chat(ctx, systemPrompt, userPrompt, llm.Provider(provider))
	}
	synthesizer := NewSynthesizer(synthChat, log)

	return &Engine{
		Registry:    registry,
		Ingester:    ingester,
		Retriever:   retriever,
		Synthesizer: synthesizer,
		pool:        pool,
	}
}

// Query runs retrieval and, when the pipeline's LLM config calls for it,
// answer synthesis, combining C7 and C9 into the single call the HTTP
// layer invokes per request.
func (e *Engine) Query(ctx context.Context, pipelineID string, req QueryRequest) (*QueryResponse, error) {
	pipeline, err := e.Registry.Get(ctx, pipelineID)
	if err != nil {
		return nil, err
	}

	resp, err := e.Retriever.Query(ctx, pipelineID, req)
	if err != nil {
		return nil, err
	}

	generate := pipeline.Config.LLM.GenerateAnswer
	if req.GenerateAnswer != nil {
		generate = *req.GenerateAnswer
	}
	cfg := pipeline.Config.LLM
	cfg.GenerateAnswer = generate
	resp.Answer = e.Synthesizer.Synthesize(ctx, req.Query, resp.Results, cfg)

	return resp, nil
}

// Shutdown drains the worker pool, used on graceful process exit.
func (e *Engine) Shutdown() {
	e.pool.Shutdown()
}
