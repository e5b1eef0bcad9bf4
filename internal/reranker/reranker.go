// Package reranker reorders retrieved candidates by relevance using
// either a locally cached cross-encoder model or an LLM asked to score the
// candidates directly, whichever the pipeline's config selects.
package reranker

import (
	"context"

	"github.com/sirupsen/logrus"
)

const maxCandidates = 10

// Candidate is one retrieved chunk being considered for reranking.
type Candidate struct {
	ID      string
	Content string
	Score   float32
}

// Result is one reranked candidate, annotated with its rerank score.
type Result struct {
	Candidate   Candidate
	RerankScore float32
}

// Reranker reorders candidates for a query, returning at most topK results
// sorted by descending rerank score.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []Candidate, topK int) ([]Result, error)
}

// Model selects which reranker implementation a pipeline uses.
type Model string

const (
	CrossEncoder Model = "qwen3"
	LLMScored    Model = "llm"
)

// LLMChatFunc is the narrow slice of llm.Dispatcher.Chat the LLM-scored
// reranker needs, kept as a function type so this package has no
// dependency on internal/llm's Provider enum.
type LLMChatFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)

// New resolves a reranker model to its implementation.
func New(model Model, llmChat LLMChatFunc, log *logrus.Logger) Reranker {
	if log == nil {
		log = logrus.StandardLogger()
	}
	switch model {
	case LLMScored:
		return &llmReranker{chat: llmChat, log: log}
	case CrossEncoder:
		fallthrough
	default:
		return &crossEncoderReranker{log: log}
	}
}

// truncate caps candidate content so per-candidate scoring stays cheap,
// matching both reranker variants' latency budget.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func capCandidates(candidates []Candidate) []Candidate {
	if len(candidates) > maxCandidates {
		return candidates[:maxCandidates]
	}
	return candidates
}
