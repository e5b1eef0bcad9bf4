package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// ChatFunc is the narrow slice of llm.Dispatcher.Chat the synthesizer
// needs; kept as a function type so this package has no dependency on
// internal/llm's Provider enum.
type ChatFunc func(ctx context.Context, systemPrompt, userPrompt string, provider string) (string, error)

const synthesizerSystemPrompt = `You answer questions using ONLY the provided context.
- If the context does not contain enough information to answer, say so plainly.
- Format your answer with Markdown.
- Cite the sources you used, referencing their [Source: ...] labels.
- Never fabricate information that is not supported by the context.`

// Synthesizer builds a grounded-context prompt from retrieved chunks and
// asks the configured LLM for an answer. A missing or failing LLM yields
// a nil answer rather than failing the query.
type Synthesizer struct {
	chat ChatFunc
	log  *logrus.Logger
}

// NewSynthesizer wires the synthesizer to a chat dispatch function.
func NewSynthesizer(chat ChatFunc, log *logrus.Logger) *Synthesizer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Synthesizer{chat: chat, log: log}
}

// Synthesize answers query using results as grounding context, honoring
// cfg.GenerateAnswer and cfg.Provider. Returns nil when synthesis is
// disabled, unavailable, or fails — absence of an answer must not fail
// the query.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, results []SearchResult, cfg LLMConfig) *string {
	if !cfg.GenerateAnswer || s.chat == nil || len(results) == 0 {
		return nil
	}

	prompt := buildContextPrompt(query, results)
	answer, err := s.chat(ctx, synthesizerSystemPrompt, prompt, string(cfg.Provider))
	if err != nil {
		s.log.WithError(err).Warn("answer synthesis failed, returning no answer")
		return nil
	}
	return &answer
}

func buildContextPrompt(query string, results []SearchResult) string {
	var b strings.Builder
	b.WriteString("Context:\n\n")
	for i, r := range results {
		fileName, _ := r.Chunk.Metadata["file_name"].(string)
		if fileName == "" {
			fileName = "unknown"
		}
		fmt.Fprintf(&b, "[Source: %s, Chunk %d, Score: %.3f]\n%s\n\n", fileName, i, r.Score, r.Chunk.Content)
	}
	fmt.Fprintf(&b, "Question: %s\n", query)
	return b.String()
}
