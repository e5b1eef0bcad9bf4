package reranker

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/helixrag/ragengine/internal/errs"
)

const llmPreviewChars = 300

var jsonArrayPattern = regexp.MustCompile(`\[[\s\S]*\]`)

type llmReranker struct {
	chat LLMChatFunc
	log  *logrus.Logger
}

func (r *llmReranker) Rerank(ctx context.Context, query string, candidates []Candidate, topK int) ([]Result, error) {
	capped := capCandidates(candidates)
	if r.chat == nil {
		return nil, errs.New(errs.KindAllProvidersFailed, "no llm configured for reranking")
	}

	prompt := buildRerankPrompt(query, capped)
	raw, err := r.chat(ctx, rerankSystemPrompt, prompt)
	if err != nil {
		return nil, errs.Wrap(errs.KindAllProvidersFailed, "llm rerank call", err)
	}

	scores, err := parseScores(raw, len(capped))
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(capped))
	for i, c := range capped {
		results[i] = Result{Candidate: c, RerankScore: scores[i]}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RerankScore > results[j].RerankScore
	})
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

const rerankSystemPrompt = "You score how relevant each numbered document is to the query. " +
	"Respond with ONLY a JSON array of floats between 0 and 1, in the same order as the documents, " +
	"with no other text."

func buildRerankPrompt(query string, candidates []Candidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Query: %s\n\nDocuments:\n", query)
	for i, c := range candidates {
		fmt.Fprintf(&b, "%d. %s\n", i+1, truncate(c.Content, llmPreviewChars))
	}
	return b.String()
}

func parseScores(raw string, want int) ([]float32, error) {
	match := jsonArrayPattern.FindString(raw)
	if match == "" {
		return nil, errs.New(errs.KindAllProvidersFailed, "llm rerank response contained no JSON array")
	}
	var floats []float64
	if err := json.Unmarshal([]byte(match), &floats); err != nil {
		return nil, errs.Wrap(errs.KindAllProvidersFailed, "parse llm rerank scores", err)
	}
	if len(floats) != want {
		return nil, errs.New(errs.KindAllProvidersFailed, "llm rerank response length mismatch")
	}
	scores := make([]float32, len(floats))
	for i, f := range floats {
		if f < 0 {
			f = 0
		}
		if f > 1 {
			f = 1
		}
		scores[i] = float32(f)
	}
	return scores, nil
}
