package reranker

import (
	"context"

	"github.com/sirupsen/logrus"
)

// RerankOrFallback runs the reranker and, on any failure, returns the
// original candidates unmodified with applied=false instead of
// propagating the error: a reranking failure must never fail the query.
func RerankOrFallback(ctx context.Context, r Reranker, query string, candidates []Candidate, topK int, log *logrus.Logger) ([]Result, bool) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	results, err := r.Rerank(ctx, query, candidates, topK)
	if err != nil {
		log.WithError(err).Warn("reranking failed, returning original order")
		fallback := make([]Result, 0, len(candidates))
		for _, c := range candidates {
			fallback = append(fallback, Result{Candidate: c, RerankScore: c.Score})
		}
		if topK > 0 && len(fallback) > topK {
			fallback = fallback[:topK]
		}
		return fallback, false
	}
	return results, true
}
