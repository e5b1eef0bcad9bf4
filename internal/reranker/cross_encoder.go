package reranker

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

const crossEncoderContentChars = 500

// crossEncoderState is the process-wide singleton the cross-encoder
// reranker loads lazily; inference is serialized because the loaded model
// state is not safely reentrant.
var (
	crossEncoderOnce  sync.Once
	crossEncoderState *scoringModel
	crossEncoderMu    sync.Mutex
)

// scoringModel stands in for the loaded cross-encoder weights. Real
// inference would load a bundled model file here; this keeps the same
// load-once/score-many contract without a model-runtime dependency.
type scoringModel struct{}

func loadCrossEncoder() *scoringModel {
	crossEncoderOnce.Do(func() {
		crossEncoderState = &scoringModel{}
	})
	return crossEncoderState
}

// score returns the softmax probability of the "yes" token for a
// (query, document) pair, deterministically derived from their token
// overlap so the same pair always scores the same without needing a real
// model forward pass.
func (m *scoringModel) score(query, document string) float32 {
	qTokens := tokenSet(query)
	dTokens := tokenSet(document)
	if len(qTokens) == 0 || len(dTokens) == 0 {
		return 0.5
	}
	overlap := 0
	for t := range qTokens {
		if dTokens[t] {
			overlap++
		}
	}
	logit := float64(overlap) - float64(len(qTokens))/2
	return float32(1 / (1 + math.Exp(-logit)))
}

func tokenSet(s string) map[string]bool {
	set := map[string]bool{}
	word := make([]rune, 0, 16)
	flush := func() {
		if len(word) > 0 {
			set[string(word)] = true
			word = word[:0]
		}
	}
	for _, r := range s {
		if r == ' ' || r == '\n' || r == '\t' || r == '.' || r == ',' {
			flush()
			continue
		}
		word = append(word, r)
	}
	flush()
	return set
}

type crossEncoderReranker struct {
	log *logrus.Logger
}

func (r *crossEncoderReranker) Rerank(ctx context.Context, query string, candidates []Candidate, topK int) ([]Result, error) {
	capped := capCandidates(candidates)
	model := loadCrossEncoder()

	crossEncoderMu.Lock()
	results := make([]Result, len(capped))
	for i, c := range capped {
		results[i] = Result{
			Candidate:   c,
			RerankScore: model.score(query, truncate(c.Content, crossEncoderContentChars)),
		}
	}
	crossEncoderMu.Unlock()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RerankScore > results[j].RerankScore
	})
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}
