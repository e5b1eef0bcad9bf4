package chunker

import (
	"context"
	"math"
	"strings"
)

// EmbedFunc vectorizes a batch of sentences, implemented by the default
// local embedding model so the chunker package has no hard dependency on
// internal/embeddings.
type EmbedFunc func(ctx context.Context, texts []string) ([][]float32, error)

// SemanticStrategy splits into sentences, embeds each with the supplied
// function, and breaks the chunk where consecutive-sentence similarity
// drops below mean-1sigma, provided the current chunk already holds at
// least 30% of size. Falls back to Recursive if embedding fails.
type SemanticStrategy struct {
	Embed EmbedFunc
}

func (s SemanticStrategy) Split(text string, size, overlap int) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	sentences := splitSentences(text)
	if len(sentences) <= 1 {
		return packSentences(sentences, size)
	}

	texts := make([]string, len(sentences))
	for i, s := range sentences {
		texts[i] = s.Content
	}

	vectors, err := s.Embed(context.Background(), texts)
	if err != nil || len(vectors) != len(sentences) {
		return RecursiveStrategy{}.Split(text, size, overlap)
	}

	sims := make([]float64, 0, len(sentences)-1)
	for i := 1; i < len(sentences); i++ {
		sims = append(sims, cosineSimilarity(vectors[i-1], vectors[i]))
	}
	threshold := mean(sims) - stddev(sims)

	var chunks []Chunk
	var current strings.Builder
	currentStart := sentences[0].StartIdx
	minSize := int(0.3 * float64(size))

	flush := func(end int) {
		content := strings.TrimSpace(current.String())
		if content != "" {
			chunks = append(chunks, Chunk{Content: content, StartIdx: currentStart, EndIdx: end})
		}
		current.Reset()
	}

	for i, sent := range sentences {
		if current.Len() == 0 {
			currentStart = sent.StartIdx
		}

		wouldExceed := current.Len()+len(sent.Content) > size
		breaksHere := false
		if i > 0 {
			sim := sims[i-1]
			breaksHere = sim < threshold && current.Len() >= minSize
		}

		if (breaksHere || wouldExceed) && current.Len() > 0 {
			flush(sent.StartIdx)
			currentStart = sent.StartIdx
		}
		current.WriteString(sent.Content)
	}
	flush(sentences[len(sentences)-1].EndIdx)

	return chunks
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stddev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := mean(xs)
	var sumSq float64
	for _, x := range xs {
		d := x - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(xs)))
}
