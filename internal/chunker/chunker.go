// Package chunker splits parsed document text into overlapping chunks
// under one of five selectable strategies.
package chunker

import "strings"

// Chunk is one piece of split text with its offsets into the source.
type Chunk struct {
	Content    string
	StartIdx   int
	EndIdx     int
	TokenCount int
}

// Strategy splits text into chunks of at most size runes (best effort),
// with overlap applied where the underlying algorithm supports it.
type Strategy interface {
	Split(text string, size, overlap int) []Chunk
}

// Name identifies one of the five chunking strategies.
type Name string

const (
	FixedSize Name = "fixed_size"
	Recursive Name = "recursive"
	Sentence  Name = "sentence"
	Paragraph Name = "paragraph"
	Semantic  Name = "semantic"
)

// New resolves a strategy name to its implementation. Semantic requires an
// embedding function; when embed is nil it silently falls back to
// Recursive, matching the degraded-mode behavior required by the spec.
func New(name Name, embed EmbedFunc) Strategy {
	switch name {
	case FixedSize:
		return FixedSizeStrategy{}
	case Sentence:
		return SentenceStrategy{}
	case Paragraph:
		return ParagraphStrategy{}
	case Semantic:
		if embed == nil {
			return RecursiveStrategy{}
		}
		return SemanticStrategy{Embed: embed}
	case Recursive:
		fallthrough
	default:
		return RecursiveStrategy{}
	}
}

// Split is the package-level convenience entrypoint used by the ingest
// coordinator: resolve the named strategy, run it, and stamp each
// resulting chunk with its estimated token count.
func Split(name Name, text string, size, overlap int, embed EmbedFunc) []Chunk {
	chunks := New(name, embed).Split(text, size, overlap)
	for i := range chunks {
		chunks[i].TokenCount = EstimateTokens(chunks[i].Content)
	}
	return chunks
}

func trimEmpty(chunks []Chunk) []Chunk {
	out := make([]Chunk, 0, len(chunks))
	for _, c := range chunks {
		if strings.TrimSpace(c.Content) == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}
