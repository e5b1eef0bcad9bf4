package chunker

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	tokenizerOnce sync.Once
	tokenizer     *tiktoken.Tiktoken
)

// EstimateTokens returns a cl100k_base token count for text, used as a
// size-accounting helper alongside the rune-based chunk_size bound; the
// recursive and semantic strategies size chunks in runes, but the
// metadata recorded against each chunk also carries this estimate so a
// caller can judge how close a chunk sits to an embedding model's real
// token budget. Falls back to a whitespace-word count if the encoding
// can't be loaded.
func EstimateTokens(text string) int {
	tokenizerOnce.Do(func() {
		tokenizer, _ = tiktoken.GetEncoding("cl100k_base")
	})
	if tokenizer == nil {
		return len(splitOnSpace(text))
	}
	return len(tokenizer.Encode(text, nil, nil))
}

func splitOnSpace(text string) []string {
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
