package chunker

import "strings"

// FixedSizeStrategy slices text at [start, start+size), advancing by
// size-overlap each step and skipping empty/whitespace-only slices.
type FixedSizeStrategy struct{}

func (FixedSizeStrategy) Split(text string, size, overlap int) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	step := size - overlap
	if step <= 0 {
		step = size
	}

	runes := []rune(text)
	var chunks []Chunk
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		content := string(runes[start:end])
		if strings.TrimSpace(content) != "" {
			chunks = append(chunks, Chunk{Content: content, StartIdx: start, EndIdx: end})
		}
	}
	return chunks
}
