package chunker

import (
	"regexp"
	"strings"
)

// sentenceBoundary matches a sentence terminator followed by whitespace.
var sentenceBoundary = regexp.MustCompile(`[.!?]\s+`)

// SentenceStrategy splits text into sentences on [.!?] followed by
// whitespace, then greedily packs sentences up to size.
type SentenceStrategy struct{}

func (SentenceStrategy) Split(text string, size, overlap int) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	sentences := splitSentences(text)
	return packSentences(sentences, size)
}

// splitSentences returns (content, startIdx) pairs, preserving the
// terminator+whitespace with the sentence it ends.
func splitSentences(text string) []Chunk {
	locs := sentenceBoundary.FindAllStringIndex(text, -1)
	var sentences []Chunk
	start := 0
	for _, loc := range locs {
		end := loc[1]
		sentences = append(sentences, Chunk{Content: text[start:end], StartIdx: start, EndIdx: end})
		start = end
	}
	if start < len(text) {
		sentences = append(sentences, Chunk{Content: text[start:], StartIdx: start, EndIdx: len(text)})
	}
	return sentences
}

// packSentences greedily concatenates consecutive sentences while the
// running length stays under size, used by both Sentence and Paragraph
// (for oversized paragraphs) strategies.
func packSentences(sentences []Chunk, size int) []Chunk {
	var chunks []Chunk
	var current strings.Builder
	currentStart := 0

	flush := func() {
		content := strings.TrimSpace(current.String())
		if content != "" {
			chunks = append(chunks, Chunk{Content: content, StartIdx: currentStart, EndIdx: currentStart + len(current.String())})
		}
		current.Reset()
	}

	for _, s := range sentences {
		if current.Len() > 0 && current.Len()+len(s.Content) > size {
			flush()
		}
		if current.Len() == 0 {
			currentStart = s.StartIdx
		}
		current.WriteString(s.Content)
	}
	flush()

	return chunks
}
