package chunker

import "strings"

// recursiveSeparators is the fixed separator priority order the Recursive
// strategy walks through before falling back to fixed-size slicing.
var recursiveSeparators = []string{"\n\n", "\n", ". ", " "}

// RecursiveStrategy greedily packs parts split on a separator such that
// len(current)+len(sep)+len(next) <= size; a part that alone exceeds size
// recurses into the next separator in the priority list, and falls back
// to fixed-size slicing once the separator list is exhausted. Overlap is
// not applied across recursive boundaries.
type RecursiveStrategy struct{}

func (RecursiveStrategy) Split(text string, size, overlap int) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	chunks := splitRecursive(text, 0, size, 0)
	return trimEmpty(chunks)
}

// splitRecursive returns chunks with offsets relative to the original
// document, given that `text` starts at `offset` within it.
func splitRecursive(text string, offset, size, sepIdx int) []Chunk {
	if len([]rune(text)) <= size || sepIdx >= len(recursiveSeparators) {
		if len([]rune(text)) <= size {
			return []Chunk{{Content: text, StartIdx: offset, EndIdx: offset + len([]rune(text))}}
		}
		return FixedSizeStrategy{}.splitAt(text, offset, size)
	}

	sep := recursiveSeparators[sepIdx]
	parts := strings.Split(text, sep)
	if len(parts) == 1 {
		return splitRecursive(text, offset, size, sepIdx+1)
	}

	var chunks []Chunk
	var current strings.Builder
	currentStart := offset
	pos := offset

	flush := func() {
		if current.Len() > 0 {
			content := current.String()
			chunks = append(chunks, Chunk{Content: content, StartIdx: currentStart, EndIdx: currentStart + len([]rune(content))})
			current.Reset()
		}
	}

	for i, part := range parts {
		candidateLen := current.Len()
		if candidateLen > 0 {
			candidateLen += len(sep)
		}
		candidateLen += len(part)

		if candidateLen > size {
			if current.Len() == 0 {
				// Single part too large on its own: recurse with next separator.
				sub := splitRecursive(part, pos, size, sepIdx+1)
				chunks = append(chunks, sub...)
			} else {
				flush()
				if len(part) > size {
					// The part is too large even on its own: recurse with next separator.
					chunks = append(chunks, splitRecursive(part, pos, size, sepIdx+1)...)
				} else {
					current.WriteString(part)
					currentStart = pos
				}
			}
		} else {
			if current.Len() > 0 {
				current.WriteString(sep)
			} else {
				currentStart = pos
			}
			current.WriteString(part)
		}

		pos += len([]rune(part))
		if i < len(parts)-1 {
			pos += len([]rune(sep))
		}
	}
	flush()

	return chunks
}

// splitAt is the fixed-size fallback used once the separator list runs
// out, preserving the caller's absolute offset.
func (f FixedSizeStrategy) splitAt(text string, offset, size int) []Chunk {
	base := f.Split(text, size, 0)
	for i := range base {
		base[i].StartIdx += offset
		base[i].EndIdx += offset
	}
	return base
}
