package chunker

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedSizeStrategy_Split(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		size          int
		overlap       int
		expectedCount int
	}{
		{"empty", "", 100, 10, 0},
		{"whitespace_only", "   \n\t  ", 100, 10, 0},
		{"single_chunk", "short text", 100, 10, 1},
		{"exact_s1_scenario", strings.Repeat("a", 260), 100, 20, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := FixedSizeStrategy{}.Split(tt.text, tt.size, tt.overlap)
			assert.Len(t, chunks, tt.expectedCount)
		})
	}
}

func TestFixedSizeStrategy_Offsets(t *testing.T) {
	text := strings.Repeat("a", 260)
	chunks := FixedSizeStrategy{}.Split(text, 100, 20)
	require.Len(t, chunks, 4)

	expectedStarts := []int{0, 80, 160, 240}
	for i, start := range expectedStarts {
		assert.Equal(t, start, chunks[i].StartIdx)
	}
}

func TestFixedSizeStrategy_OverlapSharedCharacters(t *testing.T) {
	text := strings.Repeat("x", 50)
	chunks := FixedSizeStrategy{}.Split(text, 20, 5)
	require.GreaterOrEqual(t, len(chunks), 2)
	for i := 1; i < len(chunks); i++ {
		assert.LessOrEqual(t, chunks[i].StartIdx, chunks[i-1].EndIdx)
	}
}

func TestRecursiveStrategy_Split(t *testing.T) {
	text := "First paragraph.\n\nSecond paragraph.\n\nThird paragraph.\n\nFourth paragraph."
	chunks := RecursiveStrategy{}.Split(text, 50, 10)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c.Content)), 50+5, "chunk should respect size when a separator split exists")
	}
}

func TestRecursiveStrategy_EmptyInput(t *testing.T) {
	chunks := RecursiveStrategy{}.Split("", 100, 10)
	assert.Empty(t, chunks)
}

func TestRecursiveStrategy_FallsBackToFixedSize(t *testing.T) {
	text := strings.Repeat("nosepaceshere", 20)
	chunks := RecursiveStrategy{}.Split(text, 50, 0)
	require.NotEmpty(t, chunks)
}

func TestSentenceStrategy_Split(t *testing.T) {
	text := "First sentence. Second sentence. Third sentence."
	chunks := SentenceStrategy{}.Split(text, 30, 0)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.NotEmpty(t, c.Content)
	}
}

func TestSentenceStrategy_EmptyInput(t *testing.T) {
	assert.Empty(t, SentenceStrategy{}.Split("", 100, 0))
}

func TestParagraphStrategy_Split(t *testing.T) {
	text := "Para one.\n\nPara two.\n\nPara three."
	chunks := ParagraphStrategy{}.Split(text, 100, 0)
	require.Len(t, chunks, 3)
}

func TestParagraphStrategy_OversizedParagraphCascades(t *testing.T) {
	longPara := strings.Repeat("A sentence. ", 20)
	chunks := ParagraphStrategy{}.Split(longPara, 50, 0)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.Content), 50+20)
	}
}

func TestSemanticStrategy_FallsBackWhenEmbedFails(t *testing.T) {
	failingEmbed := func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, assert.AnError
	}
	text := "First sentence. Second sentence. Third sentence."
	chunks := SemanticStrategy{Embed: failingEmbed}.Split(text, 30, 0)
	require.NotEmpty(t, chunks)
}

func TestSemanticStrategy_BreaksOnLowSimilarity(t *testing.T) {
	// Cat sentences and rocket sentences embed to orthogonal vectors, so the
	// only similarity drop is between the second and third sentence.
	embed := func(ctx context.Context, texts []string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i, text := range texts {
			if strings.Contains(text, "cats") {
				vectors[i] = []float32{1, 0, 0}
			} else {
				vectors[i] = []float32{0, 1, 0}
			}
		}
		return vectors, nil
	}
	text := "Sentence one is about cats. Sentence two is about cats too. Sentence three is about rockets. Sentence four is about rockets too."
	chunks := SemanticStrategy{Embed: embed}.Split(text, 100, 0)
	assert.NotEmpty(t, chunks)
	require.Len(t, chunks, 2)
	assert.Equal(t, "Sentence one is about cats. Sentence two is about cats too.", chunks[0].Content)
	assert.Equal(t, "Sentence three is about rockets. Sentence four is about rockets too.", chunks[1].Content)
}

func TestSemanticStrategy_EmptyInput(t *testing.T) {
	embed := func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, nil
	}
	assert.Empty(t, SemanticStrategy{Embed: embed}.Split("", 100, 0))
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{1, 0}), 0.0001)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 0.0001)
	assert.Equal(t, float64(0), cosineSimilarity(nil, nil))
}

func TestNew_SemanticFallsBackWithoutEmbed(t *testing.T) {
	strategy := New(Semantic, nil)
	_, ok := strategy.(RecursiveStrategy)
	assert.True(t, ok)
}

func TestNew_ResolvesAllStrategies(t *testing.T) {
	tests := []struct {
		name Name
	}{
		{FixedSize}, {Recursive}, {Sentence}, {Paragraph},
	}
	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			strategy := New(tt.name, nil)
			assert.NotNil(t, strategy)
		})
	}
}

func TestSplit_ConveniencePackageFunction(t *testing.T) {
	chunks := Split(FixedSize, "some text here", 100, 10, nil)
	require.Len(t, chunks, 1)
}

func TestSplit_StampsTokenCount(t *testing.T) {
	chunks := Split(FixedSize, "some text here", 100, 10, nil)
	require.Len(t, chunks, 1)
	assert.Greater(t, chunks[0].TokenCount, 0)
}

func TestEstimateTokens_EmptyStringIsZero(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
}

func TestEstimateTokens_LongerTextHasMoreTokens(t *testing.T) {
	short := EstimateTokens("hello world")
	long := EstimateTokens(strings.Repeat("hello world ", 20))
	assert.Greater(t, long, short)
}
