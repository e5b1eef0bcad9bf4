package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		distance float32
		expected float32
	}{
		{"typical", 0.2, 0.8},
		{"zero_distance", 0, 1},
		{"max_distance", 1, 0},
		{"negative_score_clamped", 1.5, 0},
		{"over_one_clamped", -0.5, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Score(tt.distance))
		})
	}
}

func TestMatchesFilter_Eq(t *testing.T) {
	metadata := map[string]interface{}{"file_name": "A.txt"}
	assert.True(t, MatchesFilter(metadata, "file_name", "eq", "A.txt"))
	assert.False(t, MatchesFilter(metadata, "file_name", "eq", "B.txt"))
}

func TestMatchesFilter_Ne(t *testing.T) {
	metadata := map[string]interface{}{"file_name": "A.txt"}
	assert.True(t, MatchesFilter(metadata, "file_name", "ne", "B.txt"))
	assert.False(t, MatchesFilter(metadata, "file_name", "ne", "A.txt"))
}

func TestMatchesFilter_Ordered(t *testing.T) {
	metadata := map[string]interface{}{"chunk_index": float64(5)}
	assert.True(t, MatchesFilter(metadata, "chunk_index", "gt", float64(3)))
	assert.True(t, MatchesFilter(metadata, "chunk_index", "gte", float64(5)))
	assert.True(t, MatchesFilter(metadata, "chunk_index", "lt", float64(10)))
	assert.True(t, MatchesFilter(metadata, "chunk_index", "lte", float64(5)))
	assert.False(t, MatchesFilter(metadata, "chunk_index", "gt", float64(10)))
}

func TestMatchesFilter_InNin(t *testing.T) {
	metadata := map[string]interface{}{"file_type": "pdf"}
	values := []interface{}{"pdf", "docx"}
	assert.True(t, MatchesFilter(metadata, "file_type", "in", values))
	assert.False(t, MatchesFilter(metadata, "file_type", "nin", values))

	other := []interface{}{"txt", "csv"}
	assert.False(t, MatchesFilter(metadata, "file_type", "in", other))
	assert.True(t, MatchesFilter(metadata, "file_type", "nin", other))
}

func TestMatchesFilter_MissingField(t *testing.T) {
	metadata := map[string]interface{}{}
	assert.False(t, MatchesFilter(metadata, "missing", "eq", "x"))
	assert.True(t, MatchesFilter(metadata, "missing", "ne", "x"))
}

func TestMatchesAll_IsAndCombined(t *testing.T) {
	metadata := map[string]interface{}{"file_name": "A.txt", "chunk_index": float64(2)}

	where := map[string]interface{}{
		"file_name":   map[string]interface{}{"eq": "A.txt"},
		"chunk_index": map[string]interface{}{"gte": float64(1)},
	}
	assert.True(t, MatchesAll(metadata, where))

	whereFails := map[string]interface{}{
		"file_name":   map[string]interface{}{"eq": "A.txt"},
		"chunk_index": map[string]interface{}{"gt": float64(5)},
	}
	assert.False(t, MatchesAll(metadata, whereFails))
}

func TestMatchesAll_PlainScalarShorthand(t *testing.T) {
	metadata := map[string]interface{}{"file_name": "A.txt"}
	where := map[string]interface{}{"file_name": "A.txt"}
	assert.True(t, MatchesAll(metadata, where))

	whereFails := map[string]interface{}{"file_name": "B.txt"}
	assert.False(t, MatchesAll(metadata, whereFails))
}

func TestCollectionLocks_ReturnsSameLockForSameID(t *testing.T) {
	locks := newCollectionLocks()
	a := locks.get("pipeline-1")
	b := locks.get("pipeline-1")
	assert.Same(t, a, b)

	c := locks.get("pipeline-2")
	assert.NotSame(t, a, c)
}
