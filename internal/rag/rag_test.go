package rag

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults_FillsZeroValueBlocks(t *testing.T) {
	cfg := PipelineConfig{Name: "test"}
	applyDefaults(&cfg)
	assert.Equal(t, ChunkingRecursive, cfg.Chunking.Strategy)
	assert.Equal(t, EmbeddingChromaDefault, cfg.Embedding.Provider)
	assert.Equal(t, VectorStoreChroma, cfg.VectorStore.Type)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.Equal(t, LLMGemini, cfg.LLM.Provider)
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := PipelineConfig{
		Name:      "test",
		Chunking:  ChunkingConfig{Strategy: ChunkingFixedSize, ChunkSize: 200, ChunkOverlap: 10},
		Retrieval: RetrievalConfig{TopK: 20},
	}
	applyDefaults(&cfg)
	assert.Equal(t, ChunkingFixedSize, cfg.Chunking.Strategy)
	assert.Equal(t, 20, cfg.Retrieval.TopK)
}

func TestValidateConfig_RejectsOutOfBoundsChunkSize(t *testing.T) {
	cfg := DefaultPipelineConfig()
	cfg.Name = "test"
	cfg.Chunking.ChunkSize = 50
	assert.Error(t, ValidateConfig(cfg))
}

func TestValidateConfig_RejectsOverlapNotLessThanSize(t *testing.T) {
	cfg := DefaultPipelineConfig()
	cfg.Name = "test"
	cfg.Chunking.ChunkSize = 100
	cfg.Chunking.ChunkOverlap = 100
	assert.Error(t, ValidateConfig(cfg))
}

func TestValidateConfig_RejectsRerankTopKAboveTopK(t *testing.T) {
	cfg := DefaultPipelineConfig()
	cfg.Name = "test"
	cfg.Retrieval.TopK = 5
	cfg.Retrieval.RerankTopK = 10
	assert.Error(t, ValidateConfig(cfg))
}

func TestValidateConfig_AcceptsDefaults(t *testing.T) {
	cfg := DefaultPipelineConfig()
	cfg.Name = "test"
	assert.NoError(t, ValidateConfig(cfg))
}

func TestWhereFromFilters_Empty(t *testing.T) {
	assert.Nil(t, whereFromFilters(nil))
}

func TestWhereFromFilters_BuildsOperatorClauses(t *testing.T) {
	where := whereFromFilters([]MetadataFilter{{Field: "file_name", Op: OpEq, Value: "A.txt"}})
	clause, ok := where["file_name"].(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, "A.txt", clause["eq"])
}

func TestBuildContextPrompt_IncludesSourceAndScore(t *testing.T) {
	results := []SearchResult{
		{Chunk: Chunk{Content: "hello", Metadata: map[string]interface{}{"file_name": "a.txt"}}, Score: 0.5},
	}
	prompt := buildContextPrompt("what is this?", results)
	assert.Contains(t, prompt, "Source: a.txt")
	assert.Contains(t, prompt, "hello")
	assert.Contains(t, prompt, "what is this?")
}

func TestWorkerPool_SubmitRunsFunctionAndBlocks(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Shutdown()

	var ran atomic.Bool
	pool.Submit(func() { ran.Store(true) })
	assert.True(t, ran.Load())
}

func TestWorkerPool_HandlesConcurrentSubmissions(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Shutdown()

	var counter atomic.Int64
	done := make(chan struct{}, 20)
	for i := 0; i < 20; i++ {
		go func() {
			pool.Submit(func() { counter.Add(1) })
			done <- struct{}{}
		}()
	}
	for i := 0; i < 20; i++ {
		<-done
	}
	assert.Equal(t, int64(20), counter.Load())
}

func TestSynthesizer_DisabledReturnsNil(t *testing.T) {
	s := NewSynthesizer(func(ctx context.Context, sys, user, provider string) (string, error) {
		return "should not be called", nil
	}, nil)
	answer := s.Synthesize(context.Background(), "q", []SearchResult{{Chunk: Chunk{Content: "x"}}}, LLMConfig{GenerateAnswer: false})
	assert.Nil(t, answer)
}

func TestSynthesizer_NoResultsReturnsNil(t *testing.T) {
	s := NewSynthesizer(func(ctx context.Context, sys, user, provider string) (string, error) {
		return "answer", nil
	}, nil)
	answer := s.Synthesize(context.Background(), "q", nil, LLMConfig{GenerateAnswer: true})
	assert.Nil(t, answer)
}

func TestSynthesizer_SwallowsChatError(t *testing.T) {
	s := NewSynthesizer(func(ctx context.Context, sys, user, provider string) (string, error) {
		return "", errors.New("all providers failed")
	}, nil)
	answer := s.Synthesize(context.Background(), "q", []SearchResult{{Chunk: Chunk{Content: "x"}}}, LLMConfig{GenerateAnswer: true})
	assert.Nil(t, answer)
}

func TestSynthesizer_ReturnsAnswerOnSuccess(t *testing.T) {
	s := NewSynthesizer(func(ctx context.Context, sys, user, provider string) (string, error) {
		return "the answer", nil
	}, nil)
	answer := s.Synthesize(context.Background(), "q", []SearchResult{{Chunk: Chunk{Content: "x"}}}, LLMConfig{GenerateAnswer: true})
	if assert.NotNil(t, answer) {
		assert.Equal(t, "the answer", *answer)
	}
}
