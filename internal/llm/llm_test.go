package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubChatter struct {
	answer string
	err    error
}

func (s *stubChatter) Chat(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return s.answer, s.err
}

func TestOrderStartingWith_NoPrimary(t *testing.T) {
	order := orderStartingWith("")
	assert.Equal(t, FallbackOrder, order)
}

func TestOrderStartingWith_PutsPrimaryFirst(t *testing.T) {
	order := orderStartingWith(Anthropic)
	assert.Equal(t, Anthropic, order[0])
	assert.Len(t, order, len(FallbackOrder))
	seen := map[Provider]bool{}
	for _, p := range order {
		assert.False(t, seen[p], "provider %s listed twice", p)
		seen[p] = true
	}
}

func TestDispatcher_NoProvidersConfigured(t *testing.T) {
	d := NewDispatcher(Config{}, nil)
	_, err := d.Chat(context.Background(), "sys", "user", "")
	assert.Error(t, err)
}

func TestOrDefault(t *testing.T) {
	assert.Equal(t, "fallback", orDefault("", "fallback"))
	assert.Equal(t, "explicit", orDefault("explicit", "fallback"))
}
