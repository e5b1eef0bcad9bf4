// Package llm dispatches chat completion requests across six providers
// with a fixed fallback order, so an answer synthesis or LLM-scored rerank
// call degrades gracefully when a primary provider is unavailable.
package llm

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/helixrag/ragengine/internal/errs"
)

// Provider is one chat-completion backend.
type Provider string

const (
	Gemini     Provider = "gemini"
	Groq       Provider = "groq"
	OpenRouter Provider = "openrouter"
	OpenAI     Provider = "openai"
	Anthropic  Provider = "anthropic"
	DeepSeek   Provider = "deepseek"
)

// FallbackOrder is the fixed provider iteration order used whenever the
// requested primary provider fails.
var FallbackOrder = []Provider{Gemini, Groq, OpenRouter, OpenAI, Anthropic, DeepSeek}

const (
	defaultMaxTokens   = 1500
	defaultTemperature = 0.3
)

// Chatter is the shared shape every provider backend implements.
type Chatter interface {
	Chat(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Config carries the provider credentials and default models the
// dispatcher needs to construct each backend lazily.
type Config struct {
	GeminiAPIKey     string
	GeminiModel      string
	GroqAPIKey       string
	GroqModel        string
	OpenRouterAPIKey string
	OpenRouterModel  string
	OpenAIAPIKey     string
	OpenAIModel      string
	AnthropicAPIKey  string
	AnthropicModel   string
	DeepSeekAPIKey   string
	DeepSeekModel    string
}

// Dispatcher resolves a provider to a live backend and runs the shared
// fallback algorithm across the fixed provider order.
type Dispatcher struct {
	cfg Config
	log *logrus.Logger
}

// NewDispatcher builds a dispatcher from provider credentials.
func NewDispatcher(cfg Config, log *logrus.Logger) *Dispatcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Dispatcher{cfg: cfg, log: log}
}

// Chat calls the requested provider first, falling back through
// FallbackOrder on any failure, and returns the first successful answer.
func (d *Dispatcher) Chat(ctx context.Context, systemPrompt, userPrompt string, primary Provider) (string, error) {
	order := orderStartingWith(primary)

	var lastErr error
	for _, p := range order {
		backend, err := d.backend(p)
		if err != nil {
			lastErr = err
			d.log.WithField("provider", p).WithError(err).Debug("provider unavailable, trying next")
			continue
		}
		answer, err := backend.Chat(ctx, systemPrompt, userPrompt)
		if err != nil {
			lastErr = err
			d.log.WithField("provider", p).WithError(err).Warn("provider call failed, trying next")
			continue
		}
		d.log.WithField("provider", p).Debug("provider call succeeded")
		return answer, nil
	}

	if lastErr == nil {
		lastErr = errs.New(errs.KindAllProvidersFailed, "no chat providers configured")
	}
	return "", errs.Wrap(errs.KindAllProvidersFailed, "all chat providers failed", lastErr)
}

// orderStartingWith puts the requested primary provider first, then the
// rest of FallbackOrder in its usual sequence.
func orderStartingWith(primary Provider) []Provider {
	if primary == "" {
		return FallbackOrder
	}
	order := make([]Provider, 0, len(FallbackOrder))
	order = append(order, primary)
	for _, p := range FallbackOrder {
		if p != primary {
			order = append(order, p)
		}
	}
	return order
}

func (d *Dispatcher) backend(p Provider) (Chatter, error) {
	switch p {
	case Gemini:
		if d.cfg.GeminiAPIKey == "" {
			return nil, errs.New(errs.KindProviderAuth, "gemini api key not configured")
		}
		return newGeminiChatter(d.cfg.GeminiAPIKey, orDefault(d.cfg.GeminiModel, "gemini-1.5-flash")), nil
	case Groq:
		if d.cfg.GroqAPIKey == "" {
			return nil, errs.New(errs.KindProviderAuth, "groq api key not configured")
		}
		return newOpenAICompatChatter(d.cfg.GroqAPIKey, "https://api.groq.com/openai/v1", orDefault(d.cfg.GroqModel, "llama-3.3-70b-versatile")), nil
	case OpenRouter:
		if d.cfg.OpenRouterAPIKey == "" {
			return nil, errs.New(errs.KindProviderAuth, "openrouter api key not configured")
		}
		return newOpenAICompatChatter(d.cfg.OpenRouterAPIKey, "https://openrouter.ai/api/v1", orDefault(d.cfg.OpenRouterModel, "openai/gpt-4o-mini")), nil
	case OpenAI:
		if d.cfg.OpenAIAPIKey == "" {
			return nil, errs.New(errs.KindProviderAuth, "openai api key not configured")
		}
		return newOpenAICompatChatter(d.cfg.OpenAIAPIKey, "", orDefault(d.cfg.OpenAIModel, "gpt-4o-mini")), nil
	case Anthropic:
		if d.cfg.AnthropicAPIKey == "" {
			return nil, errs.New(errs.KindProviderAuth, "anthropic api key not configured")
		}
		return newAnthropicChatter(d.cfg.AnthropicAPIKey, orDefault(d.cfg.AnthropicModel, "claude-3-5-haiku-latest")), nil
	case DeepSeek:
		if d.cfg.DeepSeekAPIKey == "" {
			return nil, errs.New(errs.KindProviderAuth, "deepseek api key not configured")
		}
		return newOpenAICompatChatter(d.cfg.DeepSeekAPIKey, "https://api.deepseek.com/v1", orDefault(d.cfg.DeepSeekModel, "deepseek-chat")), nil
	default:
		return nil, errs.New(errs.KindValidation, "unknown llm provider: "+string(p))
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
