package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/helixrag/ragengine/internal/errs"
)

// openAICompatChatter talks to any OpenAI-chat-completions-compatible
// endpoint. Groq, OpenRouter and DeepSeek all expose this exact wire
// format, so one client plus a BaseURL override covers all four
// providers that aren't Gemini or Anthropic.
type openAICompatChatter struct {
	client *openai.Client
	model  string
}

func newOpenAICompatChatter(apiKey, baseURL, model string) *openAICompatChatter {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &openAICompatChatter{client: openai.NewClientWithConfig(cfg), model: model}
}

func (c *openAICompatChatter) Chat(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		MaxTokens:   defaultMaxTokens,
		Temperature: defaultTemperature,
	})
	if err != nil {
		return "", classifyOpenAIErr(err)
	}
	if len(resp.Choices) == 0 {
		return "", errs.New(errs.KindProviderTimeout, "chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func classifyOpenAIErr(err error) error {
	var apiErr *openai.APIError
	if ok := asAPIError(err, &apiErr); ok {
		switch apiErr.HTTPStatusCode {
		case 401, 403:
			return errs.Wrap(errs.KindProviderAuth, "chat completion request", err)
		case 429:
			return errs.Wrap(errs.KindProviderRateLimit, "chat completion request", err)
		case 408, 504:
			return errs.Wrap(errs.KindProviderTimeout, "chat completion request", err)
		}
	}
	return errs.Wrap(errs.KindInternal, "chat completion request", err)
}

func asAPIError(err error, target **openai.APIError) bool {
	apiErr, ok := err.(*openai.APIError)
	if !ok {
		return false
	}
	*target = apiErr
	return true
}
