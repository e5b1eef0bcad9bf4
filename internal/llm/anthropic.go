package llm

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/helixrag/ragengine/internal/errs"
)

type anthropicChatter struct {
	client anthropic.Client
	model  string
}

func newAnthropicChatter(apiKey, model string) *anthropicChatter {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &anthropicChatter{client: client, model: model}
}

func (c *anthropicChatter) Chat(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: defaultMaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return "", classifyAnthropicErr(err)
	}
	if len(msg.Content) == 0 {
		return "", errs.New(errs.KindProviderTimeout, "anthropic response contained no content blocks")
	}
	return msg.Content[0].Text, nil
}

func classifyAnthropicErr(err error) error {
	apiErr, ok := err.(*anthropic.Error)
	if !ok {
		return errs.Wrap(errs.KindInternal, "anthropic message request", err)
	}
	switch apiErr.StatusCode {
	case 401, 403:
		return errs.Wrap(errs.KindProviderAuth, "anthropic message request", err)
	case 429:
		return errs.Wrap(errs.KindProviderRateLimit, "anthropic message request", err)
	case 408, 504:
		return errs.Wrap(errs.KindProviderTimeout, "anthropic message request", err)
	default:
		return errs.Wrap(errs.KindInternal, "anthropic message request", err)
	}
}
