package llm

import (
	"context"

	"google.golang.org/genai"

	"github.com/helixrag/ragengine/internal/errs"
)

type geminiChatter struct {
	apiKey string
	model  string
}

func newGeminiChatter(apiKey, model string) *geminiChatter {
	return &geminiChatter{apiKey: apiKey, model: model}
}

func (c *geminiChatter) Chat(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", errs.Wrap(errs.KindProviderAuth, "create gemini client", err)
	}

	temperature := float32(defaultTemperature)
	maxTokens := int32(defaultMaxTokens)
	resp, err := client.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{genai.NewContentFromText(userPrompt, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
			Temperature:       &temperature,
			MaxOutputTokens:   maxTokens,
		})
	if err != nil {
		return "", errs.Wrap(errs.KindProviderTimeout, "gemini generate content", err)
	}
	text := resp.Text()
	if text == "" {
		return "", errs.New(errs.KindProviderTimeout, "gemini response contained no text")
	}
	return text, nil
}
