package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"

	"github.com/helixrag/ragengine/internal/errs"
)

const (
	defaultOpenAIEmbedModel = "text-embedding-3-small"
	openAIEmbedDims         = 1536
	defaultGoogleEmbedModel = "text-embedding-004"
	googleEmbedDims         = 768
	defaultHFEmbedModel     = "sentence-transformers/all-MiniLM-L6-v2"
	hfEmbedDims             = 384
)

type openAIEncoder struct {
	client *openai.Client
	model  string
}

// NewOpenAIEncoder returns a Model backed by OpenAI's embeddings endpoint.
func NewOpenAIEncoder(apiKey, model string) Model {
	if model == "" {
		model = defaultOpenAIEmbedModel
	}
	return &openAIEncoder{client: openai.NewClient(apiKey), model: model}
}

func (e *openAIEncoder) Name() string   { return "openai:" + e.model }
func (e *openAIEncoder) Dimensions() int { return openAIEmbedDims }

func (e *openAIEncoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, errs.Wrap(classifyProviderErr(err), "openai embeddings request", err)
	}
	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		out[i] = d.Embedding
	}
	return out, nil
}

type googleEncoder struct {
	apiKey string
	model  string
}

// NewGoogleEncoder returns a Model backed by Google's text embedding API.
func NewGoogleEncoder(apiKey, model string) Model {
	if model == "" {
		model = defaultGoogleEmbedModel
	}
	return &googleEncoder{apiKey: apiKey, model: model}
}

func (e *googleEncoder) Name() string    { return "google:" + e.model }
func (e *googleEncoder) Dimensions() int { return googleEmbedDims }

func (e *googleEncoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  e.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errs.Wrap(errs.KindProviderAuth, "create google embedding client", err)
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
		resp, err := client.Models.EmbedContent(ctx, e.model, contents, nil)
		if err != nil {
			return nil, errs.Wrap(classifyProviderErr(err), "google embed content", err)
		}
		if len(resp.Embeddings) == 0 {
			return nil, errs.New(errs.KindProviderTimeout, "google embedding response contained no embeddings")
		}
		out[i] = resp.Embeddings[0].Values
	}
	return out, nil
}

// huggingFaceEncoder calls the hosted inference API directly over HTTP;
// no HuggingFace client library is part of the reused stack, so this one
// provider goes through net/http instead of a generated SDK.
type huggingFaceEncoder struct {
	apiKey string
	model  string
	http   *http.Client
}

// NewHuggingFaceEncoder returns a Model backed by the HuggingFace hosted
// inference API's feature-extraction pipeline.
func NewHuggingFaceEncoder(apiKey, model string) Model {
	if model == "" {
		model = defaultHFEmbedModel
	}
	return &huggingFaceEncoder{apiKey: apiKey, model: model, http: &http.Client{Timeout: 30 * time.Second}}
}

func (e *huggingFaceEncoder) Name() string    { return "huggingface:" + e.model }
func (e *huggingFaceEncoder) Dimensions() int { return hfEmbedDims }

func (e *huggingFaceEncoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	url := fmt.Sprintf("https://api-inference.huggingface.co/pipeline/feature-extraction/%s", e.model)
	body, err := json.Marshal(map[string]interface{}{
		"inputs":  texts,
		"options": map[string]bool{"wait_for_model": true},
	})
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, "marshal huggingface request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, "build huggingface request", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.http.Do(req)
	if err != nil {
		return nil, errs.Wrap(errs.KindProviderTimeout, "huggingface request", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, "read huggingface response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errs.New(classifyStatus(resp.StatusCode), fmt.Sprintf("huggingface inference returned %d: %s", resp.StatusCode, string(raw)))
	}

	var vectors [][]float32
	if err := json.Unmarshal(raw, &vectors); err != nil {
		return nil, errs.Wrap(errs.KindInternal, "decode huggingface response", err)
	}
	return vectors, nil
}

// classifyStatus maps a provider HTTP status to the shared provider-error
// Kind taxonomy also used by the LLM dispatcher.
func classifyStatus(status int) errs.Kind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return errs.KindProviderAuth
	case status == http.StatusTooManyRequests:
		return errs.KindProviderRateLimit
	case status == http.StatusGatewayTimeout || status == http.StatusRequestTimeout:
		return errs.KindProviderTimeout
	default:
		return errs.KindInternal
	}
}

// classifyProviderErr makes a best-effort Kind guess from an SDK error that
// doesn't expose a structured status code.
func classifyProviderErr(err error) errs.Kind {
	msg := err.Error()
	switch {
	case containsAny(msg, "401", "unauthorized", "invalid api key", "authentication"):
		return errs.KindProviderAuth
	case containsAny(msg, "429", "rate limit", "quota"):
		return errs.KindProviderRateLimit
	case containsAny(msg, "deadline exceeded", "timeout", "context canceled"):
		return errs.KindProviderTimeout
	default:
		return errs.KindInternal
	}
}

func containsAny(s string, substrs ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range substrs {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}
