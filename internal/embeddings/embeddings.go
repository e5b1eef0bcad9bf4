// Package embeddings resolves a pipeline's embedding configuration to a
// concrete Model and vectorizes text batches, covering the bundled
// default encoder, named local encoders, and remote API encoders.
package embeddings

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/helixrag/ragengine/internal/errs"
)

// Model vectorizes text batches at a fixed dimensionality.
type Model interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Name() string
}

// Provider names mirror the EmbeddingProvider enum in internal/rag; kept
// as plain strings here so this package has no dependency on internal/rag
// (which itself depends on this package to resolve models).
const (
	ProviderChromaDefault       = "chroma_default"
	ProviderBGESmall            = "bge_small"
	ProviderSTMPNet             = "st_mpnet"
	ProviderSTRoberta           = "st_roberta"
	ProviderQwen3               = "qwen3_embed"
	ProviderOpenAI              = "openai"
	ProviderGoogle              = "google"
	ProviderSentenceTransformer = "sentence_transformers"
	ProviderHuggingFace         = "huggingface"
)

// RequestConfig is the subset of a pipeline's embedding config needed to
// resolve a Model.
type RequestConfig struct {
	Provider string
	Model    string
}

// Config carries the provider credentials the dispatcher needs to build
// remote models.
type Config struct {
	OpenAIAPIKey      string
	GoogleAPIKey      string
	HuggingFaceAPIKey string
}

// Resolve picks the Model for a pipeline's embedding configuration. A
// remote provider requested without its API key falls back to the bundled
// default encoder with a logged warning (preserved behavior); the returned
// bool reports whether that fallback happened, so callers can surface an
// explicit warning for a non-default choice made without a key.
func Resolve(ec RequestConfig, cfg Config, log *logrus.Logger) (Model, bool, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	switch ec.Provider {
	case ProviderChromaDefault, "":
		return NewDefaultEncoder(), false, nil
	case ProviderBGESmall, ProviderSTMPNet, ProviderSTRoberta, ProviderQwen3, ProviderSentenceTransformer:
		return NewLocalEncoder(ec.Provider), false, nil
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			log.WithField("provider", ec.Provider).Warn("openai embedding requested without API key, falling back to default encoder")
			return NewDefaultEncoder(), true, nil
		}
		return NewOpenAIEncoder(cfg.OpenAIAPIKey, ec.Model), false, nil
	case ProviderGoogle:
		if cfg.GoogleAPIKey == "" {
			log.WithField("provider", ec.Provider).Warn("google embedding requested without API key, falling back to default encoder")
			return NewDefaultEncoder(), true, nil
		}
		return NewGoogleEncoder(cfg.GoogleAPIKey, ec.Model), false, nil
	case ProviderHuggingFace:
		if cfg.HuggingFaceAPIKey == "" {
			log.WithField("provider", ec.Provider).Warn("huggingface embedding requested without API key, falling back to default encoder")
			return NewDefaultEncoder(), true, nil
		}
		return NewHuggingFaceEncoder(cfg.HuggingFaceAPIKey, ec.Model), false, nil
	default:
		return nil, false, errs.New(errs.KindValidation, "unknown embedding provider: "+ec.Provider)
	}
}
