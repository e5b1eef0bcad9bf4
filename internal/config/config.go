// Package config loads process configuration from environment variables
// using the same plain-struct, no-framework loader style used throughout
// this codebase: one Load() entrypoint, env-backed fields with sane
// defaults, and small typed helpers for the common conversions.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates every configuration block the RAG engine needs.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	RAG      RAGConfig
}

type ServerConfig struct {
	Port           string
	APIKey         string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	Host           string
	Mode           string // "debug" or "release" (gin mode)
	EnableCORS     bool
	CORSOrigins    []string
	RequestLogging bool
}

type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	SSLMode        string
	MaxConnections int
	ConnTimeout    time.Duration
	// URL, when set, takes precedence over the discrete Host/Port/... fields.
	URL string
}

// RAGConfig holds settings specific to the RAG engine: where vector data
// lives on disk, upload limits, default pipeline configuration, and the
// provider credentials the embedding/LLM/reranker dispatchers consult.
type RAGConfig struct {
	DataRoot          string
	MaxUploadBytes    int64
	AllowedExtensions []string

	DefaultChunkSize    int
	DefaultChunkOverlap int
	DefaultTopK         int
	DefaultRerankTopK   int
	ChatTimeout         time.Duration
	EmbeddingTimeout    time.Duration
	RerankerWorkerCount int

	OpenAIAPIKey      string
	GoogleAPIKey      string
	AnthropicAPIKey   string
	DeepSeekAPIKey    string
	GroqAPIKey        string
	OpenRouterAPIKey  string
	HuggingFaceAPIKey string

	GeminiModel      string
	GroqModel        string
	OpenRouterModel  string
	OpenAIModel      string
	AnthropicModel   string
	DeepSeekModel    string

	VectorStoreBackend string // "chroma" or "qdrant"
	ChromaURL          string
	QdrantHost         string
	QdrantPort         int
	VectorDimension    uint64
}

// Load builds a Config from the process environment, falling back to
// defaults for anything unset.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			APIKey:         getEnv("RAGENGINE_API_KEY", ""),
			ReadTimeout:    getDurationEnv("READ_TIMEOUT", 30*time.Second),
			WriteTimeout:   getDurationEnv("WRITE_TIMEOUT", 30*time.Second),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Mode:           getEnv("GIN_MODE", "release"),
			EnableCORS:     getBoolEnv("CORS_ENABLED", true),
			CORSOrigins:    getEnvSlice("CORS_ORIGINS", []string{"*"}),
			RequestLogging: getBoolEnv("REQUEST_LOGGING", true),
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "ragengine"),
			Password:       getEnv("DB_PASSWORD", "secret"),
			Name:           getEnv("DB_NAME", "ragengine_db"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MaxConnections: getIntEnv("DB_MAX_CONNECTIONS", 20),
			ConnTimeout:    getDurationEnv("DB_CONN_TIMEOUT", 10*time.Second),
		},
		RAG: RAGConfig{
			DataRoot:            getEnv("RAG_DATA_ROOT", "./data"),
			MaxUploadBytes:      int64(getIntEnv("RAG_MAX_UPLOAD_MB", 20)) * 1024 * 1024,
			AllowedExtensions:   getEnvSlice("RAG_ALLOWED_EXTENSIONS", []string{".txt", ".pdf", ".md", ".csv", ".json", ".docx", ".html", ".htm"}),
			DefaultChunkSize:    getIntEnv("RAG_DEFAULT_CHUNK_SIZE", 512),
			DefaultChunkOverlap: getIntEnv("RAG_DEFAULT_CHUNK_OVERLAP", 50),
			DefaultTopK:         getIntEnv("RAG_DEFAULT_TOP_K", 5),
			DefaultRerankTopK:   getIntEnv("RAG_DEFAULT_RERANK_TOP_K", 3),
			ChatTimeout:         getDurationEnv("RAG_CHAT_TIMEOUT", 30*time.Second),
			EmbeddingTimeout:    getDurationEnv("RAG_EMBEDDING_TIMEOUT", 10*time.Second),
			RerankerWorkerCount: getIntEnv("RAG_RERANKER_WORKERS", 2),

			OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
			GoogleAPIKey:      getEnv("GOOGLE_API_KEY", ""),
			AnthropicAPIKey:   getEnv("ANTHROPIC_API_KEY", ""),
			DeepSeekAPIKey:    getEnv("DEEPSEEK_API_KEY", ""),
			GroqAPIKey:        getEnv("GROQ_API_KEY", ""),
			OpenRouterAPIKey:  getEnv("OPENROUTER_API_KEY", ""),
			HuggingFaceAPIKey: getEnv("HUGGINGFACE_API_KEY", ""),

			GeminiModel:     getEnv("GEMINI_MODEL", ""),
			GroqModel:       getEnv("GROQ_MODEL", ""),
			OpenRouterModel: getEnv("OPENROUTER_MODEL", ""),
			OpenAIModel:     getEnv("OPENAI_CHAT_MODEL", ""),
			AnthropicModel:  getEnv("ANTHROPIC_MODEL", ""),
			DeepSeekModel:   getEnv("DEEPSEEK_MODEL", ""),

			VectorStoreBackend: getEnv("RAG_VECTOR_STORE", "chroma"),
			ChromaURL:          getEnv("CHROMA_URL", "http://localhost:8000"),
			QdrantHost:         getEnv("QDRANT_HOST", "localhost"),
			QdrantPort:         getIntEnv("QDRANT_PORT", 6334),
			VectorDimension:    uint64(getIntEnv("RAG_VECTOR_DIMENSION", 384)),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
