package config

import (
	"os"
	"testing"
	"time"
)

func withCleanEnv(t *testing.T, keys []string, fn func()) {
	t.Helper()
	original := make(map[string]string)
	for _, key := range keys {
		original[key] = os.Getenv(key)
		os.Unsetenv(key)
	}
	defer func() {
		for key, value := range original {
			if value != "" {
				os.Setenv(key, value)
			} else {
				os.Unsetenv(key)
			}
		}
	}()
	fn()
}

func TestLoadDefaults(t *testing.T) {
	withCleanEnv(t, []string{
		"PORT", "RAGENGINE_API_KEY", "DB_HOST", "DB_PORT", "DB_USER",
		"RAG_DATA_ROOT", "RAG_MAX_UPLOAD_MB", "RAG_DEFAULT_CHUNK_SIZE",
		"OPENAI_API_KEY", "HUGGINGFACE_API_KEY",
	}, func() {
		cfg := Load()

		if cfg.Server.Port != "8080" {
			t.Errorf("expected Server.Port 8080, got %s", cfg.Server.Port)
		}
		if cfg.Server.APIKey != "" {
			t.Errorf("expected Server.APIKey to default to empty, got %s", cfg.Server.APIKey)
		}
		if cfg.Server.Mode != "release" {
			t.Errorf("expected Server.Mode release, got %s", cfg.Server.Mode)
		}

		if cfg.Database.Host != "localhost" {
			t.Errorf("expected Database.Host localhost, got %s", cfg.Database.Host)
		}
		if cfg.Database.Name != "ragengine_db" {
			t.Errorf("expected Database.Name ragengine_db, got %s", cfg.Database.Name)
		}

		if cfg.RAG.DataRoot != "./data" {
			t.Errorf("expected RAG.DataRoot ./data, got %s", cfg.RAG.DataRoot)
		}
		if cfg.RAG.MaxUploadBytes != 20*1024*1024 {
			t.Errorf("expected RAG.MaxUploadBytes 20MB, got %d", cfg.RAG.MaxUploadBytes)
		}
		if cfg.RAG.DefaultChunkSize != 512 {
			t.Errorf("expected RAG.DefaultChunkSize 512, got %d", cfg.RAG.DefaultChunkSize)
		}
		if cfg.RAG.DefaultChunkOverlap != 50 {
			t.Errorf("expected RAG.DefaultChunkOverlap 50, got %d", cfg.RAG.DefaultChunkOverlap)
		}
		if len(cfg.RAG.AllowedExtensions) != 8 {
			t.Errorf("expected 8 allowed extensions, got %v", cfg.RAG.AllowedExtensions)
		}
		if cfg.RAG.OpenAIAPIKey != "" {
			t.Errorf("expected RAG.OpenAIAPIKey empty by default, got %s", cfg.RAG.OpenAIAPIKey)
		}
		if cfg.RAG.HuggingFaceAPIKey != "" {
			t.Errorf("expected RAG.HuggingFaceAPIKey empty by default, got %s", cfg.RAG.HuggingFaceAPIKey)
		}
	})
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	withCleanEnv(t, []string{
		"PORT", "RAG_DATA_ROOT", "RAG_DEFAULT_CHUNK_SIZE", "RAG_MAX_UPLOAD_MB",
		"OPENAI_API_KEY", "HUGGINGFACE_API_KEY",
	}, func() {
		os.Setenv("PORT", "9090")
		os.Setenv("RAG_DATA_ROOT", "/srv/rag-data")
		os.Setenv("RAG_DEFAULT_CHUNK_SIZE", "1024")
		os.Setenv("RAG_MAX_UPLOAD_MB", "50")
		os.Setenv("OPENAI_API_KEY", "sk-test")
		os.Setenv("HUGGINGFACE_API_KEY", "hf-test")

		cfg := Load()

		if cfg.Server.Port != "9090" {
			t.Errorf("expected Server.Port 9090, got %s", cfg.Server.Port)
		}
		if cfg.RAG.DataRoot != "/srv/rag-data" {
			t.Errorf("expected RAG.DataRoot override, got %s", cfg.RAG.DataRoot)
		}
		if cfg.RAG.DefaultChunkSize != 1024 {
			t.Errorf("expected RAG.DefaultChunkSize 1024, got %d", cfg.RAG.DefaultChunkSize)
		}
		if cfg.RAG.MaxUploadBytes != 50*1024*1024 {
			t.Errorf("expected RAG.MaxUploadBytes 50MB, got %d", cfg.RAG.MaxUploadBytes)
		}
		if cfg.RAG.OpenAIAPIKey != "sk-test" {
			t.Errorf("expected RAG.OpenAIAPIKey override, got %s", cfg.RAG.OpenAIAPIKey)
		}
		if cfg.RAG.HuggingFaceAPIKey != "hf-test" {
			t.Errorf("expected RAG.HuggingFaceAPIKey override, got %s", cfg.RAG.HuggingFaceAPIKey)
		}
	})
}

func TestGetEnvHelpers(t *testing.T) {
	os.Setenv("TEST_INT", "42")
	defer os.Unsetenv("TEST_INT")
	if getIntEnv("TEST_INT", 0) != 42 {
		t.Errorf("expected getIntEnv to return 42")
	}
	if getIntEnv("TEST_INT_MISSING", 99) != 99 {
		t.Errorf("expected getIntEnv to return default 99")
	}

	os.Setenv("TEST_DURATION", "5m")
	defer os.Unsetenv("TEST_DURATION")
	if getDurationEnv("TEST_DURATION", time.Second) != 5*time.Minute {
		t.Errorf("expected getDurationEnv to return 5m")
	}

	os.Setenv("TEST_SLICE", "a,b,c")
	defer os.Unsetenv("TEST_SLICE")
	slice := getEnvSlice("TEST_SLICE", nil)
	if len(slice) != 3 || slice[0] != "a" {
		t.Errorf("expected getEnvSlice to split on comma, got %v", slice)
	}
}

func TestConfigInstancesIndependent(t *testing.T) {
	cfg1 := Load()
	cfg2 := Load()
	cfg1.Server.Port = "9999"
	if cfg2.Server.Port == "9999" {
		t.Error("Config instances should be independent")
	}
}
