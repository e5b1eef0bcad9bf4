package database

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/helixrag/ragengine/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{
			Host:           "localhost",
			Port:           "5432",
			User:           "testuser",
			Password:       "testpass",
			Name:           "testdb",
			SSLMode:        "disable",
			MaxConnections: 10,
			ConnTimeout:    200 * time.Millisecond,
		},
	}
}

func TestNewPostgresDB(t *testing.T) {
	t.Run("UnreachableHostFailsWithinTimeout", func(t *testing.T) {
		cfg := testConfig()
		cfg.Database.Host = "nonexistent-host-12345.invalid"

		_, err := NewPostgresDB(context.Background(), cfg, logrus.New())
		assert.Error(t, err, "expected connection failure against an unreachable host")
	})

	t.Run("PrefersDatabaseURLOverDiscreteFields", func(t *testing.T) {
		cfg := testConfig()
		cfg.Database.URL = "postgres://u:p@nonexistent-host-99999.invalid:5432/db?sslmode=disable"

		_, err := NewPostgresDB(context.Background(), cfg, logrus.New())
		assert.Error(t, err)
	})

	t.Run("NilLoggerFallsBackToStandardLogger", func(t *testing.T) {
		cfg := testConfig()
		cfg.Database.Host = "nonexistent-host-12345.invalid"

		// Must not panic when log is nil.
		_, err := NewPostgresDB(context.Background(), cfg, nil)
		assert.Error(t, err)
	})
}

func TestPostgresDBInterface(t *testing.T) {
	t.Run("PostgresDBImplementsDB", func(t *testing.T) {
		var _ DB = (*PostgresDB)(nil)
	})
}

func TestMigrationsContent(t *testing.T) {
	t.Run("UUIDExtensionFirst", func(t *testing.T) {
		assert.True(t, len(migrations) > 0)
		assert.Contains(t, migrations[0], "uuid-ossp")
	})

	t.Run("AllTablesUseIfNotExists", func(t *testing.T) {
		for _, m := range migrations {
			if strings.Contains(m, "CREATE TABLE") {
				assert.Contains(t, m, "CREATE TABLE IF NOT EXISTS")
			}
		}
	})

	t.Run("AllIndexesUseIfNotExists", func(t *testing.T) {
		for _, m := range migrations {
			if strings.Contains(m, "CREATE INDEX") {
				assert.Contains(t, m, "CREATE INDEX IF NOT EXISTS")
			}
		}
	})

	t.Run("HasRAGPipelinesTable", func(t *testing.T) {
		found := false
		for _, m := range migrations {
			if strings.Contains(m, "CREATE TABLE IF NOT EXISTS rag_pipelines") {
				found = true
				assert.Contains(t, m, "name VARCHAR(255) UNIQUE NOT NULL")
				assert.Contains(t, m, "status VARCHAR(50) NOT NULL DEFAULT 'created'")
				assert.Contains(t, m, "chunking_config JSONB")
				assert.Contains(t, m, "embedding_config JSONB")
				assert.Contains(t, m, "vector_store_config JSONB")
				assert.Contains(t, m, "retrieval_config JSONB")
				assert.Contains(t, m, "llm_config JSONB")
				break
			}
		}
		assert.True(t, found, "expected migrations to include rag_pipelines table")
	})

	t.Run("HasRAGDocumentsTable", func(t *testing.T) {
		found := false
		for _, m := range migrations {
			if strings.Contains(m, "CREATE TABLE IF NOT EXISTS rag_documents") {
				found = true
				assert.Contains(t, m, "pipeline_id UUID NOT NULL REFERENCES rag_pipelines(id) ON DELETE CASCADE")
				assert.Contains(t, m, "file_name VARCHAR(500) NOT NULL")
				assert.Contains(t, m, "status VARCHAR(50) NOT NULL DEFAULT 'processed'")
				break
			}
		}
		assert.True(t, found, "expected migrations to include rag_documents table")
	})

	t.Run("HasExpectedIndexes", func(t *testing.T) {
		expected := []string{
			"idx_rag_pipelines_status",
			"idx_rag_documents_pipeline_id",
			"idx_rag_documents_status",
		}
		all := strings.Join(migrations, " ")
		for _, idx := range expected {
			assert.Contains(t, all, idx)
		}
	})
}

func TestPostgresDBNilPool(t *testing.T) {
	db := &PostgresDB{pool: nil, log: logrus.New()}

	t.Run("PoolReturnsNil", func(t *testing.T) {
		assert.Nil(t, db.Pool())
	})

	t.Run("PingPanicsOnNilPool", func(t *testing.T) {
		defer func() {
			if r := recover(); r != nil {
				t.Log("expected panic calling Ping against a nil pool")
			}
		}()
		_ = db.Ping(context.Background())
	})
}
