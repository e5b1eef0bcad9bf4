package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/helixrag/ragengine/internal/config"
)

// DB is the narrow interface the rest of the engine depends on, so
// repositories and the pipeline registry can be tested against a fake.
type DB interface {
	Pool() *pgxpool.Pool
	Ping(ctx context.Context) error
	Close()
	HealthCheck(ctx context.Context) error
}

// PostgresDB implements DB using PostgreSQL with pgxpool.
type PostgresDB struct {
	pool *pgxpool.Pool
	log  *logrus.Logger
}

// NewPostgresDB opens a connection pool from config, preferring a full
// DATABASE_URL when present and otherwise assembling one from the discrete
// Database fields.
func NewPostgresDB(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*PostgresDB, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	connString := cfg.Database.URL
	if connString == "" {
		connString = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			cfg.Database.User, cfg.Database.Password, cfg.Database.Host,
			cfg.Database.Port, cfg.Database.Name, cfg.Database.SSLMode)
	}

	poolCfg, err := CreateOptimizedPoolConfig(connString, DefaultPoolOptions())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	if cfg.Database.MaxConnections > 0 {
		poolCfg.MaxConns = int32(cfg.Database.MaxConnections)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Database.ConnTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.WithField("database", cfg.Database.Name).Info("connected to postgresql")
	return &PostgresDB{pool: pool, log: log}, nil
}

func (p *PostgresDB) Pool() *pgxpool.Pool { return p.pool }

func (p *PostgresDB) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *PostgresDB) Close() {
	p.pool.Close()
}

// HealthCheck performs a bounded health check on the database.
func (p *PostgresDB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return p.pool.Ping(ctx)
}

// Migrate applies the engine's schema, idempotently.
func (p *PostgresDB) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("run migration: %w", err)
		}
	}
	p.log.Info("schema migrations applied")
	return nil
}

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

	`CREATE TABLE IF NOT EXISTS rag_pipelines (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) UNIQUE NOT NULL,
		description TEXT DEFAULT '',
		status VARCHAR(50) NOT NULL DEFAULT 'created',
		chunking_config JSONB NOT NULL DEFAULT '{}',
		embedding_config JSONB NOT NULL DEFAULT '{}',
		vector_store_config JSONB NOT NULL DEFAULT '{}',
		retrieval_config JSONB NOT NULL DEFAULT '{}',
		llm_config JSONB NOT NULL DEFAULT '{}',
		document_count INTEGER NOT NULL DEFAULT 0,
		chunk_count INTEGER NOT NULL DEFAULT 0,
		total_queries BIGINT NOT NULL DEFAULT 0,
		last_query_at TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS rag_documents (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		pipeline_id UUID NOT NULL REFERENCES rag_pipelines(id) ON DELETE CASCADE,
		file_name VARCHAR(500) NOT NULL,
		file_size_bytes BIGINT NOT NULL DEFAULT 0,
		file_type VARCHAR(20) NOT NULL DEFAULT '',
		chunk_count INTEGER NOT NULL DEFAULT 0,
		character_count INTEGER NOT NULL DEFAULT 0,
		word_count INTEGER NOT NULL DEFAULT 0,
		status VARCHAR(50) NOT NULL DEFAULT 'processed',
		error_message TEXT,
		processing_time_ms BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_rag_pipelines_status ON rag_pipelines(status)`,
	`CREATE INDEX IF NOT EXISTS idx_rag_documents_pipeline_id ON rag_documents(pipeline_id)`,
	`CREATE INDEX IF NOT EXISTS idx_rag_documents_status ON rag_documents(status)`,
}
