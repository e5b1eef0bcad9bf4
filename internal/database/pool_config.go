package database

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolConfigOptions provides configurable pool settings
type PoolConfigOptions struct {
	// Maximum number of connections in the pool
	MaxConns int32
	// Minimum number of connections to maintain
	MinConns int32
	// Maximum lifetime of a connection
	MaxConnLifetime time.Duration
	// Maximum idle time for a connection
	MaxConnIdleTime time.Duration
	// Health check period
	HealthCheckPeriod time.Duration
	// Connection timeout
	ConnectTimeout time.Duration
	// Enable prepared statement caching
	EnableStatementCache bool
	// Statement cache capacity
	StatementCacheCapacity int
	// Use simple protocol (faster for simple queries)
	PreferSimpleProtocol bool
	// Application name for connection identification
	ApplicationName string
}

// DefaultPoolOptions returns optimized default pool options
func DefaultPoolOptions() *PoolConfigOptions {
	cpuCount := int32(runtime.NumCPU()) // #nosec G115 - CPU count fits in int32
	// Rule of thumb: (2 * CPU cores) + effective spindle count (1 for SSD)
	maxConns := cpuCount*2 + 1
	if maxConns < 10 {
		maxConns = 10
	}
	if maxConns > 50 {
		maxConns = 50
	}

	return &PoolConfigOptions{
		MaxConns:               maxConns,
		MinConns:               cpuCount / 2,
		MaxConnLifetime:        time.Hour,
		MaxConnIdleTime:        30 * time.Minute,
		HealthCheckPeriod:      30 * time.Second,
		ConnectTimeout:         5 * time.Second,
		EnableStatementCache:   true,
		StatementCacheCapacity: 512,
		PreferSimpleProtocol:   true,
		ApplicationName:        "ragengine",
	}
}

// CreateOptimizedPoolConfig creates a pgxpool.Config with optimized settings
func CreateOptimizedPoolConfig(connString string, opts *PoolConfigOptions) (*pgxpool.Config, error) {
	if opts == nil {
		opts = DefaultPoolOptions()
	}

	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	// Pool size settings
	config.MaxConns = opts.MaxConns
	config.MinConns = opts.MinConns
	config.MaxConnLifetime = opts.MaxConnLifetime
	config.MaxConnIdleTime = opts.MaxConnIdleTime
	config.HealthCheckPeriod = opts.HealthCheckPeriod

	// Connection settings
	config.ConnConfig.ConnectTimeout = opts.ConnectTimeout

	// Runtime parameters
	config.ConnConfig.RuntimeParams["application_name"] = opts.ApplicationName

	// Statement cache configuration
	if opts.EnableStatementCache {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement
	}

	// Simple protocol for faster simple queries
	if opts.PreferSimpleProtocol {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	}

	// Configure after connect hook for additional setup
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		// Set session-level optimizations
		_, err := conn.Exec(ctx, "SET synchronous_commit = off")
		if err != nil {
			return fmt.Errorf("set synchronous_commit: %w", err)
		}
		return nil
	}

	return config, nil
}
