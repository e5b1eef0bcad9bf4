// Command server runs the RAG engine's HTTP API: pipeline management,
// document ingestion, and query/retrieval, backed by Postgres for the
// catalog and a configurable vector store for chunk embeddings.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/helixrag/ragengine/internal/config"
	"github.com/helixrag/ragengine/internal/database"
	"github.com/helixrag/ragengine/internal/embeddings"
	"github.com/helixrag/ragengine/internal/handlers"
	"github.com/helixrag/ragengine/internal/llm"
	"github.com/helixrag/ragengine/internal/rag"
	"github.com/helixrag/ragengine/internal/vectorstore"
)

func main() {
	os.Exit(run())
}

func run() int {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.ConnTimeout+5*time.Second)
	db, err := database.NewPostgresDB(ctx, cfg, log)
	cancel()
	if err != nil {
		log.WithError(err).Error("failed to connect to database")
		return 1
	}
	defer db.Close()

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = db.Migrate(migrateCtx)
	migrateCancel()
	if err != nil {
		log.WithError(err).Error("failed to run migrations")
		return 1
	}

	store, err := buildVectorStoreFactory(cfg)
	if err != nil {
		log.WithError(err).Error("failed to initialize vector store")
		return 1
	}

	pipelines := database.NewPipelineRepository(db.Pool())
	documents := database.NewDocumentRepository(db.Pool())
	optimizer := database.NewQueryOptimizer(db.Pool(), nil)

	embedCfg := embeddings.Config{
		OpenAIAPIKey:      cfg.RAG.OpenAIAPIKey,
		GoogleAPIKey:      cfg.RAG.GoogleAPIKey,
		HuggingFaceAPIKey: cfg.RAG.HuggingFaceAPIKey,
	}
	llmCfg := llm.Config{
		GeminiAPIKey:     cfg.RAG.GoogleAPIKey,
		GeminiModel:      cfg.RAG.GeminiModel,
		GroqAPIKey:       cfg.RAG.GroqAPIKey,
		GroqModel:        cfg.RAG.GroqModel,
		OpenRouterAPIKey: cfg.RAG.OpenRouterAPIKey,
		OpenRouterModel:  cfg.RAG.OpenRouterModel,
		OpenAIAPIKey:     cfg.RAG.OpenAIAPIKey,
		OpenAIModel:      cfg.RAG.OpenAIModel,
		AnthropicAPIKey:  cfg.RAG.AnthropicAPIKey,
		AnthropicModel:   cfg.RAG.AnthropicModel,
		DeepSeekAPIKey:   cfg.RAG.DeepSeekAPIKey,
		DeepSeekModel:    cfg.RAG.DeepSeekModel,
	}

	workerCount := cfg.RAG.RerankerWorkerCount
	if workerCount <= 0 {
		workerCount = 2
	}
	engine := rag.NewEngine(pipelines, documents, store, embedCfg, llmCfg, workerCount, log)
	engine.Registry.WithQueryOptimizer(optimizer)
	defer engine.Shutdown()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Server.RequestLogging {
		r.Use(requestLogger(log))
	}
	if cfg.Server.EnableCORS {
		r.Use(corsMiddleware(cfg.Server.CORSOrigins))
	}

	handlers.NewServer(engine, &cfg.RAG, log).Register(r)

	httpServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.WithField("addr", httpServer.Addr).Info("starting rag engine server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.WithError(err).Error("server failed to start")
		return 1
	case <-quit:
		log.Info("shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
		return 2
	}

	log.Info("server shutdown complete")
	return 0
}

func buildVectorStoreFactory(cfg *config.Config) (vectorstore.Factory, error) {
	switch cfg.RAG.VectorStoreBackend {
	case "qdrant":
		return vectorstore.NewQdrantFactory(cfg.RAG.QdrantHost, cfg.RAG.QdrantPort, cfg.RAG.VectorDimension)
	default:
		return vectorstore.NewChromaFactory(cfg.RAG.ChromaURL)
	}
}

func requestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		path := c.Request.URL.Path
		c.Next()
		log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     path,
			"status":   c.Writer.Status(),
			"duration": time.Since(started).String(),
		}).Info("request handled")
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	allowed := fmt.Sprintf("%v", origins)
	if len(origins) == 1 {
		allowed = origins[0]
	}
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", allowed)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
