package builder

import (
	"fmt"
	"net/http"
	"time"

	"github.com/futig/rag-backend/internal/api"
	chatapi "github.com/futig/rag-backend/internal/api/chat"
	"github.com/futig/rag-backend/internal/chunker"
	"github.com/futig/rag-backend/internal/config"
	"github.com/futig/rag-backend/internal/integration/embedding"
	"github.com/futig/rag-backend/internal/integration/llm"
	"github.com/futig/rag-backend/internal/integration/vectorstore"
	"github.com/futig/rag-backend/internal/pkg/validator"
	"github.com/futig/rag-backend/internal/usecase/chat"
	"github.com/futig/rag-backend/internal/usecase/ingest"
	"github.com/futig/rag-backend/internal/usecase/retrieval"
	"go.uber.org/zap"
)

// Build assembles the HTTP server application.
func Build() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	// Initialize external service connectors (with mock support)
	var embeddingConnector retrieval.EmbeddingConnector
	var vectorStoreConnector retrieval.VectorStoreConnector
	var llmConnector chat.LLMConnector

	if cfg.EnableMocks {
		logger.Info("Using mock connectors for external services")
		embeddingConnector = embedding.NewMockConnector(logger)
		vectorStoreConnector = vectorstore.NewMockConnector(logger)
		llmConnector = llm.NewMockConnector(logger)
	} else {
		logger.Info("Using real connectors for external services")
		embeddingConnector = embedding.NewConnector(cfg.EmbeddingCfg, logger)
		vectorStoreConnector = vectorstore.NewConnector(cfg.VectorStoreCfg, logger)
		llmConnector = llm.NewConnector(cfg.LLMCfg, logger)
	}

	// Initialize use cases
	retrievalUC := retrieval.NewUsecase(
		embeddingConnector,
		vectorStoreConnector,
		cfg.AgentCfg.TopK,
		logger,
	)

	chatUC := chat.NewUsecase(
		llmConnector,
		retrievalUC,
		cfg.SystemPrompt,
		cfg.AgentCfg.MaxSteps,
		logger,
	)
	logger.Info("Use cases initialized")

	// Setup API handlers
	chatHandler := chatapi.NewHandler(chatUC, validator.NewValidator())
	logger.Info("API handlers initialized")

	// Setup router
	router := api.SetupRouter(chatHandler, logger)
	logger.Info("HTTP router configured")

	// Create HTTP server
	server := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: router,
		// Agent requests are long-lived; the write timeout must outlast
		// the in-handler timeout middleware.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 6 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		logger: logger,
	}, nil
}

// BuildIngest assembles the ingestion batch job.
func BuildIngest() (*ingest.Usecase, *zap.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building ingestion job",
		zap.String("environment", cfg.Environment),
		zap.String("docs_dir", cfg.IngestCfg.DocsDir),
		zap.Int("chunk_size", cfg.IngestCfg.ChunkSize),
		zap.Int("chunk_overlap", cfg.IngestCfg.ChunkOverlap),
	)

	// Initialize external service connectors (with mock support)
	var embeddingConnector ingest.EmbeddingConnector
	var vectorStoreConnector ingest.VectorStoreConnector

	if cfg.EnableMocks {
		logger.Info("Using mock connectors for external services")
		embeddingConnector = embedding.NewMockConnector(logger)
		vectorStoreConnector = vectorstore.NewMockConnector(logger)
	} else {
		logger.Info("Using real connectors for external services")
		embeddingConnector = embedding.NewConnector(cfg.EmbeddingCfg, logger)
		vectorStoreConnector = vectorstore.NewConnector(cfg.VectorStoreCfg, logger)
	}

	ingestUC := ingest.NewUsecase(
		chunker.NewWindowChunker(cfg.IngestCfg.ChunkSize, cfg.IngestCfg.ChunkOverlap),
		embeddingConnector,
		vectorStoreConnector,
		cfg.IngestCfg.DocsDir,
		logger,
	)

	return ingestUC, logger, nil
}
