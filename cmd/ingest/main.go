package main

import (
	"context"
	"log"

	"github.com/futig/rag-backend/internal/builder"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

func main() {
	ingestUC, logger, err := builder.BuildIngest()
	if err != nil {
		log.Fatal("Failed to build ingestion job:", err)
	}
	defer logger.Sync()

	ctx := ctxzap.ToContext(context.Background(), logger)

	report, err := ingestUC.Run(ctx)
	if err != nil {
		logger.Fatal("Ingestion failed", zap.Error(err))
	}

	logger.Info("Ingestion finished",
		zap.Int("documents", report.Documents),
		zap.Int("chunks", report.Chunks),
	)
}
