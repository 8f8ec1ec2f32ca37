package ingest

import (
	"context"

	"github.com/futig/rag-backend/internal/entity"
)

type EmbeddingConnector interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}

type VectorStoreConnector interface {
	EnsureCollection(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, records []entity.IndexRecord) error
}

type Chunker interface {
	Chunk(doc entity.Document) []entity.Chunk
}
