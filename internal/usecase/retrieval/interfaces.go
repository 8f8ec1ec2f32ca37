package retrieval

import (
	"context"

	"github.com/futig/rag-backend/internal/entity"
)

type EmbeddingConnector interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

type VectorStoreConnector interface {
	Query(ctx context.Context, vector []float64, topK int) ([]entity.RetrievalMatch, error)
}
