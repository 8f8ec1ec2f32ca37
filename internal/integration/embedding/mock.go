package embedding

import (
	"context"
	"hash/fnv"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const mockDimension = 8

// MockConnector produces deterministic fake vectors for local runs and tests.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Embed(ctx context.Context, text string) ([]float64, error) {
	ctxzap.Info(ctx, "[MOCK] embedding text", zap.Int("text_length", len(text)))
	return mockVector(text), nil
}

func (m *MockConnector) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	ctxzap.Info(ctx, "[MOCK] embedding batch", zap.Int("text_count", len(texts)))

	vectors := make([][]float64, len(texts))
	for i, t := range texts {
		vectors[i] = mockVector(t)
	}
	return vectors, nil
}

// mockVector hashes the text into a small fixed-dimension vector, so the
// same text always maps to the same embedding.
func mockVector(text string) []float64 {
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	v := make([]float64, mockDimension)
	for i := range v {
		seed = seed*6364136223846793005 + 1442695040888963407
		v[i] = float64(int64(seed>>32)) / float64(1<<31)
	}
	return v
}
