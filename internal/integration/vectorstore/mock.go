package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/futig/rag-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector is an in-memory cosine-similarity index for local runs
// and tests.
type MockConnector struct {
	logger *zap.Logger

	mu      sync.RWMutex
	records map[string]entity.IndexRecord
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger:  logger,
		records: make(map[string]entity.IndexRecord),
	}
}

func (m *MockConnector) EnsureCollection(ctx context.Context, dimension int) error {
	ctxzap.Info(ctx, "[MOCK] ensuring vector collection", zap.Int("dimension", dimension))
	return nil
}

func (m *MockConnector) Upsert(ctx context.Context, records []entity.IndexRecord) error {
	ctxzap.Info(ctx, "[MOCK] upserting vector records", zap.Int("record_count", len(records)))

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range records {
		m.records[rec.ID] = rec
	}
	return nil
}

func (m *MockConnector) Query(ctx context.Context, vector []float64, topK int) ([]entity.RetrievalMatch, error) {
	ctxzap.Info(ctx, "[MOCK] searching vector records", zap.Int("top_k", topK))

	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := make([]entity.RetrievalMatch, 0, len(m.records))
	for _, rec := range m.records {
		matches = append(matches, entity.RetrievalMatch{
			Text:   rec.Metadata.Text,
			Source: rec.Metadata.Source,
			Score:  cosine(vector, rec.Vector),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Len reports the number of stored records.
func (m *MockConnector) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

func cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
