package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	// NoRelevantInformation is returned when the index has no matches.
	// It is a signal to the model, not an error.
	NoRelevantInformation = "No relevant information found in the knowledge base."

	// UnknownSource labels a match whose payload carries no source.
	UnknownSource = "unknown document"

	// blockSeparator visually segments context from different sources.
	blockSeparator = "\n\n---\n\n"

	embeddingCacheTTL     = 10 * time.Minute
	embeddingCacheCleanup = 30 * time.Minute
)

// Usecase answers "what context is relevant to this query": it embeds
// the query, searches the vector index, and formats the matches into a
// source-attributed context string.
type Usecase struct {
	embedder EmbeddingConnector
	store    VectorStoreConnector
	topK     int
	cache    *gocache.Cache
	logger   *zap.Logger
}

func NewUsecase(
	embedder EmbeddingConnector,
	store VectorStoreConnector,
	topK int,
	logger *zap.Logger,
) *Usecase {
	return &Usecase{
		embedder: embedder,
		store:    store,
		topK:     topK,
		cache:    gocache.New(embeddingCacheTTL, embeddingCacheCleanup),
		logger:   logger,
	}
}

// Retrieve returns formatted, source-attributed context for the query,
// or the NoRelevantInformation sentinel when the index has no matches.
func (uc *Usecase) Retrieve(ctx context.Context, query string) (string, error) {
	vector, err := uc.embedQuery(ctx, query)
	if err != nil {
		return "", fmt.Errorf("embed query: %w", err)
	}

	matches, err := uc.store.Query(ctx, vector, uc.topK)
	if err != nil {
		return "", fmt.Errorf("query vector index: %w", err)
	}

	if len(matches) == 0 {
		ctxzap.Info(ctx, "no matches in knowledge base")
		return NoRelevantInformation, nil
	}

	blocks := make([]string, len(matches))
	for i, m := range matches {
		source := m.Source
		if source == "" {
			source = UnknownSource
		}
		blocks[i] = fmt.Sprintf("[source: %s]\n%s", source, m.Text)
	}

	ctxzap.Info(ctx, "context retrieved",
		zap.Int("match_count", len(matches)),
		zap.Float64("top_score", matches[0].Score),
	)

	return strings.Join(blocks, blockSeparator), nil
}

// embedQuery embeds the query text, serving repeats from a TTL cache so
// the same question asked twice skips an embedding round trip.
func (uc *Usecase) embedQuery(ctx context.Context, query string) ([]float64, error) {
	if cached, ok := uc.cache.Get(query); ok {
		ctxzap.Debug(ctx, "query embedding served from cache")
		return cached.([]float64), nil
	}

	vector, err := uc.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	uc.cache.Set(query, vector, gocache.DefaultExpiration)
	return vector, nil
}
