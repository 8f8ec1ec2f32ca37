package vectorstore

import (
	"context"
	"fmt"
	"net/http"

	"github.com/avast/retry-go/v4"
	"github.com/futig/rag-backend/internal/config"
	"github.com/futig/rag-backend/internal/entity"
	"github.com/futig/rag-backend/internal/integration/common"
	pkghttp "github.com/futig/rag-backend/pkg/http"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Connector is a Qdrant REST client scoped to one collection. The
// collection acts as the namespace holding the whole corpus.
type Connector struct {
	config    config.VectorStoreConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.VectorStoreConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewHeaderAuthConnector(cfg.HTTPClientConfig, "api-key", logger),
		config:    cfg,
		logger:    logger,
	}
}

// EnsureCollection creates the collection with cosine distance if it does
// not exist yet. Qdrant answers 200 for an existing collection with the
// same schema.
func (c *Connector) EnsureCollection(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("%w: invalid dimension %d", entity.ErrVectorIndexFailed, dimension)
	}

	ctxzap.Info(ctx, "ensuring vector collection",
		zap.String("collection", c.config.Collection),
		zap.Int("dimension", dimension),
	)

	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}

	endpoint := fmt.Sprintf("/collections/%s", c.config.Collection)
	err := c.connector.DoRequest(ctx, http.MethodPut, endpoint, body, nil)
	if err != nil {
		return fmt.Errorf("%w: create collection: %w", entity.ErrVectorIndexFailed, err)
	}
	return nil
}

// Upsert writes records into the collection, keyed by a point id derived
// deterministically from the record id. Re-upserting the same record id
// overwrites the existing point.
func (c *Connector) Upsert(ctx context.Context, records []entity.IndexRecord) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]map[string]any, len(records))
	for i, rec := range records {
		points[i] = map[string]any{
			"id":     PointID(rec.ID),
			"vector": rec.Vector,
			"payload": map[string]any{
				"record_id":   rec.ID,
				"text":        rec.Metadata.Text,
				"source":      rec.Metadata.Source,
				"chunk_index": rec.Metadata.ChunkIndex,
			},
		}
	}

	ctxzap.Info(ctx, "upserting vector records",
		zap.String("collection", c.config.Collection),
		zap.Int("record_count", len(records)),
	)

	body := map[string]any{"points": points}
	endpoint := fmt.Sprintf("/collections/%s/points?wait=true", c.config.Collection)

	err := retry.Do(func() error {
		return c.connector.DoRequest(ctx, http.MethodPut, endpoint, body, nil)
	}, c.config.Retry.ToRetryOptions()...)
	if err != nil {
		ctxzap.Error(ctx, "vector upsert failed", zap.Error(err))
		return fmt.Errorf("%w: upsert: %w", entity.ErrVectorIndexFailed, err)
	}
	return nil
}

type searchRequest struct {
	Vector      []float64 `json:"vector"`
	Limit       int       `json:"limit"`
	WithPayload bool      `json:"with_payload"`
}

type searchResponse struct {
	Result []struct {
		Score   float64        `json:"score"`
		Payload map[string]any `json:"payload"`
	} `json:"result"`
}

// Query returns the topK nearest records with their stored payload,
// ordered by descending similarity.
func (c *Connector) Query(ctx context.Context, vector []float64, topK int) ([]entity.RetrievalMatch, error) {
	req := searchRequest{
		Vector:      vector,
		Limit:       topK,
		WithPayload: true,
	}

	endpoint := fmt.Sprintf("/collections/%s/points/search", c.config.Collection)

	var resp searchResponse
	err := retry.Do(func() error {
		resp = searchResponse{}
		return c.connector.DoRequest(ctx, http.MethodPost, endpoint, req, &resp)
	}, c.config.Retry.ToRetryOptions()...)
	if err != nil {
		ctxzap.Error(ctx, "vector search failed", zap.Error(err))
		return nil, fmt.Errorf("%w: search: %w", entity.ErrVectorIndexFailed, err)
	}

	matches := make([]entity.RetrievalMatch, 0, len(resp.Result))
	for _, r := range resp.Result {
		match := entity.RetrievalMatch{Score: r.Score}
		if v, ok := r.Payload["text"].(string); ok {
			match.Text = v
		}
		if v, ok := r.Payload["source"].(string); ok {
			match.Source = v
		}
		matches = append(matches, match)
	}

	ctxzap.Debug(ctx, "vector search completed",
		zap.Int("match_count", len(matches)),
	)

	return matches, nil
}

// PointID maps a logical record id to the UUID Qdrant requires as a point
// id. The mapping is a name-based UUID, so the same record id always
// produces the same point.
func PointID(recordID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(recordID)).String()
}
