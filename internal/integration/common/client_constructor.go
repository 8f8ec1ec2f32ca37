package common

import (
	"github.com/futig/rag-backend/internal/config"
	pkgHTTP "github.com/futig/rag-backend/pkg/http"
	"go.uber.org/zap"
)

// NewBaseConnector builds an outbound HTTP connector with the shared
// timeout stack and Bearer-token auth.
func NewBaseConnector(cfg config.HTTPClientConfig, logger *zap.Logger) *pkgHTTP.Connector {
	return pkgHTTP.NewConnector(
		connectorConfig(cfg, logger),
		append(baseOptions(cfg), pkgHTTP.WithAuthToken(cfg.Token))...,
	)
}

// NewHeaderAuthConnector builds an outbound HTTP connector that sends its
// credential in a raw header instead of the Authorization scheme
// (Qdrant expects "api-key").
func NewHeaderAuthConnector(cfg config.HTTPClientConfig, header string, logger *zap.Logger) *pkgHTTP.Connector {
	return pkgHTTP.NewConnector(
		connectorConfig(cfg, logger),
		append(baseOptions(cfg), pkgHTTP.WithAuthHeader(header, cfg.Token))...,
	)
}

func connectorConfig(cfg config.HTTPClientConfig, logger *zap.Logger) *pkgHTTP.ConnectorConfig {
	return &pkgHTTP.ConnectorConfig{
		Logger:  logger,
		BaseURL: cfg.Url,
	}
}

func baseOptions(cfg config.HTTPClientConfig) []pkgHTTP.HttpOpts {
	return []pkgHTTP.HttpOpts{
		pkgHTTP.WithRequestTimeout(cfg.RequestTimeout),
		pkgHTTP.WithConnClientTimeout(cfg.ConnTimeout),
		pkgHTTP.WithClientKeepAlive(cfg.KeepAlive),
		pkgHTTP.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkgHTTP.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkgHTTP.WithRequestLogging(),
	}
}
