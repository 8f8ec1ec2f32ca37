package api

import (
	"net/http"
	"time"

	chatapi "github.com/futig/rag-backend/internal/api/chat"
	"github.com/futig/rag-backend/internal/api/middleware"
	"github.com/futig/rag-backend/internal/entity"
	"github.com/futig/rag-backend/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(chatHandler *chatapi.Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)   // Recover from panics
	r.Use(chimiddleware.RequestID)   // Add request ID
	r.Use(middleware.Logger(logger)) // Log requests
	r.Use(middleware.CORS)           // Handle CORS
	// The agent loop can make several model calls for one request, so the
	// request timeout is generous compared to a plain CRUD service.
	r.Use(chimiddleware.Timeout(5 * time.Minute))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, entity.HealthResponse{
			Status:  "ok",
			Message: "rag-backend is running",
		})
	})

	// Register routes
	chatapi.RegisterRoutes(r, chatHandler)

	return r
}
