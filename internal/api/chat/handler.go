package chat

import (
	"encoding/json"
	"net/http"

	"github.com/futig/rag-backend/internal/entity"
	"github.com/futig/rag-backend/internal/pkg/logger"
	"github.com/futig/rag-backend/internal/pkg/response"
	"github.com/futig/rag-backend/internal/pkg/validator"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	msgPromptRequired      = "Prompt is required"
	msgInternalServerError = "Internal Server Error"
)

type Handler struct {
	usecase   ChatUsecase
	validator *validator.Validator
}

func NewHandler(
	usecase ChatUsecase,
	validator *validator.Validator,
) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
	}
}

// Chat handles POST /api/chat - Answer one question
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Chat")

	var req entity.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, msgPromptRequired)
		return
	}

	if err := h.validator.ValidateChatRequest(&req); err != nil {
		ctxzap.Error(ctx, "failed to validate request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, msgPromptRequired)
		return
	}

	ctxzap.Info(ctx, "answering chat request", zap.Int("prompt_length", len(req.Prompt)))

	turn, err := h.usecase.Answer(ctx, req.Prompt)
	if err != nil {
		ctxzap.Error(ctx, "failed to answer chat request", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	ctxzap.Info(ctx, "chat request answered", zap.Int("answer_length", len(turn.Answer)))

	response.Success(w, toChatResponse(turn))
}
