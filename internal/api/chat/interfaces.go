package chat

import (
	"context"

	"github.com/futig/rag-backend/internal/entity"
)

type ChatUsecase interface {
	Answer(ctx context.Context, question string) (*entity.ChatTurn, error)
}
