package chat

import "github.com/futig/rag-backend/internal/entity"

func toChatResponse(turn *entity.ChatTurn) entity.ChatResponse {
	return entity.ChatResponse{
		Question: turn.Question,
		Answer:   turn.Answer,
	}
}
