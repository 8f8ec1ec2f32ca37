package chat

import (
	"context"

	"github.com/futig/rag-backend/internal/entity"
)

type LLMConnector interface {
	DecideStep(ctx context.Context, req *entity.AgentStepRequest) (*entity.AgentDecision, error)
	Synthesize(ctx context.Context, system, prompt string) (string, error)
}

type Retriever interface {
	Retrieve(ctx context.Context, query string) (string, error)
}
