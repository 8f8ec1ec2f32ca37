package llm

import (
	"context"
	"fmt"

	"github.com/futig/rag-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector imitates the model for local runs: it always requests
// one retrieval round, then answers from the retrieved context.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) DecideStep(ctx context.Context, req *entity.AgentStepRequest) (*entity.AgentDecision, error) {
	ctxzap.Info(ctx, "[MOCK] deciding agent step", zap.Int("step_count", len(req.Steps)))

	var lastResult string
	for _, step := range req.Steps {
		if step.Kind == entity.StepKindToolResult {
			lastResult = step.Text
		}
	}

	if lastResult == "" {
		return &entity.AgentDecision{
			ToolCall: &entity.ToolCall{
				ID:    fmt.Sprintf("mock-call-%d", len(req.Steps)+1),
				Name:  entity.ToolNameSearchKnowledgeBase,
				Query: req.Question,
			},
		}, nil
	}

	return &entity.AgentDecision{
		Text: fmt.Sprintf("Mock answer to %q based on retrieved context:\n\n%s", req.Question, lastResult),
	}, nil
}

func (m *MockConnector) Synthesize(ctx context.Context, system, prompt string) (string, error) {
	ctxzap.Info(ctx, "[MOCK] synthesizing fallback answer", zap.Int("prompt_length", len(prompt)))
	return "Mock synthesized answer grounded in the provided context.", nil
}
