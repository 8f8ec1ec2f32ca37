package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/futig/rag-backend/internal/entity"
	"github.com/futig/rag-backend/internal/pkg/logger"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	// ApologyAnswer is the safety net: a validated request always gets a
	// non-empty answer, even when the model misbehaves twice.
	ApologyAnswer = "I'm sorry, I wasn't able to produce an answer to your question this time. Please try rephrasing it."

	synthesisSystem = `Answer the user's question concisely, using only the provided context. ` +
		`Cite the source file of every fact you use (the [source: ...] labels). ` +
		`If the context does not contain the answer, state explicitly that the internal documentation has no relevant information.`
)

// Usecase drives the bounded agent loop for one stateless request.
// Per round the model either answers directly or requests the retrieval
// tool; the tool runs synchronously and its result is appended to the
// transcript before the next round. If the step bound is reached without
// a direct answer, a single fallback synthesis call is made over the
// accumulated tool results.
type Usecase struct {
	llm          LLMConnector
	retriever    Retriever
	systemPrompt string
	maxSteps     int
	logger       *zap.Logger
}

func NewUsecase(
	llm LLMConnector,
	retriever Retriever,
	systemPrompt string,
	maxSteps int,
	logger *zap.Logger,
) *Usecase {
	return &Usecase{
		llm:          llm,
		retriever:    retriever,
		systemPrompt: systemPrompt,
		maxSteps:     maxSteps,
		logger:       logger,
	}
}

// Answer runs the agent loop for one question. The transcript lives only
// for the duration of this call.
func (uc *Usecase) Answer(ctx context.Context, question string) (*entity.ChatTurn, error) {
	transcript := &entity.Transcript{ID: uuid.New().String()}
	ctx = logger.WithTranscript(ctx, transcript.ID)

	ctxzap.Info(ctx, "starting agent loop",
		zap.Int("max_steps", uc.maxSteps),
	)

	var finalAnswer string
	for round := 1; round <= uc.maxSteps; round++ {
		decision, err := uc.llm.DecideStep(ctx, &entity.AgentStepRequest{
			System:   uc.systemPrompt,
			Question: question,
			Steps:    transcript.Steps,
		})
		if err != nil {
			return nil, fmt.Errorf("agent step %d: %w", round, err)
		}

		if decision.Text != "" {
			transcript.Append(entity.AgentStep{
				Kind:  entity.StepKindModelText,
				Round: round,
				Text:  decision.Text,
			})
		}

		if decision.IsFinal() {
			finalAnswer = decision.Text
			ctxzap.Info(ctx, "agent answered directly",
				zap.Int("rounds", round),
			)
			break
		}

		call := decision.ToolCall
		query := strings.TrimSpace(call.Query)
		if query == "" {
			// The model asked for the tool without a query; search for
			// the original question instead of failing the round.
			query = question
		}

		transcript.Append(entity.AgentStep{
			Kind:     entity.StepKindToolCall,
			Round:    round,
			ToolName: call.Name,
			Query:    query,
			CallID:   call.ID,
		})

		ctxzap.Info(ctx, "executing retrieval tool",
			zap.Int("round", round),
			zap.String("query", query),
		)

		result, err := uc.retriever.Retrieve(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("retrieval tool: %w", err)
		}

		transcript.Append(entity.AgentStep{
			Kind:   entity.StepKindToolResult,
			Round:  round,
			Text:   result,
			CallID: call.ID,
		})
	}

	if isNonAnswer(finalAnswer) {
		finalAnswer = uc.fallbackSynthesis(ctx, question, transcript)
	}

	if isNonAnswer(finalAnswer) {
		ctxzap.Warn(ctx, "fallback produced no usable answer, returning apology")
		finalAnswer = ApologyAnswer
	}

	return &entity.ChatTurn{Question: question, Answer: finalAnswer}, nil
}

// fallbackSynthesis issues exactly one tool-free model call over the
// concatenated tool results. A failure here is absorbed: the caller
// still gets the apology answer rather than an error.
func (uc *Usecase) fallbackSynthesis(ctx context.Context, question string, transcript *entity.Transcript) string {
	results := transcript.ToolResults()
	grounding := strings.Join(results, "\n\n")

	ctxzap.Info(ctx, "running fallback synthesis",
		zap.Int("tool_result_count", len(results)),
		zap.Int("context_length", len(grounding)),
	)

	prompt := fmt.Sprintf("Question: %s\n\nContext:\n%s", question, grounding)

	answer, err := uc.llm.Synthesize(ctx, synthesisSystem, prompt)
	if err != nil {
		ctxzap.Warn(ctx, "fallback synthesis failed", zap.Error(err))
		return ""
	}
	return answer
}

// isNonAnswer treats empty strings and literal non-value placeholders as
// no answer.
func isNonAnswer(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "", "null", "none", "undefined", "n/a":
		return true
	}
	return false
}
