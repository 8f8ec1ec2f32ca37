package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/futig/rag-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptedLLM replays a fixed sequence of decisions and records every
// request it receives.
type scriptedLLM struct {
	decisions []*entity.AgentDecision
	stepErr   error

	stepCalls    int
	stepRequests []*entity.AgentStepRequest

	synthAnswer string
	synthErr    error
	synthCalls  int
}

func (s *scriptedLLM) DecideStep(ctx context.Context, req *entity.AgentStepRequest) (*entity.AgentDecision, error) {
	s.stepCalls++
	s.stepRequests = append(s.stepRequests, req)
	if s.stepErr != nil {
		return nil, s.stepErr
	}
	if s.stepCalls <= len(s.decisions) {
		return s.decisions[s.stepCalls-1], nil
	}
	// Keep asking for the tool past the scripted decisions.
	return &entity.AgentDecision{
		ToolCall: &entity.ToolCall{ID: "call-extra", Name: entity.ToolNameSearchKnowledgeBase, Query: "again"},
	}, nil
}

func (s *scriptedLLM) Synthesize(ctx context.Context, system, prompt string) (string, error) {
	s.synthCalls++
	if s.synthErr != nil {
		return "", s.synthErr
	}
	return s.synthAnswer, nil
}

type recordingRetriever struct {
	queries []string
	result  string
	err     error
}

func (r *recordingRetriever) Retrieve(ctx context.Context, query string) (string, error) {
	r.queries = append(r.queries, query)
	if r.err != nil {
		return "", r.err
	}
	return r.result, nil
}

func newTestUsecase(llm *scriptedLLM, retriever *recordingRetriever) *Usecase {
	return NewUsecase(llm, retriever, "test system prompt", 5, zap.NewNop())
}

func TestAnswerDirectText(t *testing.T) {
	llm := &scriptedLLM{decisions: []*entity.AgentDecision{
		{Text: "The framework is documented in frontend.md."},
	}}
	retriever := &recordingRetriever{}
	uc := newTestUsecase(llm, retriever)

	turn, err := uc.Answer(context.Background(), "What frontend framework do we use?")
	require.NoError(t, err)

	assert.Equal(t, "The framework is documented in frontend.md.", turn.Answer)
	assert.Equal(t, "What frontend framework do we use?", turn.Question)
	assert.Equal(t, 1, llm.stepCalls)
	assert.Empty(t, retriever.queries)
	assert.Zero(t, llm.synthCalls)
}

func TestAnswerToolRoundTrip(t *testing.T) {
	llm := &scriptedLLM{decisions: []*entity.AgentDecision{
		{ToolCall: &entity.ToolCall{ID: "call-1", Name: entity.ToolNameSearchKnowledgeBase, Query: "frontend framework"}},
		{Text: "We use Next.js, per frontend.md."},
	}}
	retriever := &recordingRetriever{result: "[source: frontend.md]\nWe use the Next.js App Router."}
	uc := newTestUsecase(llm, retriever)

	turn, err := uc.Answer(context.Background(), "What frontend framework do we use?")
	require.NoError(t, err)

	assert.Equal(t, "We use Next.js, per frontend.md.", turn.Answer)
	assert.Equal(t, []string{"frontend framework"}, retriever.queries)

	// The second model call must see the tool call and its result.
	require.Len(t, llm.stepRequests, 2)
	steps := llm.stepRequests[1].Steps
	require.Len(t, steps, 2)
	assert.Equal(t, entity.StepKindToolCall, steps[0].Kind)
	assert.Equal(t, "call-1", steps[0].CallID)
	assert.Equal(t, entity.StepKindToolResult, steps[1].Kind)
	assert.Equal(t, retriever.result, steps[1].Text)
}

func TestAnswerEmptyToolQueryFallsBackToQuestion(t *testing.T) {
	llm := &scriptedLLM{decisions: []*entity.AgentDecision{
		{ToolCall: &entity.ToolCall{ID: "call-1", Name: entity.ToolNameSearchKnowledgeBase, Query: "  "}},
		{Text: "answered"},
	}}
	retriever := &recordingRetriever{result: "ctx"}
	uc := newTestUsecase(llm, retriever)

	_, err := uc.Answer(context.Background(), "original question")
	require.NoError(t, err)

	assert.Equal(t, []string{"original question"}, retriever.queries)
}

func TestAnswerStepBoundTriggersSingleFallback(t *testing.T) {
	// The model never emits a final answer; the loop must stop at the
	// bound and make exactly one synthesis call.
	llm := &scriptedLLM{synthAnswer: "Synthesized from retrieved context (frontend.md)."}
	retriever := &recordingRetriever{result: "[source: frontend.md]\ncontext"}
	uc := newTestUsecase(llm, retriever)

	turn, err := uc.Answer(context.Background(), "question")
	require.NoError(t, err)

	assert.Equal(t, 5, llm.stepCalls)
	assert.Len(t, retriever.queries, 5)
	assert.Equal(t, 1, llm.synthCalls)
	assert.Equal(t, "Synthesized from retrieved context (frontend.md).", turn.Answer)
}

func TestAnswerApologyWhenFallbackEmpty(t *testing.T) {
	llm := &scriptedLLM{synthAnswer: ""}
	uc := newTestUsecase(llm, &recordingRetriever{result: "ctx"})

	turn, err := uc.Answer(context.Background(), "question")
	require.NoError(t, err)

	assert.Equal(t, 1, llm.synthCalls)
	assert.Equal(t, ApologyAnswer, turn.Answer)
}

func TestAnswerApologyWhenFallbackReturnsPlaceholder(t *testing.T) {
	llm := &scriptedLLM{synthAnswer: "null"}
	uc := newTestUsecase(llm, &recordingRetriever{result: "ctx"})

	turn, err := uc.Answer(context.Background(), "question")
	require.NoError(t, err)
	assert.Equal(t, ApologyAnswer, turn.Answer)
}

func TestAnswerApologyWhenFallbackFails(t *testing.T) {
	llm := &scriptedLLM{synthErr: errors.New("model unavailable")}
	uc := newTestUsecase(llm, &recordingRetriever{result: "ctx"})

	turn, err := uc.Answer(context.Background(), "question")
	require.NoError(t, err, "fallback failure must be absorbed")
	assert.Equal(t, ApologyAnswer, turn.Answer)
}

func TestAnswerPropagatesModelError(t *testing.T) {
	llm := &scriptedLLM{stepErr: errors.New("api down")}
	uc := newTestUsecase(llm, &recordingRetriever{})

	_, err := uc.Answer(context.Background(), "question")
	assert.Error(t, err)
}

func TestAnswerPropagatesRetrieverError(t *testing.T) {
	llm := &scriptedLLM{decisions: []*entity.AgentDecision{
		{ToolCall: &entity.ToolCall{ID: "call-1", Name: entity.ToolNameSearchKnowledgeBase, Query: "q"}},
	}}
	retriever := &recordingRetriever{err: errors.New("index unreachable")}
	uc := newTestUsecase(llm, retriever)

	_, err := uc.Answer(context.Background(), "question")
	assert.Error(t, err)
	assert.Zero(t, llm.synthCalls, "upstream failures are not masked by the fallback")
}

func TestAnswerSentinelResultStaysInTranscript(t *testing.T) {
	// An empty knowledge base is a signal to the model, not an error.
	llm := &scriptedLLM{decisions: []*entity.AgentDecision{
		{ToolCall: &entity.ToolCall{ID: "call-1", Name: entity.ToolNameSearchKnowledgeBase, Query: "q"}},
		{Text: "No internal documentation covers this, but generally..."},
	}}
	retriever := &recordingRetriever{result: "No relevant information found in the knowledge base."}
	uc := newTestUsecase(llm, retriever)

	turn, err := uc.Answer(context.Background(), "question")
	require.NoError(t, err)
	assert.Contains(t, turn.Answer, "No internal documentation")

	steps := llm.stepRequests[1].Steps
	require.Len(t, steps, 2)
	assert.Equal(t, retriever.result, steps[1].Text)
}
