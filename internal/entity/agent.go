package entity

// ToolNameSearchKnowledgeBase is the single tool exposed to the model.
const ToolNameSearchKnowledgeBase = "search_knowledge_base"

// StepKind enumerates the kinds of entries recorded in a transcript.
type StepKind string

const (
	StepKindModelText  StepKind = "model_text"
	StepKindToolCall   StepKind = "tool_call"
	StepKindToolResult StepKind = "tool_result"
)

// AgentStep is one immutable entry of the orchestration transcript:
// either a model decision or the result of executing a tool.
type AgentStep struct {
	Kind     StepKind
	Round    int
	Text     string
	ToolName string
	Query    string
	CallID   string
}

// Transcript is the ordered step history of a single request. It lives
// only for the duration of that request.
type Transcript struct {
	ID    string
	Steps []AgentStep
}

// Append records a step at the end of the transcript.
func (t *Transcript) Append(step AgentStep) {
	t.Steps = append(t.Steps, step)
}

// ToolResults returns the payloads of all tool-result steps in order.
func (t *Transcript) ToolResults() []string {
	var results []string
	for _, s := range t.Steps {
		if s.Kind == StepKindToolResult && s.Text != "" {
			results = append(results, s.Text)
		}
	}
	return results
}

// AgentStepRequest carries everything the language model needs to decide
// the next step: the fixed system instructions, the user question, and
// the transcript so far.
type AgentStepRequest struct {
	System   string
	Question string
	Steps    []AgentStep
}

// ToolCall is a model request to execute a tool. ID ties the eventual
// result back to the originating request for providers that require it.
type ToolCall struct {
	ID    string
	Name  string
	Query string
}

// AgentDecision is the canonical shape of one model turn at the
// orchestration boundary. Provider-specific responses are normalized
// into it immediately upon receipt: either Text is a final answer, or
// ToolCall is set and the orchestrator must execute it.
type AgentDecision struct {
	Text     string
	ToolCall *ToolCall
}

// IsFinal reports whether the decision carries a direct text answer
// and no pending tool request.
func (d *AgentDecision) IsFinal() bool {
	return d.ToolCall == nil
}
