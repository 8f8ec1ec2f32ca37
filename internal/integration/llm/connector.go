package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/futig/rag-backend/internal/config"
	"github.com/futig/rag-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Connector drives the Anthropic Messages API. It exposes two
// operations: a tool-enabled reasoning step for the agent loop, and a
// plain completion used for fallback synthesis. Provider responses are
// normalized into entity.AgentDecision right at this boundary.
type Connector struct {
	config config.LLMConnectorConfig
	client anthropic.Client
	logger *zap.Logger
}

func NewConnector(
	cfg config.LLMConnectorConfig,
	logger *zap.Logger,
) *Connector {
	client := anthropic.NewClient(
		option.WithAPIKey(cfg.APIKey),
	)

	return &Connector{
		config: cfg,
		client: client,
		logger: logger,
	}
}

// searchTool describes the retrieval tool offered to the model.
func searchTool() anthropic.ToolUnionParam {
	tool := anthropic.ToolParam{
		Name:        entity.ToolNameSearchKnowledgeBase,
		Description: anthropic.String("Search the internal documentation for context relevant to a question. Returns the most similar passages with their source files."),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The search query. Usually a rephrasing of the user question.",
				},
			},
		},
	}
	return anthropic.ToolUnionParam{OfTool: &tool}
}

// DecideStep asks the model for its next move given the transcript so
// far: either a final text answer or a retrieval tool call.
func (c *Connector) DecideStep(ctx context.Context, req *entity.AgentStepRequest) (*entity.AgentDecision, error) {
	ctxzap.Debug(ctx, "requesting agent step decision",
		zap.Int("step_count", len(req.Steps)),
		zap.String("model", c.config.Model),
	)

	timeoutCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: int64(c.config.MaxTokens),
		Messages:  buildMessages(req),
		Tools:     []anthropic.ToolUnionParam{searchTool()},
	}
	if c.config.Temperature > 0 {
		params.Temperature = anthropic.Float(c.config.Temperature)
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: req.System},
		}
	}

	msg, err := c.client.Messages.New(timeoutCtx, params)
	if err != nil {
		ctxzap.Error(ctx, "agent step call failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", entity.ErrModelFailed, err)
	}

	decision := c.normalizeDecision(ctx, msg)

	ctxzap.Debug(ctx, "agent step decision received",
		zap.Bool("is_final", decision.IsFinal()),
		zap.Int("text_length", len(decision.Text)),
	)

	return decision, nil
}

// Synthesize issues one tool-free completion. Used by the fallback path
// when the agent loop ends without a direct answer.
func (c *Connector) Synthesize(ctx context.Context, system, prompt string) (string, error) {
	ctxzap.Debug(ctx, "requesting fallback synthesis",
		zap.Int("prompt_length", len(prompt)),
	)

	timeoutCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: int64(c.config.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if c.config.Temperature > 0 {
		params.Temperature = anthropic.Float(c.config.Temperature)
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: system},
		}
	}

	msg, err := c.client.Messages.New(timeoutCtx, params)
	if err != nil {
		ctxzap.Error(ctx, "synthesis call failed", zap.Error(err))
		return "", fmt.Errorf("%w: %w", entity.ErrModelFailed, err)
	}

	var texts []string
	for _, block := range msg.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			texts = append(texts, variant.Text)
		}
	}
	return strings.TrimSpace(strings.Join(texts, "\n")), nil
}

// buildMessages replays the transcript as provider messages: the user
// question, then per round the assistant text/tool-use blocks and the
// matching tool results.
func buildMessages(req *entity.AgentStepRequest) []anthropic.MessageParam {
	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(req.Question)),
	}

	var assistantBlocks []anthropic.ContentBlockParamUnion
	flush := func() {
		if len(assistantBlocks) > 0 {
			messages = append(messages, anthropic.NewAssistantMessage(assistantBlocks...))
			assistantBlocks = nil
		}
	}

	for _, step := range req.Steps {
		switch step.Kind {
		case entity.StepKindModelText:
			if step.Text != "" {
				assistantBlocks = append(assistantBlocks, anthropic.NewTextBlock(step.Text))
			}
		case entity.StepKindToolCall:
			assistantBlocks = append(assistantBlocks, anthropic.NewToolUseBlock(
				step.CallID,
				map[string]any{"query": step.Query},
				step.ToolName,
			))
		case entity.StepKindToolResult:
			flush()
			messages = append(messages, anthropic.NewUserMessage(
				anthropic.NewToolResultBlock(step.CallID, step.Text, false),
			))
		}
	}
	flush()

	return messages
}

// normalizeDecision converts provider content blocks into the canonical
// decision shape. Only the first tool-use block is honored: the loop is
// strictly sequential and executes one tool per round.
func (c *Connector) normalizeDecision(ctx context.Context, msg *anthropic.Message) *entity.AgentDecision {
	decision := &entity.AgentDecision{}

	var texts []string
	for _, block := range msg.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			texts = append(texts, variant.Text)
		case anthropic.ToolUseBlock:
			if decision.ToolCall != nil {
				ctxzap.Warn(ctx, "ignoring extra tool-use block", zap.String("tool", variant.Name))
				continue
			}

			var input struct {
				Query string `json:"query"`
			}
			if err := json.Unmarshal([]byte(variant.JSON.Input.Raw()), &input); err != nil {
				ctxzap.Warn(ctx, "tool input did not parse, falling back to empty query", zap.Error(err))
			}

			decision.ToolCall = &entity.ToolCall{
				ID:    variant.ID,
				Name:  variant.Name,
				Query: input.Query,
			}
		}
	}

	decision.Text = strings.TrimSpace(strings.Join(texts, "\n"))
	return decision
}
