package validator

import (
	"testing"

	"github.com/futig/rag-backend/internal/entity"
	"github.com/stretchr/testify/assert"
)

func TestValidateChatRequest(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.ValidateChatRequest(&entity.ChatRequest{Prompt: "What do we deploy on?"}))

	assert.ErrorIs(t, v.ValidateChatRequest(nil), entity.ErrEmptyPrompt)
	assert.ErrorIs(t, v.ValidateChatRequest(&entity.ChatRequest{}), entity.ErrEmptyPrompt)
	assert.ErrorIs(t, v.ValidateChatRequest(&entity.ChatRequest{Prompt: "   \n\t"}), entity.ErrEmptyPrompt)
}
