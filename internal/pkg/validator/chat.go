package validator

import (
	"strings"

	"github.com/futig/rag-backend/internal/entity"
)

// Validator validates inbound chat API requests.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateChatRequest checks that the prompt is present and not blank.
func (v *Validator) ValidateChatRequest(req *entity.ChatRequest) error {
	if req == nil || strings.TrimSpace(req.Prompt) == "" {
		return entity.ErrEmptyPrompt
	}
	return nil
}
