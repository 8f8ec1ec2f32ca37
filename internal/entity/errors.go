package entity

import "errors"

// Domain errors
var (
	// Chat validation errors
	ErrEmptyPrompt = errors.New("prompt is required")

	// Collaborator errors
	ErrEmbeddingFailed   = errors.New("embedding service call failed")
	ErrVectorIndexFailed = errors.New("vector index call failed")
	ErrModelFailed       = errors.New("language model call failed")
)
