package models

import (
	"time"

	"github.com/google/uuid"
)

// CompletionRequest is a single logical request against an inference
// provider. ID, TraceID, and CreatedAt are volatile bookkeeping fields;
// they never participate in cache fingerprinting.
type CompletionRequest struct {
	ID        string                 `json:"id"`
	TraceID   string                 `json:"trace_id,omitempty"`
	Model     string                 `json:"model"`
	Prompt    string                 `json:"prompt"`
	Params    map[string]interface{} `json:"params,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// NewCompletionRequest stamps a request with an ID and creation time.
func NewCompletionRequest(model, prompt string, params map[string]interface{}) *CompletionRequest {
	return &CompletionRequest{
		ID:        uuid.NewString(),
		Model:     model,
		Prompt:    prompt,
		Params:    params,
		CreatedAt: time.Now().UTC(),
	}
}

// Completion is a provider response. Token counts feed cost accounting.
type Completion struct {
	Text         string `json:"text"`
	Model        string `json:"model,omitempty"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	FinishReason string `json:"finish_reason,omitempty"`
}

// TotalTokens returns the combined token usage of a completion.
func (c *Completion) TotalTokens() int {
	return c.InputTokens + c.OutputTokens
}
