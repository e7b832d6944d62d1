package models

// GenerationRequest is the input to the content pipeline. TopK and MaxTokens
// fall back to pipeline defaults when zero. Temperature is a pointer so an
// explicit 0 is distinguishable from unset; nil falls back to the default.
type GenerationRequest struct {
	Query           string   `json:"query" binding:"required"`
	ClientID        string   `json:"client_id" binding:"required"`
	DeliverableType string   `json:"deliverable_type" binding:"required"`
	TopK            int      `json:"top_k,omitempty"`
	MaxTokens       int      `json:"max_tokens,omitempty"`
	Temperature     *float32 `json:"temperature,omitempty"`
}

// GenerationResult echoes the client id for audit. Sources lists the doc ids
// of the passages the prompt was grounded on, in retrieval order; it is
// derived from retrieval, never parsed out of model output.
type GenerationResult struct {
	Content         string   `json:"content"`
	Sources         []string `json:"sources"`
	ClientID        string   `json:"client_id"`
	DeliverableType string   `json:"deliverable_type"`
	TokensUsed      int      `json:"tokens_used,omitempty"`
}
