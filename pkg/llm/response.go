package llm

// Usage contains token counts reported by an upstream model, when present.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

// ErrorResponse is the JSON body of a failed request, both the body quire
// serves from its own API and the body hosted functions answer with.
type ErrorResponse struct {
	Error string `json:"error"`
}
