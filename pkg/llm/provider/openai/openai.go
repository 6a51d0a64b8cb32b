// Package openai parses OpenAI-compatible Chat Completions stream chunks
// ("data:" payloads of the form {"choices":[{"delta":{"content":"..."}}]}).
package openai

import (
	"encoding/json"
	"time"

	"github.com/papercomputeco/quire/pkg/llm"
)

// provider parses OpenAI's streaming chunk format.
type provider struct{}

func New() *provider { return &provider{} }

func (o *provider) Name() string {
	return "openai"
}

// ParseStreamChunk decodes one streamed JSON payload.
//
// Any syntactically valid JSON value is accepted. An error is returned only
// when the payload is not valid JSON, which stream decoders treat as an
// incomplete line. Chunks without a non-empty choices[0].delta.content text
// return (nil, nil).
func (o *provider) ParseStreamChunk(payload []byte) (*llm.StreamChunk, error) {
	var parsed any
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, err
	}

	obj, ok := parsed.(map[string]any)
	if !ok {
		return nil, nil
	}

	choices, ok := obj["choices"].([]any)
	if !ok || len(choices) == 0 {
		return nil, nil
	}

	choice, ok := choices[0].(map[string]any)
	if !ok {
		return nil, nil
	}

	delta, ok := choice["delta"].(map[string]any)
	if !ok {
		return nil, nil
	}

	content, ok := delta["content"].(string)
	if !ok || content == "" {
		return nil, nil
	}

	chunk := &llm.StreamChunk{
		Message: llm.NewTextMessage("assistant", content),
	}

	if model, ok := obj["model"].(string); ok {
		chunk.Model = model
	}
	if created, ok := obj["created"].(float64); ok && created > 0 {
		chunk.CreatedAt = time.Unix(int64(created), 0)
	}
	if idx, ok := choice["index"].(float64); ok {
		chunk.Index = int(idx)
	}
	if reason, ok := choice["finish_reason"].(string); ok && reason != "" {
		chunk.StopReason = reason
		chunk.Done = true
	}
	if usage, ok := obj["usage"].(map[string]any); ok {
		chunk.Usage = parseUsage(usage)
	}

	return chunk, nil
}

func parseUsage(usage map[string]any) *llm.Usage {
	u := &llm.Usage{}
	if v, ok := usage["prompt_tokens"].(float64); ok {
		u.PromptTokens = int(v)
	}
	if v, ok := usage["completion_tokens"].(float64); ok {
		u.CompletionTokens = int(v)
	}
	if v, ok := usage["total_tokens"].(float64); ok {
		u.TotalTokens = int(v)
	}
	return u
}
