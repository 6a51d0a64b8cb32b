// Package sse decodes the streamed body of a hosted research function into
// text fragments as the bytes arrive.
//
// The body is a "data:"-prefixed line protocol in the shape of Server-Sent
// Events. Each data line carries one JSON chunk in the OpenAI-compatible
// format and the stream may end with a "data: [DONE]" sentinel. Network
// chunk boundaries fall anywhere: inside a line, inside a JSON value, or
// inside a multi-byte UTF-8 sequence.
//
//	┌──────────────────┐
//	│  network chunks  │
//	└──────────────────┘
//	         │ Decoder.Feed
//	         ▼
//	┌──────────────────┐   ┌─────────────────┐
//	│  UTF-8 decode +  │──▶│ pending buffer  │
//	│  line extraction │◀──│ (partial lines) │
//	└──────────────────┘   └─────────────────┘
//	         │
//	         ▼
//	┌──────────────────┐
//	│    []Fragment    │
//	└──────────────────┘
//
// This package intentionally does NOT implement the full SSE event model
// (event types, ids, retry) or any writer capabilities.
package sse

import "github.com/papercomputeco/quire/pkg/llm"

// Fragment is one non-empty text delta extracted from a data line.
type Fragment string

// ChunkParser decodes the JSON payload of one data line.
//
// An error means the payload is not (yet) valid JSON. A nil chunk with a nil
// error means the payload is valid but carries no text.
type ChunkParser interface {
	ParseStreamChunk(payload []byte) (*llm.StreamChunk, error)
}
