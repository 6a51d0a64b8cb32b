package research_test

import (
	"context"
	"encoding/json"
	"io"
	"strings"
)

// delta encodes one OpenAI-style SSE data line.
func delta(text string) string {
	payload, _ := json.Marshal(map[string]any{
		"choices": []any{
			map[string]any{"delta": map[string]any{"content": text}},
		},
	})
	return "data: " + string(payload) + "\n\n"
}

// stream builds an SSE body from text deltas, terminated by [DONE].
func stream(texts ...string) string {
	var sb strings.Builder
	sb.WriteString(": keep-alive\n\n")
	for _, t := range texts {
		sb.WriteString(delta(t))
	}
	sb.WriteString("data: [DONE]\n\n")
	return sb.String()
}

// fakeStreamer serves a fixed body, or err.
type fakeStreamer struct {
	body   string
	err    error
	topics []string
	block  chan struct{}
}

func (f *fakeStreamer) Stream(_ context.Context, topic string) (io.ReadCloser, error) {
	f.topics = append(f.topics, topic)
	if f.err != nil {
		return nil, f.err
	}
	var r io.Reader = strings.NewReader(f.body)
	if f.block != nil {
		r = &blockingReader{r: r, release: f.block}
	}
	return io.NopCloser(r), nil
}

// blockingReader waits for release before returning EOF.
type blockingReader struct {
	r       io.Reader
	release chan struct{}
}

func (b *blockingReader) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if err == io.EOF {
		<-b.release
	}
	return n, err
}
