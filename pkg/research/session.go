package research

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/papercomputeco/quire/pkg/sse"
)

// ErrBusy is returned when Research is called while a request is streaming.
var ErrBusy = errors.New("research already in progress")

// Result summarises one finished request.
type Result struct {
	Topic     string
	Content   string
	Fragments int
	Bytes     int64
	Duration  time.Duration
}

// Session owns the accumulated content of one research request at a time.
// Readers may call Content, Loading and Err while Research streams.
type Session struct {
	streamer Streamer
	parser   sse.ChunkParser
	record   io.Writer
	now      func() time.Time

	mu      sync.RWMutex
	topic   string
	content string
	loading bool
	err     error
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithParser overrides the chunk parser used by the decoder.
func WithParser(p sse.ChunkParser) SessionOption {
	return func(s *Session) { s.parser = p }
}

// WithRecorder tees the raw stream bytes to w.
func WithRecorder(w io.Writer) SessionOption {
	return func(s *Session) { s.record = w }
}

// WithClock overrides the clock used for durations.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// NewSession creates a session that streams through streamer.
func NewSession(streamer Streamer, opts ...SessionOption) *Session {
	s := &Session{
		streamer: streamer,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Research clears the previous content and error, streams topic, and calls
// onFragment for every fragment in arrival order. The returned Result holds
// whatever arrived, also when err is non-nil.
func (s *Session) Research(ctx context.Context, topic string, onFragment func(sse.Fragment)) (*Result, error) {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	s.topic = topic
	s.content = ""
	s.err = nil
	s.loading = true
	s.mu.Unlock()

	start := s.now()
	result := &Result{Topic: topic}

	err := s.stream(ctx, topic, result, onFragment)

	result.Duration = s.now().Sub(start)

	s.mu.Lock()
	s.loading = false
	s.err = err
	result.Content = s.content
	s.mu.Unlock()

	return result, err
}

func (s *Session) stream(ctx context.Context, topic string, result *Result, onFragment func(sse.Fragment)) error {
	body, err := s.streamer.Stream(ctx, topic)
	if err != nil {
		return err
	}
	defer body.Close()

	counted := &countingReader{r: body}
	reader := sse.NewReader(counted, s.record, s.parser)

	_, err = reader.Run(ctx, func(f sse.Fragment) {
		s.mu.Lock()
		s.content += string(f)
		s.mu.Unlock()

		result.Fragments++
		if onFragment != nil {
			onFragment(f)
		}
	})
	result.Bytes = counted.n
	return err
}

// Topic returns the topic of the current or last request.
func (s *Session) Topic() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.topic
}

// Content returns the text accumulated so far.
func (s *Session) Content() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.content
}

// Loading reports whether a request is streaming.
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the terminal error of the last request.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Reset clears the content and error. It has no effect while loading.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading {
		return
	}
	s.content = ""
	s.err = nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
