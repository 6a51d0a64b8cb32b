package sse

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

const readBufferSize = 32 * 1024

// Reader reads a research stream from a source io.Reader, decodes it into
// fragments and optionally writes all raw bytes verbatim to a destination
// io.Writer.
//
// ┌──────────────────┐
// │ source io.Reader │
// └──────────────────┘
// │
// ▼
// ┌──────────────────┐   ┌───────────────────────┐
// │   Reader.Run()   │──▶│ destination io.Writer │
// └──────────────────┘   └───────────────────────┘
// │
// ▼
// ┌──────────────────┐
// │ func(Fragment)   │
// └──────────────────┘
//
// The destination receives the exact byte stream, which the CLI uses to
// record a raw capture of a research request.
type Reader struct {
	src     io.Reader
	dest    io.Writer
	decoder *Decoder
}

// NewReader returns a Reader over src. dest may be nil. A nil parser selects
// the OpenAI-compatible chunk parser.
func NewReader(src io.Reader, dest io.Writer, parser ChunkParser) *Reader {
	return &Reader{
		src:     src,
		dest:    dest,
		decoder: NewDecoder(parser),
	}
}

// Run reads the source until it is exhausted, calling fn for every fragment
// in arrival order, and returns the accumulated content.
//
// Run stops between chunks when ctx is done. A source error ends the run;
// the fragments delivered before it stay delivered and the content read so
// far is returned alongside the error.
func (r *Reader) Run(ctx context.Context, fn func(Fragment)) (string, error) {
	var content strings.Builder
	emit := func(fragments []Fragment) {
		for _, f := range fragments {
			content.WriteString(string(f))
			if fn != nil {
				fn(f)
			}
		}
	}

	buf := make([]byte, readBufferSize)
	for {
		if err := ctx.Err(); err != nil {
			return content.String(), err
		}

		n, err := r.src.Read(buf)
		if n > 0 {
			if r.dest != nil {
				if _, werr := r.dest.Write(buf[:n]); werr != nil {
					return content.String(), fmt.Errorf("writing raw stream: %w", werr)
				}
			}
			emit(r.decoder.Feed(buf[:n]))
		}

		if errors.Is(err, io.EOF) {
			emit(r.decoder.Flush())
			return content.String(), nil
		}
		if err != nil {
			return content.String(), fmt.Errorf("reading stream: %w", err)
		}
	}
}
