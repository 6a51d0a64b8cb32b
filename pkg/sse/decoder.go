package sse

import (
	"errors"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/papercomputeco/quire/pkg/llm"
	"github.com/papercomputeco/quire/pkg/llm/provider/openai"
)

// Decoder turns arbitrary network chunks into text fragments.
//
// A Decoder is a finite-state buffer: the step function Feed maps
// (state, chunk) to (state', fragments) and Flush runs the end-of-stream
// pass. Its state is the text not yet consumed as complete lines plus the
// bytes of a multi-byte UTF-8 sequence split across chunks.
//
// A Decoder is not safe for concurrent use.
type Decoder struct {
	parser ChunkParser

	// utf8 is a stateful decoder: it drops a leading BOM, holds back a
	// trailing partial sequence and maps ill-formed bytes to U+FFFD.
	utf8 transform.Transformer

	// carry holds undecoded trailing bytes from the previous chunk.
	carry []byte

	// pending is decoded text that has not been consumed as a line yet.
	pending string
}

// NewDecoder returns a Decoder that parses data payloads with parser.
// A nil parser selects the OpenAI-compatible chunk parser.
func NewDecoder(parser ChunkParser) *Decoder {
	if parser == nil {
		parser = openai.New()
	}

	return &Decoder{
		parser: parser,
		utf8:   unicode.UTF8BOM.NewDecoder(),
	}
}

// Feed decodes chunk and returns the fragments of every complete line that
// can be consumed, in order.
//
// A pass stops early at "data: [DONE]", leaving the remaining text pending,
// or at a data line whose payload fails to parse. In the latter case the line
// is restored to the front of the pending buffer and retried on the next Feed.
func (d *Decoder) Feed(chunk []byte) []Fragment {
	d.pending += d.decode(chunk, false)
	return d.drain()
}

// Flush runs the end-of-stream pass. A held partial UTF-8 sequence becomes
// U+FFFD, then every remaining line is processed: [DONE] is skipped and
// payloads that fail to parse are dropped. The Decoder is empty afterwards.
func (d *Decoder) Flush() []Fragment {
	d.pending += d.decode(nil, true)
	if d.pending == "" {
		return nil
	}

	rest := d.pending
	d.pending = ""

	var out []Fragment
	for raw := range strings.SplitSeq(rest, "\n") {
		line := ParseLine(raw)
		if line.Kind != LineData {
			continue
		}

		chunk, err := d.parser.ParseStreamChunk([]byte(line.Payload))
		if err != nil {
			continue
		}
		if f, ok := fragmentOf(chunk); ok {
			out = append(out, f)
		}
	}

	return out
}

// Pending returns the decoded text not yet consumed as lines.
func (d *Decoder) Pending() string {
	return d.pending
}

func (d *Decoder) drain() []Fragment {
	var out []Fragment

	for {
		idx := strings.IndexByte(d.pending, '\n')
		if idx < 0 {
			return out
		}

		raw := strings.TrimSuffix(d.pending[:idx], "\r")
		d.pending = d.pending[idx+1:]

		line := ParseLine(raw)
		switch line.Kind {
		case LineBlank, LineComment, LineOther:
			continue
		case LineDone:
			return out
		}

		chunk, err := d.parser.ParseStreamChunk([]byte(line.Payload))
		if err != nil {
			d.pending = raw + "\n" + d.pending
			return out
		}
		if f, ok := fragmentOf(chunk); ok {
			out = append(out, f)
		}
	}
}

// decode runs the stateful UTF-8 decoder over the carried bytes plus chunk.
func (d *Decoder) decode(chunk []byte, atEOF bool) string {
	src := make([]byte, 0, len(d.carry)+len(chunk))
	src = append(src, d.carry...)
	src = append(src, chunk...)
	d.carry = nil

	if len(src) == 0 && !atEOF {
		return ""
	}

	var sb strings.Builder
	buf := make([]byte, 4096)
	for {
		nDst, nSrc, err := d.utf8.Transform(buf, src, atEOF)
		sb.Write(buf[:nDst])
		src = src[nSrc:]

		if errors.Is(err, transform.ErrShortDst) {
			continue
		}
		if errors.Is(err, transform.ErrShortSrc) {
			d.carry = src
		}
		break
	}

	if atEOF {
		d.utf8.Reset()
	}

	return sb.String()
}

func fragmentOf(chunk *llm.StreamChunk) (Fragment, bool) {
	if chunk == nil {
		return "", false
	}
	text := chunk.Message.GetText()
	if text == "" {
		return "", false
	}
	return Fragment(text), true
}
