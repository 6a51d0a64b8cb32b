package sse

import "strings"

const (
	dataPrefix   = "data: "
	doneSentinel = "[DONE]"
)

// LineKind classifies a single line of the stream.
type LineKind int

const (
	// LineBlank is an empty or whitespace-only line.
	LineBlank LineKind = iota

	// LineComment starts with ':' and is used for keep-alives.
	LineComment

	// LineData starts with "data: " and carries a JSON payload.
	LineData

	// LineDone is the "data: [DONE]" end-of-stream sentinel.
	LineDone

	// LineOther is any other line (event:, id:, "data:" without a space).
	LineOther
)

func (k LineKind) String() string {
	switch k {
	case LineBlank:
		return "blank"
	case LineComment:
		return "comment"
	case LineData:
		return "data"
	case LineDone:
		return "done"
	default:
		return "other"
	}
}

// Line is one classified line of the stream.
type Line struct {
	Kind LineKind

	// Payload is the whitespace-trimmed text following "data: ".
	// Only set for LineData.
	Payload string
}

// ParseLine classifies a single line. The line must not include its
// terminating "\n"; a single trailing "\r" is stripped.
func ParseLine(raw string) Line {
	raw = strings.TrimSuffix(raw, "\r")

	if strings.HasPrefix(raw, ":") {
		return Line{Kind: LineComment}
	}
	if strings.TrimSpace(raw) == "" {
		return Line{Kind: LineBlank}
	}
	if !strings.HasPrefix(raw, dataPrefix) {
		return Line{Kind: LineOther}
	}

	payload := strings.TrimSpace(raw[len(dataPrefix):])
	if payload == doneSentinel {
		return Line{Kind: LineDone}
	}

	return Line{Kind: LineData, Payload: payload}
}
