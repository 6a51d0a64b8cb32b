package render

import (
	"regexp"
	"strings"
)

var (
	linkPattern   = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	strongPattern = regexp.MustCompile(`\*\*([^*]+)\*\*`)
)

// BlockKind is the shape of one body line.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockListItem
	BlockBreak
)

func (k BlockKind) String() string {
	switch k {
	case BlockListItem:
		return "list_item"
	case BlockBreak:
		return "break"
	default:
		return "paragraph"
	}
}

// MarshalText encodes the kind by name.
func (k BlockKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// InlineKind is the type of an inline node.
type InlineKind int

const (
	InlineText InlineKind = iota
	InlineStrong
	InlineLink
)

func (k InlineKind) String() string {
	switch k {
	case InlineStrong:
		return "strong"
	case InlineLink:
		return "link"
	default:
		return "text"
	}
}

// MarshalText encodes the kind by name.
func (k InlineKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Inline is one node of a line. Text holds literal text for text and strong
// nodes. Links carry their URL and their label as Children.
type Inline struct {
	Kind     InlineKind `json:"kind"`
	Text     string     `json:"text,omitempty"`
	URL      string     `json:"url,omitempty"`
	Children []Inline   `json:"children,omitempty"`
}

// Block is one body line. Key is the line index within the body and stays
// stable while content grows.
type Block struct {
	Key     int       `json:"key"`
	Kind    BlockKind `json:"kind"`
	Inlines []Inline  `json:"inlines,omitempty"`
}

// ParseBody converts a section body into blocks, one per line.
//
// A line whose trimmed form starts with "- " is a list item with the marker
// stripped. A line that is empty after trimming is a break. Any other line
// is a paragraph. Links are recognised first; bold spans are recognised in
// the remaining text and inside link labels, never across a link.
func ParseBody(body string) []Block {
	if body == "" {
		return nil
	}

	lines := splitLines(body)
	blocks := make([]Block, 0, len(lines))
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			blocks = append(blocks, Block{Key: i, Kind: BlockBreak})
		case strings.HasPrefix(trimmed, "- "):
			blocks = append(blocks, Block{Key: i, Kind: BlockListItem, Inlines: ParseInlines(trimmed[2:])})
		default:
			blocks = append(blocks, Block{Key: i, Kind: BlockParagraph, Inlines: ParseInlines(line)})
		}
	}

	return blocks
}

// ParseInlines splits a single line into text, strong and link nodes.
func ParseInlines(line string) []Inline {
	var out []Inline

	last := 0
	for _, m := range linkPattern.FindAllStringSubmatchIndex(line, -1) {
		out = append(out, parseStrong(line[last:m[0]])...)
		out = append(out, Inline{
			Kind:     InlineLink,
			URL:      line[m[4]:m[5]],
			Children: parseStrong(line[m[2]:m[3]]),
		})
		last = m[1]
	}
	out = append(out, parseStrong(line[last:])...)

	return out
}

func parseStrong(text string) []Inline {
	if text == "" {
		return nil
	}

	var out []Inline
	last := 0
	for _, m := range strongPattern.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > last {
			out = append(out, Inline{Kind: InlineText, Text: text[last:m[0]]})
		}
		out = append(out, Inline{Kind: InlineStrong, Text: text[m[2]:m[3]]})
		last = m[1]
	}
	if last < len(text) {
		out = append(out, Inline{Kind: InlineText, Text: text[last:]})
	}

	return out
}

// PlainText flattens inlines to their visible text. Links render as
// "label (url)".
func PlainText(inlines []Inline) string {
	var sb strings.Builder
	for _, in := range inlines {
		switch in.Kind {
		case InlineLink:
			sb.WriteString(PlainText(in.Children))
			sb.WriteString(" (")
			sb.WriteString(in.URL)
			sb.WriteString(")")
		default:
			sb.WriteString(in.Text)
		}
	}
	return sb.String()
}
