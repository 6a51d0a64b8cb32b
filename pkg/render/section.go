// Package render turns accumulated research text into classified sections
// and a typed document tree, and renders that tree through trusted
// renderers (HTML, terminal, markdown, plain text).
//
// The renderer holds no state. Every function is pure and may be called
// repeatedly on a growing content string while a stream is in flight.
package render

import "strings"

const headingMarker = "## "

// Kind classifies a section by keywords in its title.
type Kind int

const (
	KindGeneric Kind = iota
	KindImages
	KindVideos
	KindSources
)

func (k Kind) String() string {
	switch k {
	case KindImages:
		return "images"
	case KindVideos:
		return "videos"
	case KindSources:
		return "sources"
	default:
		return "generic"
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Classify matches title case-insensitively against the section keywords.
// "image" wins over "video", which wins over "source".
func Classify(title string) Kind {
	lower := strings.ToLower(title)
	switch {
	case strings.Contains(lower, "image"):
		return KindImages
	case strings.Contains(lower, "video"):
		return KindVideos
	case strings.Contains(lower, "source"):
		return KindSources
	default:
		return KindGeneric
	}
}

// Section is a titled or untitled block of the accumulated content.
type Section struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Kind  Kind   `json:"kind"`
}

// Blocks parses the section body into the document tree.
func (s Section) Blocks() []Block {
	return ParseBody(s.Body)
}

// Sections splits text on lines starting with "## ".
//
// Each line that is not a heading is appended with a trailing "\n" to the
// body of the current section. A section is emitted only when its title or
// body is non-empty, in order of first appearance. A final "\n" terminates
// the last line rather than starting an empty one.
func Sections(text string) []Section {
	if text == "" {
		return nil
	}

	var (
		out     []Section
		current Section
		body    strings.Builder
	)

	finalize := func() {
		current.Body = body.String()
		if current.Title != "" || current.Body != "" {
			out = append(out, current)
		}
		body.Reset()
	}

	for _, line := range splitLines(text) {
		if strings.HasPrefix(line, headingMarker) {
			finalize()
			title := strings.TrimSpace(line[len(headingMarker):])
			current = Section{Title: title, Kind: Classify(title)}
			continue
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}
	finalize()

	return out
}

// splitLines splits on "\n", dropping the empty element after a final "\n".
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
