// Package export turns accumulated research text into a downloadable
// document.
package export

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"unicode"

	"github.com/papercomputeco/quire/pkg/render"
)

// Format is an export format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatText     Format = "text"
)

// Formats lists the supported formats.
var Formats = []Format{FormatMarkdown, FormatHTML, FormatText}

// ParseFormat accepts a format name or its file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	case "text", "txt":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (want markdown, html or text)", s)
	}
}

// Ext is the file extension without the dot.
func (f Format) Ext() string {
	switch f {
	case FormatHTML:
		return "html"
	case FormatText:
		return "txt"
	default:
		return "md"
	}
}

// ContentType is the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatText:
		return "text/plain; charset=utf-8"
	default:
		return "text/markdown; charset=utf-8"
	}
}

// Document is an exported file.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Slug lowercases topic and joins its letters and digits with dashes.
func Slug(topic string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(topic) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	if sb.Len() == 0 {
		return "research"
	}
	return sb.String()
}

// Filename is the download name for topic in format f.
func Filename(topic string, f Format) string {
	return Slug(topic) + "." + f.Ext()
}

// Render builds the document for topic and its accumulated content.
func Render(topic, content string, f Format) (*Document, error) {
	sections := render.Sections(content)

	var body []byte
	switch f {
	case FormatMarkdown:
		body = []byte(markdown(topic, sections))
	case FormatText:
		body = []byte(text(topic, sections))
	case FormatHTML:
		var err error
		body, err = page(topic, sections)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported export format %q", f)
	}

	return &Document{
		Filename:    Filename(topic, f),
		ContentType: f.ContentType(),
		Body:        body,
	}, nil
}

func markdown(topic string, sections []render.Section) string {
	var sb strings.Builder
	if topic != "" {
		sb.WriteString("# ")
		sb.WriteString(topic)
		sb.WriteString("\n\n")
	}
	sb.WriteString(render.Markdown(sections))
	return sb.String()
}

func text(topic string, sections []render.Section) string {
	var sb strings.Builder
	if topic != "" {
		sb.WriteString(topic)
		sb.WriteByte('\n')
		sb.WriteString(strings.Repeat("=", len([]rune(topic))))
		sb.WriteString("\n\n")
	}
	sb.WriteString(render.Text(sections))
	return sb.String()
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Topic}}</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; line-height: 1.6; color: #1f2328; }
h1 { border-bottom: 1px solid #d0d7de; padding-bottom: .3rem; }
.section { margin: 1.5rem 0; }
.section-images h3::before { content: "🖼️ "; }
.section-videos h3::before { content: "🎬 "; }
.section-sources h3::before { content: "📚 "; }
a { color: #0969da; }
</style>
</head>
<body>
<h1>{{.Topic}}</h1>
{{.Body}}
</body>
</html>
`))

func page(topic string, sections []render.Section) ([]byte, error) {
	title := topic
	if title == "" {
		title = "Research"
	}

	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, struct {
		Topic string
		Body  template.HTML
	}{
		Topic: title,
		// render.HTML escapes all text and runs the bluemonday policy.
		Body: template.HTML(render.HTML(sections)), //nolint:gosec // sanitized above
	})
	if err != nil {
		return nil, fmt.Errorf("rendering html export: %w", err)
	}
	return buf.Bytes(), nil
}
