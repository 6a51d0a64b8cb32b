package render

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// htmlPolicy is the allow-list applied to every rendered fragment. It keeps
// the elements the renderer emits and drops unsafe URL schemes.
var htmlPolicy = newHTMLPolicy()

func newHTMLPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("section", "h3")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^section section-[a-z]+$`)).OnElements("section")
	p.AllowAttrs("target").Matching(regexp.MustCompile(`^_blank$`)).OnElements("a")
	p.AllowAttrs("rel").Matching(regexp.MustCompile(`^noopener noreferrer$`)).OnElements("a")
	p.RequireNoReferrerOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// HTML renders sections as an HTML fragment. All text is escaped; anchors
// open in a new browsing context.
func HTML(sections []Section) string {
	var sb strings.Builder
	for _, s := range sections {
		writeSectionHTML(&sb, s)
	}
	return htmlPolicy.Sanitize(sb.String())
}

// BlocksHTML renders a single body as an HTML fragment.
func BlocksHTML(blocks []Block) string {
	var sb strings.Builder
	writeBlocksHTML(&sb, blocks)
	return htmlPolicy.Sanitize(sb.String())
}

func writeSectionHTML(sb *strings.Builder, s Section) {
	sb.WriteString(`<section class="section section-`)
	sb.WriteString(s.Kind.String())
	sb.WriteString(`">`)
	if s.Title != "" {
		sb.WriteString("<h3>")
		sb.WriteString(html.EscapeString(s.Title))
		sb.WriteString("</h3>")
	}
	writeBlocksHTML(sb, s.Blocks())
	sb.WriteString("</section>")
}

func writeBlocksHTML(sb *strings.Builder, blocks []Block) {
	inList := false
	for _, b := range blocks {
		if b.Kind == BlockListItem && !inList {
			sb.WriteString("<ul>")
			inList = true
		}
		if b.Kind != BlockListItem && inList {
			sb.WriteString("</ul>")
			inList = false
		}

		switch b.Kind {
		case BlockBreak:
			sb.WriteString("<br>")
		case BlockListItem:
			sb.WriteString("<li>")
			writeInlinesHTML(sb, b.Inlines)
			sb.WriteString("</li>")
		default:
			sb.WriteString("<p>")
			writeInlinesHTML(sb, b.Inlines)
			sb.WriteString("</p>")
		}
	}
	if inList {
		sb.WriteString("</ul>")
	}
}

func writeInlinesHTML(sb *strings.Builder, inlines []Inline) {
	for _, in := range inlines {
		switch in.Kind {
		case InlineStrong:
			sb.WriteString("<strong>")
			sb.WriteString(html.EscapeString(in.Text))
			sb.WriteString("</strong>")
		case InlineLink:
			sb.WriteString(`<a href="`)
			sb.WriteString(html.EscapeString(in.URL))
			sb.WriteString(`" target="_blank" rel="noopener noreferrer">`)
			writeInlinesHTML(sb, in.Children)
			sb.WriteString("</a>")
		default:
			sb.WriteString(html.EscapeString(in.Text))
		}
	}
}
