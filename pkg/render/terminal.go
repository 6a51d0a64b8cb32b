package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Icons per section kind in terminal output.
var kindIcons = map[Kind]string{
	KindGeneric: "📄",
	KindImages:  "🖼️",
	KindVideos:  "🎬",
	KindSources: "📚",
}

// Terminal renders sections with lipgloss styles.
type Terminal struct {
	width int

	title  lipgloss.Style
	rule   lipgloss.Style
	strong lipgloss.Style
	link   lipgloss.Style
	url    lipgloss.Style
	bullet lipgloss.Style
}

// NewTerminal creates a terminal renderer wrapping at width (0 disables
// wrapping). A nil renderer uses the lipgloss default renderer.
func NewTerminal(r *lipgloss.Renderer, width int) *Terminal {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}

	return &Terminal{
		width:  width,
		title:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6FE8")),
		rule:   r.NewStyle().Foreground(lipgloss.Color("#555555")),
		strong: r.NewStyle().Bold(true),
		link:   r.NewStyle().Underline(true).Foreground(lipgloss.Color("#00D7FF")),
		url:    r.NewStyle().Foreground(lipgloss.Color("#888888")),
		bullet: r.NewStyle().Foreground(lipgloss.Color("#FF6FE8")),
	}
}

// Render renders every section separated by a blank line.
func (t *Terminal) Render(sections []Section) string {
	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		parts = append(parts, t.Section(s))
	}
	return strings.Join(parts, "\n\n")
}

// Section renders one section: an icon and title heading followed by its body.
func (t *Terminal) Section(s Section) string {
	var lines []string
	if s.Title != "" {
		heading := kindIcons[s.Kind] + "  " + t.title.Render(s.Title)
		lines = append(lines, heading)
		ruleWidth := t.width
		if ruleWidth <= 0 || ruleWidth > 60 {
			ruleWidth = 60
		}
		lines = append(lines, t.rule.Render(strings.Repeat("─", ruleWidth)))
	}

	for _, b := range s.Blocks() {
		lines = append(lines, t.block(b))
	}

	return strings.Join(lines, "\n")
}

func (t *Terminal) block(b Block) string {
	switch b.Kind {
	case BlockBreak:
		return ""
	case BlockListItem:
		marker := "  " + t.bullet.Render("•") + " "
		return marker + t.wrap(t.inlines(b.Inlines), 4)
	default:
		return t.wrap(t.inlines(b.Inlines), 0)
	}
}

func (t *Terminal) inlines(inlines []Inline) string {
	var sb strings.Builder
	for _, in := range inlines {
		switch in.Kind {
		case InlineStrong:
			sb.WriteString(t.strong.Render(in.Text))
		case InlineLink:
			sb.WriteString(t.link.Render(PlainText(in.Children)))
			sb.WriteString(" ")
			sb.WriteString(t.url.Render("(" + in.URL + ")"))
		default:
			sb.WriteString(in.Text)
		}
	}
	return sb.String()
}

// wrap word-wraps s to the renderer width, leaving room for indent columns
// and indenting continuation lines.
func (t *Terminal) wrap(s string, indent int) string {
	if t.width <= indent {
		return s
	}

	wrapped := ansi.Wordwrap(s, t.width-indent, "")
	if indent == 0 {
		return wrapped
	}

	pad := strings.Repeat(" ", indent)
	lines := strings.Split(wrapped, "\n")
	for i := 1; i < len(lines); i++ {
		lines[i] = pad + lines[i]
	}
	return strings.Join(lines, "\n")
}
