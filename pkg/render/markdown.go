package render

import "strings"

// Markdown serialises sections back to markdown. Markdown(Sections(text))
// reproduces text up to heading whitespace and a final line feed.
func Markdown(sections []Section) string {
	var sb strings.Builder
	for _, s := range sections {
		if s.Title != "" {
			sb.WriteString(headingMarker)
			sb.WriteString(s.Title)
			sb.WriteByte('\n')
		}
		sb.WriteString(s.Body)
	}
	return sb.String()
}

// Text renders sections as plain text with all markup removed.
func Text(sections []Section) string {
	var sb strings.Builder
	for i, s := range sections {
		if i > 0 {
			sb.WriteByte('\n')
		}
		if s.Title != "" {
			sb.WriteString(strings.ToUpper(s.Title))
			sb.WriteByte('\n')
		}
		for _, b := range s.Blocks() {
			switch b.Kind {
			case BlockBreak:
			case BlockListItem:
				sb.WriteString("  * ")
				sb.WriteString(PlainText(b.Inlines))
			default:
				sb.WriteString(PlainText(b.Inlines))
			}
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
