package render

// View is a section together with its parsed body, the shape served to
// API and tool clients.
type View struct {
	Title  string  `json:"title"`
	Kind   Kind    `json:"kind"`
	Body   string  `json:"body"`
	Blocks []Block `json:"blocks"`
}

// Views parses text into section views. It never returns nil.
func Views(text string) []View {
	sections := Sections(text)
	views := make([]View, 0, len(sections))
	for _, s := range sections {
		blocks := s.Blocks()
		if blocks == nil {
			blocks = []Block{}
		}
		views = append(views, View{
			Title:  s.Title,
			Kind:   s.Kind,
			Body:   s.Body,
			Blocks: blocks,
		})
	}
	return views
}
