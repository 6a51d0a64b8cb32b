package render_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/quire/pkg/render"
)

var _ = Describe("HTML", func() {
	It("renders markup without leaking the literal markers", func() {
		out := render.HTML(render.Sections("- **bold** [link](http://x)\n"))

		Expect(out).To(ContainSubstring("<li><strong>bold</strong>"))
		Expect(out).To(ContainSubstring(`href="http://x"`))
		Expect(out).To(ContainSubstring(`target="_blank"`))
		Expect(out).To(ContainSubstring("noopener"))
		Expect(out).To(ContainSubstring("noreferrer"))
		Expect(out).To(ContainSubstring(">link</a>"))
		Expect(out).NotTo(ContainSubstring("**"))
		Expect(out).NotTo(ContainSubstring("[link]"))
		Expect(out).NotTo(ContainSubstring("- "))
	})

	It("opens relative links in a new browsing context too", func() {
		out := render.HTML(render.Sections("[x](/page)\n[y](https://a.example/)\n"))

		Expect(out).To(MatchRegexp(`<a href="/page" target="_blank" rel="[^"]*noopener[^"]*"`))
		Expect(out).To(MatchRegexp(`<a href="https://a.example/" target="_blank" rel="[^"]*noopener[^"]*"`))
		Expect(out).To(ContainSubstring(">x</a>"))
		Expect(out).To(ContainSubstring(">y</a>"))
	})

	It("renders titles, kinds, paragraphs and breaks", func() {
		out := render.HTML(render.Sections("## Image Gallery\nhello\n\nworld\n"))

		Expect(out).To(ContainSubstring(`<section class="section section-images">`))
		Expect(out).To(ContainSubstring("<h3>Image Gallery</h3>"))
		Expect(out).To(ContainSubstring("<p>hello</p>"))
		Expect(out).To(ContainSubstring("<br"))
		Expect(out).To(ContainSubstring("<p>world</p>"))
	})

	It("groups consecutive list items", func() {
		out := render.HTML(render.Sections("- a\n- b\ntext\n"))
		Expect(out).To(ContainSubstring("<ul><li>a</li><li>b</li></ul><p>text</p>"))
	})

	It("escapes text instead of trusting it", func() {
		out := render.HTML(render.Sections("## <b>T</b>\n<script>alert(1)</script> **<i>x</i>**\n"))

		Expect(out).NotTo(ContainSubstring("<script>"))
		Expect(out).NotTo(ContainSubstring("<b>"))
		Expect(out).NotTo(ContainSubstring("<i>"))
		Expect(out).To(ContainSubstring("&lt;script&gt;"))
	})

	It("drops unsafe link schemes", func() {
		out := render.HTML(render.Sections("[click](javascript:alert(1))\n"))
		Expect(out).NotTo(ContainSubstring("javascript:"))
		Expect(out).To(ContainSubstring("click"))
	})

	It("escapes quotes in URLs", func() {
		out := render.HTML(render.Sections(`[x](http://a.example/"onmouseover=alert)` + "\n"))
		Expect(out).NotTo(ContainSubstring(`"onmouseover`))
	})

	It("renders a bare body", func() {
		Expect(render.BlocksHTML(render.ParseBody("**hi**\n"))).To(Equal("<p><strong>hi</strong></p>"))
	})
})
