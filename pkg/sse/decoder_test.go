package sse

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func delta(text string) string {
	return `data: {"choices":[{"delta":{"content":"` + text + `"}}]}` + "\n"
}

// feedInChunks feeds stream in chunks of size n and returns every fragment,
// including those from the final flush, joined.
func feedInChunks(stream []byte, n int) string {
	d := NewDecoder(nil)
	var sb strings.Builder
	for start := 0; start < len(stream); start += n {
		end := min(start+n, len(stream))
		for _, f := range d.Feed(stream[start:end]) {
			sb.WriteString(string(f))
		}
	}
	for _, f := range d.Flush() {
		sb.WriteString(string(f))
	}
	return sb.String()
}

var _ = Describe("Decoder", func() {
	var d *Decoder

	BeforeEach(func() {
		d = NewDecoder(nil)
	})

	Describe("Feed", func() {
		It("emits one fragment per data line", func() {
			fragments := d.Feed([]byte(delta("Hel") + delta("lo")))
			Expect(fragments).To(Equal([]Fragment{"Hel", "lo"}))
			Expect(d.Pending()).To(BeEmpty())
		})

		It("holds a partial line until its newline arrives", func() {
			line := delta("Hi")
			Expect(d.Feed([]byte(line[:20]))).To(BeEmpty())
			Expect(d.Pending()).To(Equal(line[:20]))

			Expect(d.Feed([]byte(line[20:]))).To(Equal([]Fragment{"Hi"}))
			Expect(d.Pending()).To(BeEmpty())
		})

		It("emits a JSON value split across chunks exactly once", func() {
			line := delta("split")
			mid := strings.Index(line, "delta")
			first := d.Feed([]byte(line[:mid]))
			second := d.Feed([]byte(line[mid:]))
			Expect(first).To(BeEmpty())
			Expect(second).To(Equal([]Fragment{"split"}))
			Expect(d.Flush()).To(BeEmpty())
		})

		It("skips comments, blank lines and non-data fields", func() {
			stream := ": ping\n\n\r\nevent: message\nid: 7\n" + delta("x")
			Expect(d.Feed([]byte(stream))).To(Equal([]Fragment{"x"}))
		})

		It("strips a trailing carriage return", func() {
			stream := strings.TrimSuffix(delta("crlf"), "\n") + "\r\n"
			Expect(d.Feed([]byte(stream))).To(Equal([]Fragment{"crlf"}))
		})

		It("ignores chunks without text", func() {
			stream := `data: {"choices":[{"delta":{"role":"assistant"}}]}` + "\n" +
				`data: {"choices":[{"delta":{"content":""}}]}` + "\n" +
				`data: 42` + "\n"
			Expect(d.Feed([]byte(stream))).To(BeEmpty())
			Expect(d.Pending()).To(BeEmpty())
		})

		Context("with [DONE]", func() {
			It("stops the pass and leaves the remainder pending", func() {
				rest := delta("after")
				fragments := d.Feed([]byte(delta("before") + "data: [DONE]\n" + rest))
				Expect(fragments).To(Equal([]Fragment{"before"}))
				Expect(d.Pending()).To(Equal(rest))
			})

			It("processes the remainder on the next feed", func() {
				d.Feed([]byte("data: [DONE]\n" + delta("later")))
				Expect(d.Feed(nil)).To(Equal([]Fragment{"later"}))
			})
		})

		Context("with a line that fails to parse", func() {
			It("pushes the line back and stops the pass", func() {
				bad := `data: {"choices":[` + "\n"
				fragments := d.Feed([]byte(delta("a") + bad + delta("b")))
				Expect(fragments).To(Equal([]Fragment{"a"}))
				Expect(d.Pending()).To(HavePrefix(bad))
				Expect(d.Pending()).To(HaveSuffix(delta("b")))
			})

			It("drops it during the flush and recovers what follows", func() {
				bad := `data: {"choices":[` + "\n"
				d.Feed([]byte(bad + delta("b")))
				Expect(d.Flush()).To(Equal([]Fragment{"b"}))
				Expect(d.Pending()).To(BeEmpty())
			})
		})

		Context("with multi-byte UTF-8", func() {
			It("holds back a sequence split across chunks", func() {
				stream := []byte(delta("héllo"))
				i := strings.Index(string(stream), "é")

				Expect(d.Feed(stream[:i+1])).To(BeEmpty())
				Expect(d.Pending()).NotTo(ContainSubstring("�"))
				Expect(d.Feed(stream[i+1:])).To(Equal([]Fragment{"héllo"}))
			})

			It("drops a leading byte order mark", func() {
				stream := append([]byte{0xEF, 0xBB, 0xBF}, []byte(delta("bom"))...)
				Expect(d.Feed(stream[:2])).To(BeEmpty())
				Expect(d.Feed(stream[2:])).To(Equal([]Fragment{"bom"}))
			})
		})
	})

	Describe("Flush", func() {
		It("processes a final line without a trailing newline", func() {
			line := strings.TrimSuffix(delta("tail"), "\n")
			Expect(d.Feed([]byte(line))).To(BeEmpty())
			Expect(d.Flush()).To(Equal([]Fragment{"tail"}))
		})

		It("skips [DONE] and keeps going", func() {
			d.Feed([]byte("data: [DONE]\n" + delta("one") + "data: [DONE]\n" + delta("two")))
			Expect(d.Flush()).To(Equal([]Fragment{"one", "two"}))
		})

		It("replaces a truncated UTF-8 sequence at end of stream", func() {
			d.Feed([]byte(`: note ` + "\xE2\x82"))
			Expect(d.Pending()).NotTo(ContainSubstring("�"))
			Expect(d.Flush()).To(BeEmpty())
		})

		It("returns nothing for an empty decoder", func() {
			Expect(d.Flush()).To(BeNil())
		})
	})

	Describe("chunk boundary independence", func() {
		stream := []byte(": open\n\n" +
			delta("Research") +
			delta(" on ") +
			"\r\n" +
			delta("café ☕") +
			"event: ping\n" +
			delta("!") +
			"data: [DONE]\n")

		It("yields the same content for every chunk size", func() {
			want := "Research on café ☕!"
			for _, n := range []int{1, 2, 3, 5, 7, 13, 64, len(stream)} {
				Expect(feedInChunks(stream, n)).To(Equal(want), "chunk size %d", n)
			}
		})

		It("decodes the byte-by-byte example", func() {
			Expect(feedInChunks([]byte(delta("Hi")), 1)).To(Equal("Hi"))
		})
	})
})
