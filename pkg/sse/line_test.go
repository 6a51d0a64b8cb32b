package sse

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ParseLine", func() {
	DescribeTable("classifies lines",
		func(raw string, kind LineKind, payload string) {
			line := ParseLine(raw)
			Expect(line.Kind).To(Equal(kind))
			Expect(line.Payload).To(Equal(payload))
		},
		Entry("empty", "", LineBlank, ""),
		Entry("whitespace only", "   \t", LineBlank, ""),
		Entry("carriage return only", "\r", LineBlank, ""),
		Entry("comment", ": keep-alive", LineComment, ""),
		Entry("bare colon", ":", LineComment, ""),
		Entry("data", `data: {"a":1}`, LineData, `{"a":1}`),
		Entry("data with CRLF", "data: {\"a\":1}\r", LineData, `{"a":1}`),
		Entry("data with padding", "data:   {\"a\":1}  ", LineData, `{"a":1}`),
		Entry("done", "data: [DONE]", LineDone, ""),
		Entry("done padded", "data:  [DONE] ", LineDone, ""),
		Entry("data without space", `data:{"a":1}`, LineOther, ""),
		Entry("event field", "event: message", LineOther, ""),
	)

	It("names kinds", func() {
		Expect(LineData.String()).To(Equal("data"))
		Expect(LineDone.String()).To(Equal("done"))
		Expect(LineKind(99).String()).To(Equal("other"))
	})
})
