package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/quire/pkg/auth"
	"github.com/papercomputeco/quire/pkg/llm"
	quirelogger "github.com/papercomputeco/quire/pkg/logger"
	"github.com/papercomputeco/quire/pkg/research"
	"github.com/papercomputeco/quire/pkg/storage/inmemory"
	"github.com/papercomputeco/quire/pkg/subscription"
)

// readLines decodes every NDJSON line of a research stream.
func readLines(resp *http.Response) []StreamLine {
	defer resp.Body.Close()

	var lines []StreamLine
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		var line StreamLine
		Expect(json.Unmarshal(scanner.Bytes(), &line)).To(Succeed())
		lines = append(lines, line)
	}
	Expect(scanner.Err()).NotTo(HaveOccurred())
	return lines
}

var _ = Describe("POST /v1/research", func() {
	var (
		server   *Server
		driver   *inmemory.Driver
		streamer *fakeStreamer
		sent     string
		ctx      context.Context
	)

	post := func(body string) *http.Request {
		req, err := http.NewRequest(http.MethodPost, "/v1/research", strings.NewReader(body))
		Expect(err).NotTo(HaveOccurred())
		req.Header.Set("Content-Type", "application/json")
		sent = signToken("user-1")
		req.Header.Set("Authorization", "Bearer "+sent)
		return req
	}

	BeforeEach(func() {
		ctx = context.Background()
		driver = inmemory.NewDriver()
		streamer = &fakeStreamer{body: sseBody("## Overview\n", "Quantum bits.\n")}

		var err error
		server, err = NewServer(Config{
			Verifier: auth.NewVerifier(testSecret),
			NewStreamer: func(token string) research.Streamer {
				streamer.token = token
				return streamer
			},
		}, driver, quirelogger.Nop())
		Expect(err).NotTo(HaveOccurred())
	})

	It("streams fragments then a final line with the sections", func() {
		resp, err := server.app.Test(post(`{"topic":"  Quantum Computing "}`), 5000)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
		Expect(resp.Header.Get("Content-Type")).To(Equal(MIMEApplicationNDJSON))

		lines := readLines(resp)
		Expect(lines).To(HaveLen(3))
		Expect(lines[0].Fragment).To(Equal("## Overview\n"))
		Expect(lines[1].Fragment).To(Equal("Quantum bits.\n"))

		final := lines[2]
		Expect(final.Done).To(BeTrue())
		Expect(final.Error).To(BeEmpty())
		Expect(final.Sections).To(HaveLen(1))
		Expect(final.Sections[0].Title).To(Equal("Overview"))
		Expect(final.Remaining).NotTo(BeNil())

		free, _ := subscription.LookupPlan(subscription.PlanFree)
		Expect(*final.Remaining).To(Equal(free.MonthlyLimit - 1))

		Expect(streamer.token).To(Equal(sent))
	})

	It("records history and usage", func() {
		resp, err := server.app.Test(post(`{"topic":"Quantum Computing"}`), 5000)
		Expect(err).NotTo(HaveOccurred())
		lines := readLines(resp)
		final := lines[len(lines)-1]

		id, err := uuid.Parse(final.HistoryID)
		Expect(err).NotTo(HaveOccurred())

		item, err := driver.Get(ctx, "user-1", id)
		Expect(err).NotTo(HaveOccurred())
		Expect(item.Topic).To(Equal("Quantum Computing"))
		Expect(item.Content).To(Equal("## Overview\nQuantum bits.\n"))

		sub, err := driver.GetSubscription(ctx, "user-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(sub.ResearchCount).To(Equal(1))
	})

	It("rejects a blank topic", func() {
		resp, err := server.app.Test(post(`{"topic":"   "}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
	})

	It("returns 402 once the monthly limit is used up", func() {
		sub := subscription.NewFree("user-1", time.Now())
		sub.ResearchCount = sub.MonthlyLimit
		Expect(driver.PutSubscription(ctx, sub)).To(Succeed())

		resp, err := server.app.Test(post(`{"topic":"Climate Change"}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(fiber.StatusPaymentRequired))

		var out llm.ErrorResponse
		decodeJSON(resp, &out)
		Expect(out.Error).To(Equal("You've reached your monthly research limit. Upgrade your plan for more."))

		items, err := driver.List(ctx, "user-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(items).To(BeEmpty())
	})

	It("ends with an error line when the stream cannot open", func() {
		streamer.err = errors.New("upstream unavailable")

		resp, err := server.app.Test(post(`{"topic":"Space Exploration"}`), 5000)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

		lines := readLines(resp)
		Expect(lines).To(HaveLen(1))
		Expect(lines[0].Done).To(BeFalse())
		Expect(lines[0].Error).To(ContainSubstring("upstream unavailable"))
	})
})
