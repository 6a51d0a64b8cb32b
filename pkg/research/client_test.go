package research_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/quire/pkg/backend"
	"github.com/papercomputeco/quire/pkg/config"
	"github.com/papercomputeco/quire/pkg/research"
)

var _ = Describe("Client", func() {
	var (
		server  *httptest.Server
		handler http.HandlerFunc
		client  *research.Client
	)

	BeforeEach(func() {
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handler(w, r)
		}))
		DeferCleanup(server.Close)

		b := backend.New(config.BackendConfig{URL: server.URL, AnonKey: "anon"})
		client = research.NewClient(b, "/functions/v1/research", "user-token")
	})

	It("posts the topic with the bearer token", func() {
		var (
			gotAuth string
			gotBody map[string]string
			gotPath string
		)
		handler = func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotPath = r.URL.Path
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			w.Header().Set("Content-Type", "text/event-stream")
			_, _ = io.WriteString(w, stream("Hello"))
		}

		body, err := client.Stream(context.Background(), "Quantum Computing")
		Expect(err).NotTo(HaveOccurred())
		defer body.Close()

		raw, err := io.ReadAll(body)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(raw)).To(ContainSubstring(`"content":"Hello"`))
		Expect(gotAuth).To(Equal("Bearer user-token"))
		Expect(gotPath).To(Equal("/functions/v1/research"))
		Expect(gotBody).To(Equal(map[string]string{"topic": "Quantum Computing"}))
	})

	It("uses the error field of a failed reply", func() {
		handler = func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = io.WriteString(w, `{"error":"Rate limits exceeded, please try again later."}`)
		}

		_, err := client.Stream(context.Background(), "t")
		Expect(err).To(MatchError(ContainSubstring("Rate limits exceeded, please try again later.")))

		var statusErr *backend.StatusError
		Expect(errors.As(err, &statusErr)).To(BeTrue())
		Expect(statusErr.Code).To(Equal(http.StatusTooManyRequests))
	})

	It("falls back to the status code", func() {
		handler = func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}

		_, err := client.Stream(context.Background(), "t")
		Expect(err).To(MatchError(ContainSubstring("Request failed with status 502")))
	})

	It("reports a missing body", func() {
		handler = func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Length", "0")
			w.WriteHeader(http.StatusOK)
		}

		_, err := client.Stream(context.Background(), "t")
		Expect(err).To(MatchError(research.ErrNoBody))
		Expect(err).To(MatchError("No response body"))
	})

	It("keeps streaming past the function call timeout", func() {
		handler = func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/event-stream")
			flusher := w.(http.Flusher)
			for i := 0; i < 6; i++ {
				_, _ = io.WriteString(w, delta("x"))
				flusher.Flush()
				time.Sleep(50 * time.Millisecond)
			}
			_, _ = io.WriteString(w, "data: [DONE]\n\n")
		}

		b := backend.New(config.BackendConfig{URL: server.URL})
		b.HTTPClient = &http.Client{Timeout: 100 * time.Millisecond}
		sess := research.NewSession(research.NewClient(b, "/functions/v1/research", ""))

		result, err := sess.Research(context.Background(), "Space Exploration", nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Content).To(Equal(strings.Repeat("x", 6)))
	})
})
