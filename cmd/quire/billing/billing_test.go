package billingcmder_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	billingcmder "github.com/papercomputeco/quire/cmd/quire/billing"
	"github.com/papercomputeco/quire/cmd/quire/workspace"
	"github.com/papercomputeco/quire/pkg/auth"
	"github.com/papercomputeco/quire/pkg/credentials"
	"github.com/papercomputeco/quire/pkg/storage/sqlite"
	"github.com/papercomputeco/quire/pkg/subscription"
)

func signIn(dir string) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("backend-secret"))
	Expect(err).NotTo(HaveOccurred())

	mgr, err := credentials.NewManager(dir)
	Expect(err).NotTo(HaveOccurred())
	Expect(mgr.SetSession(token, "")).To(Succeed())
}

// fakeFunctions answers the hosted billing functions.
type fakeFunctions struct {
	mu    sync.Mutex
	paths []string
	body  map[string]string
}

func (f *fakeFunctions) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.paths = append(f.paths, r.URL.Path)
	f.body = map[string]string{}
	_ = json.Unmarshal(data, &f.body)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/functions/v1/create-checkout":
		_, _ = io.WriteString(w, `{"url":"https://checkout.example/session"}`)
	case "/functions/v1/customer-portal":
		_, _ = io.WriteString(w, `{"url":"https://billing.example/portal"}`)
	case "/functions/v1/check-subscription":
		_, _ = io.WriteString(w, `{"subscribed":true,"plan":"pro","status":"active"}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

var _ = Describe("Billing commands", func() {
	var (
		tmpDir string
		dbPath string
		out    *bytes.Buffer
		fake   *fakeFunctions
		server *httptest.Server
	)

	run := func(cmd *cobra.Command, args ...string) error {
		cmd.PersistentFlags().String("config-dir", "", "")
		cmd.PersistentFlags().Bool("debug", false, "")
		out = &bytes.Buffer{}
		cmd.SetOut(out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(append(args, "--config-dir", tmpDir))
		return cmd.Execute()
	}

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		dbPath = filepath.Join(tmpDir, "quire.db")
		fake = &fakeFunctions{}
		server = httptest.NewServer(fake)
		DeferCleanup(server.Close)
	})

	Describe("usage", func() {
		It("requires sign in", func() {
			err := run(billingcmder.NewUsageCmd())
			Expect(err).To(MatchError(workspace.ErrReported))
			Expect(ansi.Strip(out.String())).To(ContainSubstring("Sign in required"))
		})

		It("shows the free plan on first use", func() {
			signIn(tmpDir)
			Expect(run(billingcmder.NewUsageCmd())).To(Succeed())

			text := ansi.Strip(out.String())
			Expect(text).To(ContainSubstring("Free"))
			Expect(text).To(ContainSubstring("0 / 5 researches this month"))
			Expect(text).To(ContainSubstring("5 remaining"))
		})

		It("refreshes the plan from the billing backend", func() {
			signIn(tmpDir)
			Expect(run(billingcmder.NewUsageCmd(), "--refresh", "--backend-url", server.URL)).To(Succeed())
			Expect(ansi.Strip(out.String())).To(ContainSubstring("0 / 50 researches this month"))

			driver, err := sqlite.NewSQLiteDriver(context.Background(), dbPath)
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(driver.Close)

			sub, err := driver.GetSubscription(context.Background(), "user-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(sub.Plan).To(Equal(subscription.PlanPro))
		})

		It("reports a used up limit", func() {
			signIn(tmpDir)

			driver, err := sqlite.NewSQLiteDriver(context.Background(), dbPath)
			Expect(err).NotTo(HaveOccurred())
			sub := subscription.NewFree("user-1", time.Now())
			sub.ResearchCount = sub.MonthlyLimit
			Expect(driver.PutSubscription(context.Background(), sub)).To(Succeed())
			Expect(driver.Close()).To(Succeed())

			Expect(run(billingcmder.NewUsageCmd())).To(Succeed())
			Expect(ansi.Strip(out.String())).To(ContainSubstring("Limit reached"))
		})
	})

	Describe("plans", func() {
		It("lists every plan", func() {
			Expect(run(billingcmder.NewPlansCmd())).To(Succeed())

			text := ansi.Strip(out.String())
			Expect(text).To(ContainSubstring("Free"))
			Expect(text).To(ContainSubstring("$19/month"))
			Expect(text).To(ContainSubstring("$49/month"))
		})
	})

	Describe("checkout", func() {
		It("prints the checkout page", func() {
			signIn(tmpDir)
			Expect(run(billingcmder.NewCheckoutCmd(), "pro", "--backend-url", server.URL)).To(Succeed())
			Expect(ansi.Strip(out.String())).To(ContainSubstring("https://checkout.example/session"))

			pro, _ := subscription.LookupPlan(subscription.PlanPro)
			Expect(fake.body).To(HaveKeyWithValue("priceId", pro.PriceID))
		})

		It("rejects the free plan", func() {
			signIn(tmpDir)
			err := run(billingcmder.NewCheckoutCmd(), "free", "--backend-url", server.URL)
			Expect(err).To(MatchError(subscription.ErrInvalidPlan))
			Expect(fake.paths).To(BeEmpty())
		})
	})

	Describe("portal", func() {
		It("prints the portal page", func() {
			signIn(tmpDir)
			Expect(run(billingcmder.NewPortalCmd(), "--backend-url", server.URL)).To(Succeed())
			Expect(ansi.Strip(out.String())).To(ContainSubstring("https://billing.example/portal"))
		})
	})
})
