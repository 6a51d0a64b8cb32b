package historycmder_test

import (
	"bytes"
	"context"
	"path/filepath"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	historycmder "github.com/papercomputeco/quire/cmd/quire/history"
	"github.com/papercomputeco/quire/cmd/quire/workspace"
	"github.com/papercomputeco/quire/pkg/auth"
	"github.com/papercomputeco/quire/pkg/credentials"
	"github.com/papercomputeco/quire/pkg/dotdir"
	"github.com/papercomputeco/quire/pkg/history"
	"github.com/papercomputeco/quire/pkg/storage/sqlite"
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

var _ = Describe("History command", func() {
	var (
		tmpDir string
		out    *bytes.Buffer
		items  []*history.Item
	)

	run := func(args ...string) error {
		cmd := historycmder.NewHistoryCmd()
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

		driver, err := sqlite.NewSQLiteDriver(context.Background(), filepath.Join(tmpDir, "quire.db"))
		Expect(err).NotTo(HaveOccurred())

		now := time.Now()
		items = []*history.Item{
			history.NewItem("user-1", "Renaissance Art", now.Add(-time.Hour)),
			history.NewItem("user-1", "Climate Change", now),
			history.NewItem("user-2", "Blockchain Technology", now),
		}
		for _, item := range items {
			Expect(driver.Add(context.Background(), item)).To(Succeed())
		}
		Expect(driver.SetContent(context.Background(), items[0].ID, "## Florence\nThe **Medici** family.")).To(Succeed())
		Expect(driver.Close()).To(Succeed())
	})

	It("requires sign in", func() {
		Expect(run()).To(MatchError(workspace.ErrReported))
		Expect(ansi.Strip(out.String())).To(ContainSubstring("Sign in required"))
	})

	It("lists the user's researches newest first", func() {
		signIn(tmpDir)
		Expect(run("list")).To(Succeed())

		text := ansi.Strip(out.String())
		Expect(text).To(ContainSubstring(items[0].ID.String()))
		Expect(text).To(ContainSubstring("Climate Change (empty)"))
		Expect(text).NotTo(ContainSubstring("Blockchain"))
		Expect(bytes.Index(out.Bytes(), []byte("Climate"))).To(BeNumerically("<", bytes.Index(out.Bytes(), []byte("Renaissance"))))
	})

	It("lists by default", func() {
		signIn(tmpDir)
		Expect(run()).To(Succeed())
		Expect(ansi.Strip(out.String())).To(ContainSubstring("Renaissance Art"))
	})

	It("shows the stored markdown", func() {
		signIn(tmpDir)
		Expect(run("show", items[0].ID.String(), "--raw")).To(Succeed())
		Expect(out.String()).To(Equal("## Florence\nThe **Medici** family.\n"))
	})

	It("renders a past research", func() {
		signIn(tmpDir)
		Expect(run("show", items[0].ID.String())).To(Succeed())

		text := ansi.Strip(out.String())
		Expect(text).To(ContainSubstring("Florence"))
		Expect(text).To(ContainSubstring("Medici"))
	})

	It("rejects invalid and foreign ids", func() {
		signIn(tmpDir)
		Expect(run("show", "not-an-id")).To(MatchError(ContainSubstring("invalid history id")))
		Expect(run("show", items[2].ID.String())).To(MatchError(history.ErrNotFound))
		Expect(run("show", uuid.NewString())).To(MatchError(history.ErrNotFound))
	})

	It("clears the history and the last research", func() {
		signIn(tmpDir)
		Expect(dotdir.NewManager().SaveLastResearch(&dotdir.LastResearch{HistoryID: items[0].ID.String()}, tmpDir)).To(Succeed())

		Expect(run("clear")).To(Succeed())
		text := ansi.Strip(out.String())
		Expect(text).To(ContainSubstring("History Cleared"))
		Expect(text).To(ContainSubstring("Your research history has been cleared."))

		Expect(run("list")).To(Succeed())
		Expect(ansi.Strip(out.String())).To(ContainSubstring("No research yet"))

		last, err := dotdir.NewManager().LoadLastResearch(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(last).To(BeNil())
	})
})
