package exportcmder_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	exportcmder "github.com/papercomputeco/quire/cmd/quire/export"
	"github.com/papercomputeco/quire/pkg/auth"
	"github.com/papercomputeco/quire/pkg/credentials"
	"github.com/papercomputeco/quire/pkg/dotdir"
	"github.com/papercomputeco/quire/pkg/history"
	"github.com/papercomputeco/quire/pkg/storage/sqlite"
)

var _ = Describe("Export command", func() {
	var (
		tmpDir string
		outDir string
		out    *bytes.Buffer
		item   *history.Item
	)

	run := func(args ...string) error {
		cmd := exportcmder.NewExportCmd()
		cmd.PersistentFlags().String("config-dir", "", "")
		cmd.PersistentFlags().Bool("debug", false, "")
		out = &bytes.Buffer{}
		cmd.SetOut(out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(append(args, "--config-dir", tmpDir, "--out", outDir))
		return cmd.Execute()
	}

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		outDir = filepath.Join(tmpDir, "exports")

		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "user-1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}).SignedString([]byte("backend-secret"))
		Expect(err).NotTo(HaveOccurred())
		mgr, err := credentials.NewManager(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(mgr.SetSession(token, "")).To(Succeed())

		driver, err := sqlite.NewSQLiteDriver(context.Background(), filepath.Join(tmpDir, "quire.db"))
		Expect(err).NotTo(HaveOccurred())
		item = history.NewItem("user-1", "Space Exploration", time.Now())
		Expect(driver.Add(context.Background(), item)).To(Succeed())
		Expect(driver.SetContent(context.Background(), item.ID, "## Missions\n- **Apollo** 11\n")).To(Succeed())
		Expect(driver.Close()).To(Succeed())
	})

	It("exports an entry as markdown by default", func() {
		Expect(run(item.ID.String())).To(Succeed())
		Expect(ansi.Strip(out.String())).To(ContainSubstring("space-exploration.md"))

		data, err := os.ReadFile(filepath.Join(outDir, "space-exploration.md"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring("# Space Exploration"))
		Expect(string(data)).To(ContainSubstring("## Missions"))
	})

	It("exports html and text", func() {
		Expect(run(item.ID.String(), "--format", "html")).To(Succeed())
		page, err := os.ReadFile(filepath.Join(outDir, "space-exploration.html"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(page)).To(ContainSubstring("<strong>Apollo</strong>"))

		Expect(run(item.ID.String(), "--format", "txt")).To(Succeed())
		_, err = os.Stat(filepath.Join(outDir, "space-exploration.txt"))
		Expect(err).NotTo(HaveOccurred())
	})

	It("falls back to the last research", func() {
		Expect(run()).To(MatchError(exportcmder.ErrNothingToExport))

		Expect(dotdir.NewManager().SaveLastResearch(&dotdir.LastResearch{
			HistoryID: item.ID.String(),
			Topic:     item.Topic,
		}, tmpDir)).To(Succeed())

		Expect(run()).To(Succeed())
		_, err := os.Stat(filepath.Join(outDir, "space-exploration.md"))
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects unknown formats", func() {
		Expect(run(item.ID.String(), "--format", "pdf")).To(MatchError(ContainSubstring("unsupported export format")))
	})
})
