package dotdir_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/quire/pkg/dotdir"
)

var _ = Describe("dotdir.Manager last research", func() {
	var tmpDir string
	var m *dotdir.Manager

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "dotdir-last-test-*")
		Expect(err).NotTo(HaveOccurred())
		m = dotdir.NewManager()
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	It("returns nil when nothing was recorded", func() {
		state, err := m.LoadLastResearch(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(state).To(BeNil())
	})

	It("round-trips the state", func() {
		state := &dotdir.LastResearch{
			HistoryID:   "0b9c1f9e-4a43-4b8e-9d6c-7f3d6c1c1a11",
			Topic:       "solar sails",
			CompletedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		}
		Expect(m.SaveLastResearch(state, tmpDir)).To(Succeed())

		loaded, err := m.LoadLastResearch(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.HistoryID).To(Equal(state.HistoryID))
		Expect(loaded.Topic).To(Equal("solar sails"))
		Expect(loaded.CompletedAt.Equal(state.CompletedAt)).To(BeTrue())
	})

	It("returns an error for invalid JSON", func() {
		Expect(os.WriteFile(filepath.Join(tmpDir, "last.json"), []byte("nope"), 0o600)).To(Succeed())
		state, err := m.LoadLastResearch(tmpDir)
		Expect(err).To(HaveOccurred())
		Expect(state).To(BeNil())
	})

	It("refuses a nil state", func() {
		Expect(m.SaveLastResearch(nil, tmpDir)).To(HaveOccurred())
	})

	It("clears the state and tolerates a missing file", func() {
		Expect(m.SaveLastResearch(&dotdir.LastResearch{Topic: "x"}, tmpDir)).To(Succeed())
		Expect(m.ClearLastResearch(tmpDir)).To(Succeed())
		Expect(m.ClearLastResearch(tmpDir)).To(Succeed())

		state, err := m.LoadLastResearch(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(state).To(BeNil())
	})
})
