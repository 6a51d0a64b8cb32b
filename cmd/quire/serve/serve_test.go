package servecmder

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/quire/pkg/config"
	"github.com/papercomputeco/quire/pkg/eventstream/kafka"
	"github.com/papercomputeco/quire/pkg/eventstream/nop"
	"github.com/papercomputeco/quire/pkg/logger"
)

var _ = Describe("serve", func() {
	Describe("newPublisher", func() {
		It("uses the no-op publisher without brokers", func() {
			publisher, err := newPublisher(config.EventsConfig{Brokers: " , "}, logger.Nop())
			Expect(err).NotTo(HaveOccurred())
			Expect(publisher).To(BeAssignableToTypeOf(&nop.Publisher{}))
		})

		It("uses kafka when brokers are set", func() {
			publisher, err := newPublisher(config.EventsConfig{Brokers: "localhost:9092", Topic: "research.events"}, logger.Nop())
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(publisher.Close)

			kp, ok := publisher.(*kafka.Publisher)
			Expect(ok).To(BeTrue())
			Expect(kp.Topic()).To(Equal("research.events"))
		})
	})

	Describe("openLogFile", func() {
		It("creates missing directories and appends", func() {
			path := filepath.Join(GinkgoT().TempDir(), "logs", "quire.log")

			f, err := openLogFile(path)
			Expect(err).NotTo(HaveOccurred())
			_, err = f.WriteString("first\n")
			Expect(err).NotTo(HaveOccurred())
			Expect(f.Close()).To(Succeed())

			f, err = openLogFile(path)
			Expect(err).NotTo(HaveOccurred())
			_, err = f.WriteString("second\n")
			Expect(err).NotTo(HaveOccurred())
			Expect(f.Close()).To(Succeed())

			data, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("first\nsecond\n"))
		})

		It("rejects an empty path", func() {
			_, err := openLogFile("")
			Expect(err).To(HaveOccurred())
		})
	})

	It("registers its flags", func() {
		cmd := NewServeCmd()
		for _, name := range []string{"api-listen", "sqlite", "postgres", "kafka-brokers", "kafka-topic", "log-file", "workers", "no-mcp"} {
			Expect(cmd.Flags().Lookup(name)).NotTo(BeNil(), name)
		}
	})
})
