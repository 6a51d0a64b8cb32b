package inmemory_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/quire/pkg/history"
	"github.com/papercomputeco/quire/pkg/storage"
	"github.com/papercomputeco/quire/pkg/storage/inmemory"
	"github.com/papercomputeco/quire/pkg/storage/storagetest"
)

var _ storage.Driver = (*inmemory.Driver)(nil)

var _ = Describe("Driver", func() {
	storagetest.DescribeDriver(func(context.Context) storage.Driver {
		return inmemory.NewDriver()
	})

	It("returns copies that callers may mutate", func() {
		ctx := context.Background()
		d := inmemory.NewDriver()
		item := history.NewItem("u", "topic", time.Now())
		Expect(d.Add(ctx, item)).To(Succeed())

		got, err := d.Get(ctx, "u", item.ID)
		Expect(err).NotTo(HaveOccurred())
		got.Topic = "changed"

		again, err := d.Get(ctx, "u", item.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(again.Topic).To(Equal("topic"))
	})
})
