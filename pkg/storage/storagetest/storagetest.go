// Package storagetest holds the Ginkgo specs every storage.Driver must pass.
package storagetest

import (
	"context"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/quire/pkg/history"
	"github.com/papercomputeco/quire/pkg/storage"
	"github.com/papercomputeco/quire/pkg/subscription"
)

// DescribeDriver registers the shared driver specs in the current
// container. open is called before each test and the driver is closed
// after it. Each test uses fresh user ids so drivers may share state.
func DescribeDriver(open func(ctx context.Context) storage.Driver) {
	var (
		ctx    context.Context
		driver storage.Driver
		userID string
		base   time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = open(ctx)
		DeferCleanup(driver.Close)
		userID = "user-" + uuid.NewString()
		base = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	})

	addAt := func(topic string, at time.Time) *history.Item {
		item := history.NewItem(userID, topic, at)
		Expect(driver.Add(ctx, item)).To(Succeed())
		return item
	}

	Describe("history", func() {
		It("stores and returns an item", func() {
			item := addAt("Quantum Computing", base)

			got, err := driver.Get(ctx, userID, item.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(item.ID))
			Expect(got.UserID).To(Equal(userID))
			Expect(got.Topic).To(Equal("Quantum Computing"))
			Expect(got.Content).To(BeEmpty())
			Expect(got.CreatedAt.Equal(base)).To(BeTrue())
		})

		It("lists newest first", func() {
			addAt("first", base)
			addAt("second", base.Add(time.Minute))
			addAt("third", base.Add(2*time.Minute))

			items, err := driver.List(ctx, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(3))
			Expect(items[0].Topic).To(Equal("third"))
			Expect(items[1].Topic).To(Equal("second"))
			Expect(items[2].Topic).To(Equal("first"))
		})

		It("keeps only the newest MaxItems entries", func() {
			var oldest *history.Item
			for i := range history.MaxItems + 5 {
				item := addAt("topic", base.Add(time.Duration(i)*time.Second))
				if i == 0 {
					oldest = item
				}
			}

			items, err := driver.List(ctx, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(history.MaxItems))
			Expect(items[0].CreatedAt.Equal(base.Add(time.Duration(history.MaxItems+4) * time.Second))).To(BeTrue())

			_, err = driver.Get(ctx, userID, oldest.ID)
			Expect(err).To(MatchError(history.ErrNotFound))
		})

		It("scopes entries to their user", func() {
			item := addAt("mine", base)

			other, err := driver.List(ctx, "someone-else-"+userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(other).To(BeEmpty())

			_, err = driver.Get(ctx, "someone-else-"+userID, item.ID)
			Expect(err).To(MatchError(history.ErrNotFound))
		})

		It("stores finished content", func() {
			item := addAt("Climate Change", base)
			Expect(driver.SetContent(ctx, item.ID, "## Overview\nWarming.\n")).To(Succeed())

			got, err := driver.Get(ctx, userID, item.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Content).To(Equal("## Overview\nWarming.\n"))
		})

		It("reports unknown ids on SetContent", func() {
			Expect(driver.SetContent(ctx, uuid.New(), "x")).To(MatchError(history.ErrNotFound))
		})

		It("clears only the user's entries", func() {
			addAt("a", base)
			addAt("b", base.Add(time.Second))

			otherItem := history.NewItem("other-"+userID, "keep", base)
			Expect(driver.Add(ctx, otherItem)).To(Succeed())

			Expect(driver.Clear(ctx, userID)).To(Succeed())

			items, err := driver.List(ctx, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(BeEmpty())

			kept, err := driver.List(ctx, "other-"+userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(kept).To(HaveLen(1))
		})

		It("rejects nil items", func() {
			Expect(driver.Add(ctx, nil)).To(HaveOccurred())
		})
	})

	Describe("subscriptions", func() {
		It("reports missing rows", func() {
			_, err := driver.GetSubscription(ctx, userID)
			Expect(err).To(MatchError(subscription.ErrNotFound))
		})

		It("stores and returns a subscription", func() {
			sub := subscription.NewFree(userID, base)
			Expect(driver.PutSubscription(ctx, sub)).To(Succeed())

			got, err := driver.GetSubscription(ctx, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(sub.ID))
			Expect(got.Plan).To(Equal(subscription.PlanFree))
			Expect(got.Status).To(Equal(subscription.StatusActive))
			Expect(got.MonthlyLimit).To(Equal(5))
			Expect(got.ResearchCount).To(BeZero())
			Expect(got.PeriodStart.Equal(subscription.MonthStart(base))).To(BeTrue())
		})

		It("replaces the row on a second put", func() {
			sub := subscription.NewFree(userID, base)
			Expect(driver.PutSubscription(ctx, sub)).To(Succeed())

			pro, _ := subscription.LookupPlan(subscription.PlanPro)
			sub.ApplyPlan(pro)
			sub.ResearchCount = 7
			Expect(driver.PutSubscription(ctx, sub)).To(Succeed())

			got, err := driver.GetSubscription(ctx, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Plan).To(Equal(subscription.PlanPro))
			Expect(got.MonthlyLimit).To(Equal(50))
			Expect(got.ResearchCount).To(Equal(7))
		})

		It("increments the research count", func() {
			Expect(driver.PutSubscription(ctx, subscription.NewFree(userID, base))).To(Succeed())
			Expect(driver.IncrementResearchCount(ctx, userID)).To(Succeed())
			Expect(driver.IncrementResearchCount(ctx, userID)).To(Succeed())

			got, err := driver.GetSubscription(ctx, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ResearchCount).To(Equal(2))
		})

		It("reports increments for unknown users", func() {
			Expect(driver.IncrementResearchCount(ctx, userID)).To(MatchError(subscription.ErrNotFound))
		})

		It("backs subscription.Ensure", func() {
			sub, err := subscription.Ensure(ctx, driver, userID, base)
			Expect(err).NotTo(HaveOccurred())
			Expect(sub.Plan).To(Equal(subscription.PlanFree))

			Expect(driver.IncrementResearchCount(ctx, userID)).To(Succeed())

			same, err := subscription.Ensure(ctx, driver, userID, base.Add(24*time.Hour))
			Expect(err).NotTo(HaveOccurred())
			Expect(same.ResearchCount).To(Equal(1))

			next, err := subscription.Ensure(ctx, driver, userID, base.AddDate(0, 1, 0))
			Expect(err).NotTo(HaveOccurred())
			Expect(next.ResearchCount).To(BeZero())

			stored, err := driver.GetSubscription(ctx, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.ResearchCount).To(BeZero())
		})
	})
}
