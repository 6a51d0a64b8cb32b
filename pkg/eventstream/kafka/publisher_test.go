package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/papercomputeco/quire/pkg/eventstream"
	"github.com/papercomputeco/quire/pkg/eventstream/kafka"
)

type fakeWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

var _ = Describe("Publisher", func() {
	var (
		writer *fakeWriter
		pub    *kafka.Publisher
		event  *eventstream.ResearchCompletedEvent
	)

	BeforeEach(func() {
		writer = &fakeWriter{}
		var err error
		pub, err = kafka.NewPublisher(kafka.Config{Writer: writer})
		Expect(err).NotTo(HaveOccurred())
		event = eventstream.NewResearchCompleted("user-1", "hist-1", "Space Exploration", time.Unix(1735689600, 0))
	})

	It("requires brokers when no writer is supplied", func() {
		_, err := kafka.NewPublisher(kafka.Config{})
		Expect(err).To(MatchError(kafka.ErrNoBrokers))
	})

	It("defaults the topic", func() {
		Expect(pub.Topic()).To(Equal(kafka.DefaultTopic))
	})

	It("writes a JSON message keyed by user id", func() {
		Expect(pub.PublishResearch(context.Background(), event)).To(Succeed())
		Expect(writer.msgs).To(HaveLen(1))

		msg := writer.msgs[0]
		Expect(string(msg.Key)).To(Equal("user-1"))

		var decoded eventstream.ResearchCompletedEvent
		Expect(json.Unmarshal(msg.Value, &decoded)).To(Succeed())
		Expect(decoded.Topic).To(Equal("Space Exploration"))
		Expect(decoded.EventID).To(Equal(event.EventID))
	})

	It("adds type and version headers", func() {
		msg, err := kafka.Message(event)
		Expect(err).NotTo(HaveOccurred())
		Expect(msg.Headers).To(ContainElement(kafkago.Header{Key: "event_type", Value: []byte(eventstream.EventTypeResearchCompleted)}))
		Expect(msg.Headers).To(ContainElement(kafkago.Header{Key: "schema_version", Value: []byte("1")}))
	})

	It("rejects nil events", func() {
		Expect(pub.PublishResearch(context.Background(), nil)).To(MatchError(eventstream.ErrNilResearchEvent))
	})

	It("wraps writer errors", func() {
		writer.err = errors.New("broker down")
		err := pub.PublishResearch(context.Background(), event)
		Expect(err).To(MatchError(ContainSubstring("broker down")))
		Expect(errors.Is(err, writer.err)).To(BeTrue())
	})

	It("closes the writer", func() {
		Expect(pub.Close()).To(Succeed())
		Expect(writer.closed).To(BeTrue())
	})

	It("parses broker lists", func() {
		Expect(kafka.ParseBrokers(" a:9092, ,b:9092 ")).To(Equal([]string{"a:9092", "b:9092"}))
		Expect(kafka.ParseBrokers("")).To(BeNil())
	})
})
