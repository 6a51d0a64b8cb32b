package nop

import (
	"context"

	"github.com/papercomputeco/quire/pkg/eventstream"
)

// Publisher is a no-op eventstream publisher used for tests and disabled mode.
type Publisher struct{}

// NewPublisher creates a new no-op eventstream publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishResearch validates input and otherwise does nothing.
func (p *Publisher) PublishResearch(_ context.Context, event *eventstream.ResearchCompletedEvent) error {
	if event == nil {
		return eventstream.ErrNilResearchEvent
	}

	return nil
}

// Close is a no-op.
func (p *Publisher) Close() error {
	return nil
}
