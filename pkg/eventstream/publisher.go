package eventstream

import "context"

// Publisher publishes research events to an event stream backend.
type Publisher interface {
	PublishResearch(ctx context.Context, event *ResearchCompletedEvent) error
	Close() error
}
