package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeResearchCompleted is emitted after a research stream ends and
	// its content has been stored.
	EventTypeResearchCompleted = "quire.research.completed"
)

// ResearchCompletedEvent is a transport-neutral event payload for a finished
// research request.
type ResearchCompletedEvent struct {
	SchemaVersion int        `json:"schema_version"`
	EventType     string     `json:"event_type"`
	EventID       string     `json:"event_id"`
	EmittedAt     time.Time  `json:"emitted_at"`
	UserID        string     `json:"user_id"`
	HistoryID     string     `json:"history_id"`
	Topic         string     `json:"topic"`
	Stream        StreamMeta `json:"stream"`
	SectionKinds  []string   `json:"section_kinds"`
	Error         string     `json:"error,omitempty"`
}

// StreamMeta captures what the decoder saw for the request.
type StreamMeta struct {
	Fragments  int   `json:"fragments"`
	Bytes      int64 `json:"bytes"`
	DurationMs int64 `json:"duration_ms"`
}

// NewResearchCompleted fills the envelope fields of a research event.
func NewResearchCompleted(userID, historyID, topic string, now time.Time) *ResearchCompletedEvent {
	return &ResearchCompletedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeResearchCompleted,
		EventID:       uuid.NewString(),
		EmittedAt:     now.UTC(),
		UserID:        userID,
		HistoryID:     historyID,
		Topic:         topic,
		SectionKinds:  []string{},
	}
}
