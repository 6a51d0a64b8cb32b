// Package history keeps the per-user list of researched topics.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// MaxItems is how many entries a user keeps. Older entries are pruned on Add.
const MaxItems = 20

// ErrNotFound is returned when a history entry does not exist for the user.
var ErrNotFound = errors.New("history item not found")

// Item is one researched topic. Content is empty until the research
// stream has finished and been stored.
type Item struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	Topic     string    `json:"topic"`
	Content   string    `json:"content,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewItem builds an entry with a fresh id.
func NewItem(userID, topic string, now time.Time) *Item {
	return &Item{
		ID:        uuid.New(),
		UserID:    userID,
		Topic:     topic,
		CreatedAt: now.UTC(),
	}
}

// Store persists history entries.
type Store interface {
	// Add inserts the item and prunes the user's list to MaxItems.
	Add(ctx context.Context, item *Item) error

	// List returns the user's entries newest first.
	List(ctx context.Context, userID string) ([]*Item, error)

	// Get returns one entry, or ErrNotFound.
	Get(ctx context.Context, userID string, id uuid.UUID) (*Item, error)

	// SetContent stores the finished research text for an entry.
	SetContent(ctx context.Context, id uuid.UUID, content string) error

	// Clear removes every entry for the user.
	Clear(ctx context.Context, userID string) error
}
