// Package inmemory provides a map-backed storage driver.
package inmemory

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/papercomputeco/quire/pkg/history"
	"github.com/papercomputeco/quire/pkg/subscription"
)

// Driver implements storage.Driver in memory.
type Driver struct {
	mu sync.RWMutex

	// items holds every history entry keyed by id
	items map[uuid.UUID]*history.Item

	// subs holds subscriptions keyed by user id
	subs map[string]*subscription.Subscription
}

// NewDriver creates a new in-memory driver.
func NewDriver() *Driver {
	return &Driver{
		items: make(map[uuid.UUID]*history.Item),
		subs:  make(map[string]*subscription.Subscription),
	}
}

// Add stores a copy of item and prunes the user's oldest entries.
func (d *Driver) Add(_ context.Context, item *history.Item) error {
	if item == nil {
		return errors.New("cannot store nil history item")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	stored := *item
	d.items[item.ID] = &stored

	list := d.listLocked(item.UserID)
	for _, old := range list[min(len(list), history.MaxItems):] {
		delete(d.items, old.ID)
	}
	return nil
}

// List returns copies of the user's entries, newest first.
func (d *Driver) List(_ context.Context, userID string) ([]*history.Item, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	list := d.listLocked(userID)
	out := make([]*history.Item, len(list))
	for i, item := range list {
		c := *item
		out[i] = &c
	}
	return out, nil
}

func (d *Driver) listLocked(userID string) []*history.Item {
	var list []*history.Item
	for _, item := range d.items {
		if item.UserID == userID {
			list = append(list, item)
		}
	}
	slices.SortFunc(list, func(a, b *history.Item) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID.String(), a.ID.String())
	})
	return list
}

// Get returns one of the user's entries.
func (d *Driver) Get(_ context.Context, userID string, id uuid.UUID) (*history.Item, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	item, ok := d.items[id]
	if !ok || item.UserID != userID {
		return nil, history.ErrNotFound
	}
	c := *item
	return &c, nil
}

// SetContent stores the finished research text for an entry.
func (d *Driver) SetContent(_ context.Context, id uuid.UUID, content string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	item, ok := d.items[id]
	if !ok {
		return history.ErrNotFound
	}
	item.Content = content
	return nil
}

// Clear removes all of the user's entries.
func (d *Driver) Clear(_ context.Context, userID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for id, item := range d.items {
		if item.UserID == userID {
			delete(d.items, id)
		}
	}
	return nil
}

// GetSubscription returns a copy of the user's subscription.
func (d *Driver) GetSubscription(_ context.Context, userID string) (*subscription.Subscription, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	sub, ok := d.subs[userID]
	if !ok {
		return nil, subscription.ErrNotFound
	}
	c := *sub
	return &c, nil
}

// PutSubscription stores a copy of sub.
func (d *Driver) PutSubscription(_ context.Context, sub *subscription.Subscription) error {
	if sub == nil {
		return errors.New("cannot store nil subscription")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	c := *sub
	d.subs[sub.UserID] = &c
	return nil
}

// IncrementResearchCount adds one to the user's count.
func (d *Driver) IncrementResearchCount(_ context.Context, userID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	sub, ok := d.subs[userID]
	if !ok {
		return subscription.ErrNotFound
	}
	sub.ResearchCount++
	return nil
}

// Close is a no-op.
func (d *Driver) Close() error {
	return nil
}
