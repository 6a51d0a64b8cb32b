// Package storage defines the persistence backend shared by the CLI and the
// API server. One Driver serves both research history and subscriptions.
package storage

import (
	"github.com/papercomputeco/quire/pkg/history"
	"github.com/papercomputeco/quire/pkg/subscription"
)

// Driver is a storage backend.
type Driver interface {
	history.Store
	subscription.Store

	// Close closes the store and releases any resources.
	Close() error
}
