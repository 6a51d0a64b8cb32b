package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/quire/pkg/storage/inmemory"
	"github.com/papercomputeco/quire/pkg/storage/postgres"
	"github.com/papercomputeco/quire/pkg/storage/sqlite"
)

// Options selects a backend. PostgresDSN wins over SQLitePath; with
// neither set the store lives in memory.
type Options struct {
	SQLitePath  string
	PostgresDSN string
	Logger      *slog.Logger
}

// Open returns the driver selected by opts.
func Open(ctx context.Context, opts Options) (Driver, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	switch {
	case opts.PostgresDSN != "":
		driver, err := postgres.NewDriver(ctx, opts.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL store: %w", err)
		}
		logger.Debug("using PostgreSQL storage")
		return driver, nil

	case opts.SQLitePath != "":
		driver, err := sqlite.NewSQLiteDriver(ctx, opts.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite store: %w", err)
		}
		logger.Debug("using SQLite storage", "path", opts.SQLitePath)
		return driver, nil

	default:
		logger.Debug("using in-memory storage")
		return inmemory.NewDriver(), nil
	}
}
