// Package sqlitepath resolves the SQLite database used by local commands.
package sqlitepath

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/papercomputeco/quire/pkg/dotdir"
)

// DefaultName is the database file created in the .quire/ directory.
const DefaultName = "quire.db"

// ResolveSQLitePath returns override when set, then $QUIRE_SQLITE, then
// <config-dir>/quire.db. The config directory is created when missing.
func ResolveSQLitePath(override, configDir string) (string, error) {
	if override != "" {
		return override, nil
	}

	if envPath := strings.TrimSpace(os.Getenv("QUIRE_SQLITE")); envPath != "" {
		return envPath, nil
	}

	dir, err := dotdir.NewManager().Target(configDir)
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, DefaultName), nil
}
