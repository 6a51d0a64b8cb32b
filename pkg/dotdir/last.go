package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	lastFile = "last.json"
)

// LastResearch points at the most recent research run from this directory.
type LastResearch struct {
	// HistoryID is the id of the history item holding the result.
	HistoryID string `json:"history_id"`

	// Topic is the researched topic.
	Topic string `json:"topic"`

	// CompletedAt is when the stream ended.
	CompletedAt time.Time `json:"completed_at"`
}

// LoadLastResearch loads the state from a target .quire/last.json.
// Returns nil, nil if no research has been recorded.
func (m *Manager) LoadLastResearch(overrideDir string) (*LastResearch, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, lastFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading last research: %w", err)
	}

	state := &LastResearch{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("parsing last research: %w", err)
	}

	return state, nil
}

// SaveLastResearch persists the state to a target .quire/last.json.
func (m *Manager) SaveLastResearch(state *LastResearch, overrideDir string) error {
	if state == nil {
		return errors.New("cannot save nil last research")
	}

	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling last research: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, lastFile), data, 0o600); err != nil {
		return fmt.Errorf("writing last research: %w", err)
	}

	return nil
}

// ClearLastResearch removes the state file.
// Returns nil if the file doesn't exist (already cleared).
func (m *Manager) ClearLastResearch(overrideDir string) error {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(dir, lastFile)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("removing last research: %w", err)
	}

	return nil
}
