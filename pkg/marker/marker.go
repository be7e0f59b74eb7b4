// Package marker manages the per-agent "last updated" sentinel files under the
// image user's marker directory.
package marker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Prefix is the file name prefix of agent markers.
const Prefix = "last-update-"

// Store reads and writes markers in Dir.
type Store struct {
	Dir string

	// UID and GID own newly written markers when both are >= 0.
	UID int
	GID int
}

// NewStore returns a store that leaves ownership unchanged.
func NewStore(dir string) *Store {
	return &Store{Dir: dir, UID: -1, GID: -1}
}

// Path returns the marker file path for an agent.
func (s *Store) Path(agentID string) string {
	return filepath.Join(s.Dir, Prefix+agentID)
}

// Touch writes an RFC 3339 timestamp to the agent's marker and returns its path.
func (s *Store) Touch(agentID string, at time.Time) (string, error) {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create marker directory: %w", err)
	}
	if err := s.chown(s.Dir); err != nil {
		return "", err
	}

	path := s.Path(agentID)
	data := []byte(at.UTC().Format(time.RFC3339) + "\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write marker: %w", err)
	}
	if err := s.chown(path); err != nil {
		return "", err
	}
	return path, nil
}

// LastUpdated returns the marker timestamp. ok is false when no marker exists.
// Markers whose content is not a timestamp fall back to the file mtime.
func (s *Store) LastUpdated(agentID string) (t time.Time, ok bool, err error) {
	path := s.Path(agentID)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("failed to read marker: %w", err)
	}

	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(string(data))); err == nil {
		return t, true, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to stat marker: %w", err)
	}
	return info.ModTime(), true, nil
}

// All returns every agent marker in the directory keyed by agent ID.
func (s *Store) All() (map[string]time.Time, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]time.Time{}, nil
		}
		return nil, fmt.Errorf("failed to read marker directory: %w", err)
	}

	out := make(map[string]time.Time)
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), Prefix) {
			continue
		}
		id := strings.TrimPrefix(e.Name(), Prefix)
		t, ok, err := s.LastUpdated(id)
		if err != nil {
			return nil, err
		}
		if ok {
			out[id] = t
		}
	}
	return out, nil
}

// Remove deletes an agent marker. Missing markers are not an error.
func (s *Store) Remove(agentID string) error {
	if err := os.Remove(s.Path(agentID)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove marker: %w", err)
	}
	return nil
}

func (s *Store) chown(path string) error {
	if s.UID < 0 || s.GID < 0 {
		return nil
	}
	if err := os.Lchown(path, s.UID, s.GID); err != nil {
		return fmt.Errorf("failed to chown %s: %w", path, err)
	}
	return nil
}
