package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/zorro/takopi-docker/pkg/logging"
)

const (
	// FileName is the name of the state file inside the marker directory.
	FileName = "provision.json"
	// MaxRuns is the number of runs kept in the history.
	MaxRuns = 20
)

// ErrNoRecord is returned when no run has been recorded yet.
var ErrNoRecord = errors.New("no provisioning run recorded")

// Store manages the state file.
type Store struct {
	path string
	mu   sync.RWMutex

	// uid and gid own the state file when both are non-negative.
	uid, gid int
}

// NewStore creates a store for the state file at path.
func NewStore(path string) *Store {
	return &Store{path: path, uid: -1, gid: -1}
}

// SetOwner makes subsequent saves chown the state file to uid:gid.
func (s *Store) SetOwner(uid, gid int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uid, s.gid = uid, gid
}

// NewStoreInDir creates a store for dir/provision.json.
func NewStoreInDir(dir string) *Store {
	return NewStore(filepath.Join(dir, FileName))
}

// Path returns the state file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the state file. It returns ErrNoRecord when the file does not exist.
func (s *Store) Load() (*State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loadInternal()
}

func (s *Store) loadInternal() (*State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoRecord
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	migrate(&st)
	return &st, nil
}

func migrate(st *State) {
	if st.Version != Version {
		fileMajor, _ := parseVersion(st.Version)
		currentMajor, _ := parseVersion(Version)
		if fileMajor > currentMajor {
			log := logging.Logger("state")
			log.Warn().Str("file", st.Version).Str("supported", Version).Msg("state file is newer than supported")
		}
		st.Version = Version
	}
	if st.Runs == nil {
		st.Runs = []Run{}
	}
}

// parseVersion extracts major and minor version numbers.
// Returns (0, 0) for invalid versions.
func parseVersion(v string) (major, minor int) {
	if v == "" {
		return 0, 0
	}
	parts := strings.Split(v, ".")
	if len(parts) >= 1 {
		major, _ = strconv.Atoi(parts[0])
	}
	if len(parts) >= 2 {
		minor, _ = strconv.Atoi(parts[1])
	}
	return major, minor
}

// Save writes the state atomically.
func (s *Store) Save(st *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveInternal(st)
}

func (s *Store) saveInternal(st *State) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	if len(st.Runs) > MaxRuns {
		st.Runs = st.Runs[:MaxRuns]
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	// Write to temp file first
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if s.uid >= 0 && s.gid >= 0 {
		if err := os.Lchown(tmpPath, s.uid, s.gid); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to chown state file: %w", err)
		}
	}

	// Atomic rename
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save state file: %w", err)
	}
	return nil
}

// Record adds run to the history.
func (s *Store) Record(run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.loadInternal()
	if errors.Is(err, ErrNoRecord) {
		st = NewState()
	} else if err != nil {
		return err
	}

	st.Add(run)
	return s.saveInternal(st)
}

// Last returns the most recent run.
func (s *Store) Last() (*Run, error) {
	st, err := s.Load()
	if err != nil {
		return nil, err
	}
	run := st.Last()
	if run == nil {
		return nil, ErrNoRecord
	}
	return run, nil
}
