package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/crunchfoods/crunch-cli/internal/domain"
)

const (
	defaultDirName  = ".crunch"
	defaultFileName = ".crunch-state.json"
	envStatePath    = "CRUNCH_STATE_PATH"
)

var (
	// ErrStateNotFound is returned when no state file exists yet.
	ErrStateNotFound = errors.New("state file not found")
	// ErrInvalidState is returned when the state payload is malformed.
	ErrInvalidState = errors.New("state file is invalid")
)

// Store loads and writes the locally persisted app state.
type Store struct {
	path string
}

// NewStore creates a store using env overrides or defaults.
func NewStore() (*Store, error) {
	if path := os.Getenv(envStatePath); path != "" {
		return &Store{path: path}, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	return &Store{path: filepath.Join(home, defaultDirName, defaultFileName)}, nil
}

// Path returns the current state file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads and validates persisted state. A stored view that no longer
// names a known screen is dropped rather than rejected, the same way a
// stale value in a browser's local storage would be ignored.
func (s *Store) Load() (domain.State, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.State{}, ErrStateNotFound
		}
		return domain.State{}, fmt.Errorf("read state: %w", err)
	}

	var state domain.State
	if err := json.Unmarshal(payload, &state); err != nil {
		return domain.State{}, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if state.ActiveView != "" {
		if _, ok := domain.ParseView(string(state.ActiveView)); !ok {
			state.ActiveView = ""
		}
	}
	return state, nil
}

// Save writes a state payload.
func (s *Store) Save(state domain.State) error {
	if state.ActiveView != "" {
		if _, ok := domain.ParseView(string(state.ActiveView)); !ok {
			return fmt.Errorf("%w: unknown view %q", ErrInvalidState, state.ActiveView)
		}
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := os.WriteFile(s.path, payload, 0o600); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}
