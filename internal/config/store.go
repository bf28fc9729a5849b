package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
)

type Store struct {
	mu       sync.RWMutex
	path     string
	settings *Settings
}

// NewStore opens the settings store at ~/.grokscout/settings.json, writing
// defaults on first run. No API key is ever defaulted; the user supplies it
// through the file or the environment.
func NewStore() (*Store, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home dir: %w", err)
	}
	return NewStoreAt(filepath.Join(homeDir, ".grokscout", "settings.json"))
}

// NewStoreAt opens the store at an explicit path.
func NewStoreAt(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config dir: %w", err)
	}

	defaults := defaultSettings()
	store := &Store{
		path:     path,
		settings: &defaults,
	}

	if err := store.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load settings: %w", err)
		}
		// If file doesn't exist, save defaults
		if err := store.Save(); err != nil {
			return nil, fmt.Errorf("failed to save default settings: %w", err)
		}
	}

	return store, nil
}

// Load reads settings from disk. Fields the file omits keep their defaults.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}

	settings := defaultSettings()
	if err := json.Unmarshal(data, &settings); err != nil {
		return fmt.Errorf("failed to parse settings.json: %w", err)
	}

	s.settings = &settings
	return nil
}

// Save writes settings to disk under a file lock, so concurrent host
// processes don't interleave partial writes.
func (s *Store) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := json.MarshalIndent(s.settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	lock := flock.New(s.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock settings file: %w", err)
	}
	defer lock.Unlock()

	return os.WriteFile(s.path, data, 0644)
}

func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.settings
}

func (s *Store) Update(fn func(*Settings)) error {
	s.mu.Lock()
	fn(s.settings)
	s.mu.Unlock()
	return s.Save()
}

// Effective returns the settings with environment overrides applied.
// The overrides never touch the stored copy.
func (s *Store) Effective() (Settings, error) {
	settings := s.Get()
	if err := applyEnv(&settings); err != nil {
		return settings, err
	}
	return settings, nil
}

func (s *Store) Path() string {
	return s.path
}
