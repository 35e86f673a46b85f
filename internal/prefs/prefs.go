// Package prefs stores the device-local preferences: the display name and an
// optional override of the game master PIN.
package prefs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"chronik/internal/logger"
)

type Values struct {
	DisplayName string `yaml:"display_name"`
	GMPin       string `yaml:"gm_pin,omitempty"`
}

type Store struct {
	path string
	mu   sync.Mutex
	vals Values
}

// Open reads path. A missing file yields empty preferences.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("read prefs: %w", err)
	}
	if err := yaml.Unmarshal(data, &s.vals); err != nil {
		logger.Warn("prefs.decode_failed", "path", path, "err", err)
		s.vals = Values{}
	}
	return s, nil
}

func (s *Store) DisplayName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vals.DisplayName
}

// PIN returns the override PIN, or fallback when none is set.
func (s *Store) PIN(fallback string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.vals.GMPin == "" {
		return fallback
	}
	return s.vals.GMPin
}

func (s *Store) SetDisplayName(name string) error {
	return s.update(func(v *Values) { v.DisplayName = name })
}

func (s *Store) SetPIN(pin string) error {
	return s.update(func(v *Values) { v.GMPin = pin })
}

func (s *Store) update(fn func(*Values)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.vals
	fn(&next)
	data, err := yaml.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode prefs: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create prefs dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	s.vals = next
	return nil
}
