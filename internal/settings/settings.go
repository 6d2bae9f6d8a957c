// Package settings persists the operator's station toggles between runs.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings are the per-station toggles. Zero value is not the default set;
// use Default.
type Settings struct {
	// Turbo commits a scanned product immediately with quantity 1 and
	// price 0, skipping the prompt.
	Turbo bool `yaml:"turbo"`
	// Sound enables audible feedback on scan outcomes.
	Sound bool `yaml:"sound"`
	// IgnoreStock suppresses the low-stock warning on outbound adds.
	IgnoreStock bool `yaml:"ignore_stock"`
}

func Default() Settings {
	return Settings{Sound: true}
}

// Store reads and writes the settings file.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultStore places the settings file under the user config directory.
func DefaultStore(appName string) (*Store, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("resolving config directory: %w", err)
	}

	return NewStore(filepath.Join(dir, appName, "settings.yaml")), nil
}

// Load returns the persisted settings, or the defaults when no file exists
// yet.
func (s *Store) Load() (Settings, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}

		return Default(), fmt.Errorf("reading settings: %w", err)
	}

	out := Default()
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return Default(), fmt.Errorf("parsing settings: %w", err)
	}

	return out, nil
}

// Save writes the settings atomically (temp file, then rename).
func (s *Store) Save(settings Settings) error {
	raw, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing settings: %w", err)
	}

	return nil
}
