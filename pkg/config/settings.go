package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Version is the current settings schema version.
const Version = "1.0"

// Settings holds tool settings. Empty fields fall back to the manifest and
// built-in defaults.
type Settings struct {
	Version     string            `yaml:"version"`
	Manifest    string            `yaml:"manifest,omitempty"`     // Manifest path; embedded recipe when empty
	MarkerDir   string            `yaml:"marker_dir,omitempty"`   // Overrides image.marker_dir
	StateFile   string            `yaml:"state_file,omitempty"`   // Default: <marker_dir>/provision.json
	MetricsFile string            `yaml:"metrics_file,omitempty"` // Prometheus textfile output
	LogLevel    string            `yaml:"log_level,omitempty"`
	Args        map[string]string `yaml:"args,omitempty"` // Build argument overrides
}

// NewSettings creates settings with defaults.
func NewSettings() *Settings {
	return &Settings{
		Version: Version,
		Args:    map[string]string{},
	}
}

// Load reads settings from path, or from the default location when path is
// empty. A missing file yields defaults.
func Load(path string) (*Settings, error) {
	if path == "" {
		p, err := GetConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get config path: %w", err)
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewSettings(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	s := NewSettings()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if s.Version == "" {
		s.Version = Version
	}
	if s.Args == nil {
		s.Args = map[string]string{}
	}
	return s, nil
}

// Save writes settings to path, or to the default location when path is empty.
func (s *Settings) Save(path string) error {
	if path == "" {
		p, err := GetConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
