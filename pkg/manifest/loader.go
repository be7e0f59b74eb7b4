package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zorro/takopi-docker/recipes"
)

// SupportedVersion is the manifest schema version this package reads.
const SupportedVersion = "1"

// ErrUnsupportedVersion is returned for manifests with an unknown schema version.
var ErrUnsupportedVersion = errors.New("unsupported manifest version")

// Parse decodes a manifest. Unknown fields are rejected so that typos in
// predicates or methods fail loudly instead of being ignored.
func Parse(data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse manifest: empty document")
		}
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	if m.Version != SupportedVersion {
		return nil, fmt.Errorf("%w: %q (want %q)", ErrUnsupportedVersion, m.Version, SupportedVersion)
	}

	return &m, nil
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Default returns the embedded Java image manifest.
func Default() (*Manifest, error) {
	return Parse(recipes.Java)
}

// LoadOrDefault loads path, or the embedded manifest when path is empty.
func LoadOrDefault(path string) (*Manifest, error) {
	if path == "" {
		return Default()
	}
	return Load(path)
}

// Marshal encodes the manifest as YAML.
func (m *Manifest) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return buf.Bytes(), nil
}
