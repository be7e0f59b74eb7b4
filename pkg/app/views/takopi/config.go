package takopi

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/zorro/takopi-docker/pkg/app"
)

// Location of the takopi config relative to the user's home.
const (
	ConfigDirName  = ".takopi"
	ConfigFileName = "takopi.toml"
)

// ConfigPath returns the takopi config path under home.
func ConfigPath(home string) string {
	return filepath.Join(home, ConfigDirName, ConfigFileName)
}

// Config is a read-only summary of takopi.toml.
type Config struct {
	Path     string
	Exists   bool
	Raw      string
	Keys     []string // top-level scalar and array keys
	Sections []string // tables and arrays of tables, dotted, in file order
	Err      error    // read or parse error
}

// LoadConfig reads and inspects the config at path. A missing file is not
// an error; Exists is false.
func LoadConfig(path string) Config {
	cfg := Config{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			cfg.Err = fmt.Errorf("failed to read config: %w", err)
		}
		return cfg
	}
	cfg.Exists = true
	cfg.Raw = string(data)

	var doc map[string]interface{}
	md, err := toml.Decode(cfg.Raw, &doc)
	if err != nil {
		cfg.Err = fmt.Errorf("failed to parse config: %w", err)
		return cfg
	}

	for _, k := range md.Keys() {
		switch md.Type(k...) {
		case "Hash", "ArrayHash":
			cfg.Sections = append(cfg.Sections, k.String())
		default:
			if len(k) == 1 {
				cfg.Keys = append(cfg.Keys, k.String())
			}
		}
	}
	return cfg
}

// Exec tags used by this view.
const (
	tagWizard = "takopi:wizard"
	tagPing   = "takopi:ping"
)

// WizardCommand returns the interactive takopi setup.
func WizardCommand(home string) *exec.Cmd {
	cmd := app.Script("takopi wizard")
	cmd.Dir = home
	return cmd
}

// PingCommand returns the takopi connection test.
func PingCommand(home string) *exec.Cmd {
	cmd := app.Script("takopi ping")
	cmd.Dir = home
	return cmd
}
