// Package config provides the engine's externally-owned settings.
//
// Settings are loaded once and passed into a session as a value snapshot at
// open time; the engine never re-reads configuration mid-operation.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Settings holds the configuration the diff engine consumes.
type Settings struct {
	// DiffViewAutoFocus controls whether opening or updating the diff view
	// may take UI focus.
	DiffViewAutoFocus bool `toml:"diff_view_auto_focus"`

	// AutoCloseTabs closes tabs the session opened once it ends.
	AutoCloseTabs bool `toml:"auto_close_tabs"`

	// AutoApprovalEnabled applies edits without per-edit confirmation.
	AutoApprovalEnabled bool `toml:"auto_approval_enabled"`

	// AlwaysAllowWrite skips confirmation for write operations specifically.
	AlwaysAllowWrite bool `toml:"always_allow_write"`
}

// DefaultSettings returns the documented defaults.
func DefaultSettings() Settings {
	return Settings{
		DiffViewAutoFocus:   true,
		AutoCloseTabs:       false,
		AutoApprovalEnabled: false,
		AlwaysAllowWrite:    false,
	}
}

// AutoApproved returns true when edits apply without per-edit confirmation.
func (s Settings) AutoApproved() bool {
	return s.AutoApprovalEnabled || s.AlwaysAllowWrite
}

// Load reads settings from a TOML file, applying defaults for absent keys.
// A missing file is not an error; defaults are returned.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return Settings{}, fmt.Errorf("reading config file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse decodes TOML data over the defaults.
func Parse(data []byte) (Settings, error) {
	settings := DefaultSettings()
	if err := toml.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("parsing config: %w", err)
	}
	return settings, nil
}
