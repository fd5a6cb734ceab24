package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths are the filesystem locations the application reads and writes.
type Paths struct {
	ConfigPath string // config file, default ~/.config/shakefetch.toml
	BaseDir    string // data root, default ~/.local/share/shakefetch
	LogDir     string // log output, always BaseDir/log
}

// DefaultPaths resolves the application's filesystem locations.
// SHAKEFETCH_CONFIG_PATH and SHAKEFETCH_HOME take precedence over the
// per-user defaults.
func DefaultPaths() (Paths, error) {
	var p Paths

	if p.ConfigPath = os.Getenv("SHAKEFETCH_CONFIG_PATH"); p.ConfigPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, fmt.Errorf("cannot determine home directory: %w", err)
		}
		p.ConfigPath = filepath.Join(home, ".config", "shakefetch.toml")
	}

	if p.BaseDir = os.Getenv("SHAKEFETCH_HOME"); p.BaseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, fmt.Errorf("cannot determine home directory: %w", err)
		}
		p.BaseDir = filepath.Join(home, ".local", "share", "shakefetch")
	}

	p.LogDir = filepath.Join(p.BaseDir, "log")
	return p, nil
}
