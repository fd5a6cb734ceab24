package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultPaths(t *testing.T) {
	t.Run("uses env vars when set", func(t *testing.T) {
		t.Setenv("SHAKEFETCH_CONFIG_PATH", "/custom/config.toml")
		t.Setenv("SHAKEFETCH_HOME", "/custom/shakefetch")

		paths, err := DefaultPaths()
		if err != nil {
			t.Fatalf("DefaultPaths() error = %v", err)
		}

		if paths.ConfigPath != "/custom/config.toml" {
			t.Errorf("ConfigPath = %q, want %q", paths.ConfigPath, "/custom/config.toml")
		}
		if paths.BaseDir != "/custom/shakefetch" {
			t.Errorf("BaseDir = %q, want %q", paths.BaseDir, "/custom/shakefetch")
		}
		if paths.LogDir != "/custom/shakefetch/log" {
			t.Errorf("LogDir = %q, want %q", paths.LogDir, "/custom/shakefetch/log")
		}
	})

	t.Run("falls back to home dir defaults", func(t *testing.T) {
		t.Setenv("SHAKEFETCH_CONFIG_PATH", "")
		t.Setenv("SHAKEFETCH_HOME", "")

		paths, err := DefaultPaths()
		if err != nil {
			t.Fatalf("DefaultPaths() error = %v", err)
		}

		homeDir, _ := os.UserHomeDir()

		wantConfig := filepath.Join(homeDir, ".config", "shakefetch.toml")
		if paths.ConfigPath != wantConfig {
			t.Errorf("ConfigPath = %q, want %q", paths.ConfigPath, wantConfig)
		}

		wantBase := filepath.Join(homeDir, ".local", "share", "shakefetch")
		if paths.BaseDir != wantBase {
			t.Errorf("BaseDir = %q, want %q", paths.BaseDir, wantBase)
		}

		if wantLog := filepath.Join(wantBase, "log"); paths.LogDir != wantLog {
			t.Errorf("LogDir = %q, want %q", paths.LogDir, wantLog)
		}
	})

	t.Run("log dir always follows the base dir", func(t *testing.T) {
		t.Setenv("SHAKEFETCH_CONFIG_PATH", "/custom/config.toml")
		t.Setenv("SHAKEFETCH_HOME", "/elsewhere")

		paths, err := DefaultPaths()
		if err != nil {
			t.Fatalf("DefaultPaths() error = %v", err)
		}
		if paths.LogDir != "/elsewhere/log" {
			t.Errorf("LogDir = %q, want %q", paths.LogDir, "/elsewhere/log")
		}
	})
}
