package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		CountryCode: "mx",
		TimeField:   "device_t",
		Concurrency: 4,
		LogDir:      "/home/user/.local/share/shakefetch/log",
		LogLevel:    "debug",
		MetricsAddr: "127.0.0.1:9091",
		Store: StoreConfig{
			Type:              "s3",
			Bucket:            "grillo-openeew",
			Region:            "us-east-1",
			RequestsPerSecond: 25,
		},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.CountryCode != original.CountryCode {
		t.Errorf("CountryCode = %q, want %q", got.CountryCode, original.CountryCode)
	}
	if got.TimeField != original.TimeField {
		t.Errorf("TimeField = %q, want %q", got.TimeField, original.TimeField)
	}
	if got.Concurrency != original.Concurrency {
		t.Errorf("Concurrency = %d, want %d", got.Concurrency, original.Concurrency)
	}
	if got.LogDir != original.LogDir {
		t.Errorf("LogDir = %q, want %q", got.LogDir, original.LogDir)
	}
	if got.LogLevel != original.LogLevel {
		t.Errorf("LogLevel = %q, want %q", got.LogLevel, original.LogLevel)
	}
	if got.MetricsAddr != original.MetricsAddr {
		t.Errorf("MetricsAddr = %q, want %q", got.MetricsAddr, original.MetricsAddr)
	}
	if got.Store.Type != "s3" {
		t.Errorf("Store.Type = %q, want %q", got.Store.Type, "s3")
	}
	if got.Store.Bucket != original.Store.Bucket {
		t.Errorf("Store.Bucket = %q, want %q", got.Store.Bucket, original.Store.Bucket)
	}
	if got.Store.RequestsPerSecond != original.Store.RequestsPerSecond {
		t.Errorf("Store.RequestsPerSecond = %v, want %v", got.Store.RequestsPerSecond, original.Store.RequestsPerSecond)
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("mx", "/data/shakefetch")

	if cfg.CountryCode != "mx" {
		t.Errorf("CountryCode = %q, want %q", cfg.CountryCode, "mx")
	}
	if cfg.TimeField != "cloud_t" {
		t.Errorf("TimeField = %q, want %q", cfg.TimeField, "cloud_t")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.LogDir != "/data/shakefetch/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/shakefetch/log")
	}
	if cfg.Store.Bucket != DefaultBucket {
		t.Errorf("Store.Bucket = %q, want %q", cfg.Store.Bucket, DefaultBucket)
	}
	if cfg.Store.Region != DefaultRegion {
		t.Errorf("Store.Region = %q, want %q", cfg.Store.Region, DefaultRegion)
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "shakefetch.toml")
		cfg := NewConfig("mx", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "shakefetch.toml")
		cfg := NewConfig("mx", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		err := Init(path, cfg)
		if err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestLoad(t *testing.T) {
	t.Run("applies environment overrides", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "shakefetch.toml")
		cfg := NewConfig("mx", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		t.Setenv("SHAKEFETCH_COUNTRY_CODE", "cl")
		t.Setenv("SHAKEFETCH_BUCKET", "other-bucket")

		got, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got.CountryCode != "cl" {
			t.Errorf("CountryCode = %q, want %q", got.CountryCode, "cl")
		}
		if got.Store.Bucket != "other-bucket" {
			t.Errorf("Store.Bucket = %q, want %q", got.Store.Bucket, "other-bucket")
		}
		// File values without overrides survive.
		if got.Store.Region != DefaultRegion {
			t.Errorf("Store.Region = %q, want %q", got.Store.Region, DefaultRegion)
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := Load("/nonexistent/path/shakefetch.toml")
		if err == nil {
			t.Fatal("Load() expected error for missing file")
		}
	})

	t.Run("rejects missing country code", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "shakefetch.toml")
		cfg := NewConfig("", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := Load(path); err == nil {
			t.Fatal("Load() expected error for missing country code")
		}
	})
}
