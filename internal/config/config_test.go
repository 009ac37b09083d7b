package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.DataFile != "library.db" {
		t.Fatalf("default data file: %q", cfg.DataFile)
	}
	if cfg.ExportDir != "exports" {
		t.Fatalf("default export dir: %q", cfg.ExportDir)
	}
}

func TestLoadEmptyPathKeepsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("got %+v", cfg)
	}
}

func TestLoadOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.toml")
	body := "data_file = \"/var/lib/library/data.db\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataFile != "/var/lib/library/data.db" {
		t.Fatalf("data file not overlaid: %q", cfg.DataFile)
	}
	// Keys absent from the file keep their defaults.
	if cfg.ExportDir != "exports" {
		t.Fatalf("export dir lost its default: %q", cfg.ExportDir)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("missing file should error")
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("data_file = [broken"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("invalid TOML should error")
	}
}
