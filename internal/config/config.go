// Package config loads runtime settings for the library manager,
// applying defaults first and then an optional TOML file.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config holds the file locations the manager works with.
type Config struct {
	// DataFile is the SQLite snapshot holding the whole dataset.
	DataFile string `toml:"data_file"`
	// ExportDir receives the CSV export files.
	ExportDir string `toml:"export_dir"`
}

// Default returns the out-of-the-box settings: everything lives next
// to the working directory.
func Default() Config {
	return Config{
		DataFile:  "library.db",
		ExportDir: "exports",
	}
}

// Load returns defaults overlaid with the TOML file at path. An empty
// path skips the overlay; a named file that cannot be read or parsed
// is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}
