// Package config handles brickyard configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
)

// ErrInvalid is returned by Validate for out-of-range settings.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all importer settings.
type Config struct {
	Library LibraryConfig `yaml:"library"`
	Import  ImportConfig  `yaml:"import"`
	Cache   CacheConfig   `yaml:"cache"`
	Preview PreviewConfig `yaml:"preview"`
	Logging LoggingConfig `yaml:"logging"`
}

// LibraryConfig holds where model text comes from.
type LibraryConfig struct {
	Path        string `yaml:"path"`         // LDraw library directory or complete.zip
	ModelsPath  string `yaml:"models_path"`  // directory scanned for .ldr/.mpd/.dat models
	ColorConfig string `yaml:"color_config"` // LDConfig.ldr override; empty uses the library's
}

// ImportConfig holds composition settings.
type ImportConfig struct {
	Scale      float64 `yaml:"scale"`       // uniform scale applied at the model root
	WeldDigits int     `yaml:"weld_digits"` // decimal digits compared when welding
	MaxDepth   int     `yaml:"max_depth"`   // reference nesting limit
	Workers    int     `yaml:"workers"`     // batch import concurrency
}

// CacheConfig holds the persistent part mesh store settings.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	MeshDir string `yaml:"mesh_dir"`
}

// PreviewConfig holds still preview settings.
type PreviewConfig struct {
	Size        int  `yaml:"size"`
	Supersample int  `yaml:"supersample"`
	Edges       bool `yaml:"edges"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Library: LibraryConfig{
			Path: "ldraw",
		},
		Import: ImportConfig{
			Scale:      1,
			WeldDigits: 4,
			MaxDepth:   64,
			Workers:    runtime.NumCPU(),
		},
		Cache: CacheConfig{
			Enabled: true,
			MeshDir: filepath.Join(ConfigDir(), "meshes"),
		},
		Preview: PreviewConfig{
			Size:        512,
			Supersample: 2,
			Edges:       true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks that numeric settings are usable.
func (c *Config) Validate() error {
	switch {
	case c.Import.Scale <= 0:
		return fmt.Errorf("%w: import.scale must be positive, got %v", ErrInvalid, c.Import.Scale)
	case c.Import.WeldDigits < 0 || c.Import.WeldDigits > 9:
		return fmt.Errorf("%w: import.weld_digits must be in [0,9], got %d", ErrInvalid, c.Import.WeldDigits)
	case c.Import.MaxDepth <= 0:
		return fmt.Errorf("%w: import.max_depth must be positive, got %d", ErrInvalid, c.Import.MaxDepth)
	case c.Import.Workers <= 0:
		return fmt.Errorf("%w: import.workers must be positive, got %d", ErrInvalid, c.Import.Workers)
	case c.Preview.Size <= 0:
		return fmt.Errorf("%w: preview.size must be positive, got %d", ErrInvalid, c.Preview.Size)
	}
	return nil
}
