package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables read by Load. They override the config file and are
// overridden by flags.
const (
	EnvLibrary  = "BRICKYARD_LIBRARY"
	EnvModels   = "BRICKYARD_MODELS"
	EnvCache    = "BRICKYARD_CACHE"
	EnvLogLevel = "BRICKYARD_LOG_LEVEL"
)

const fileName = "config.yaml"

// Load builds the configuration from, in increasing priority: defaults, the
// config file, the environment and flags. Relative paths in the file are
// taken relative to the file's directory.
func Load() (*Config, error) {
	cfg := Default()

	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}
	if configPath != "" {
		prev := *cfg
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
		cfg.resolvePaths(filepath.Dir(configPath), &prev)
	}

	applyEnv(cfg, os.LookupEnv)
	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile returns the first existing config in the working directory
// or ConfigDir.
func findConfigFile() string {
	for _, dir := range []string{".", ConfigDir()} {
		path := filepath.Join(dir, fileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "Brickyard")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Brickyard")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "brickyard")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "brickyard")
	}
}

// loadFromFile merges a YAML file over cfg. Keys absent from the file keep
// their current values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnv applies environment overrides read through lookup.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvLibrary); ok && v != "" {
		cfg.Library.Path = expandHome(v)
	}
	if v, ok := lookup(EnvModels); ok && v != "" {
		cfg.Library.ModelsPath = expandHome(v)
	}
	if v, ok := lookup(EnvCache); ok {
		if v == "" || v == "off" {
			cfg.Cache.Enabled = false
		} else {
			cfg.Cache.Enabled = true
			cfg.Cache.MeshDir = expandHome(v)
		}
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.Logging.Level = v
	}
}

// resolvePaths expands "~" and anchors relative paths at base for every path
// that differs from prev, the values before the file was read.
func (c *Config) resolvePaths(base string, prev *Config) {
	fields := []struct {
		path *string
		old  string
	}{
		{&c.Library.Path, prev.Library.Path},
		{&c.Library.ModelsPath, prev.Library.ModelsPath},
		{&c.Library.ColorConfig, prev.Library.ColorConfig},
		{&c.Cache.MeshDir, prev.Cache.MeshDir},
		{&c.Logging.LogFile, prev.Logging.LogFile},
	}
	for _, f := range fields {
		if *f.path != f.old {
			*f.path = resolvePath(base, *f.path)
		}
	}
}

func resolvePath(base, path string) string {
	if path == "" {
		return ""
	}
	path = expandHome(path)
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
