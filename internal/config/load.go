package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
// It also returns the path of the file that was read, empty when none was found.
func Load(ov Overrides) (*Config, string, error) {
	cfg := Default()

	// Explicit path takes priority
	configPath := ov.ConfigPath
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, "", fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	ov.apply(cfg)
	cfg.normalize()

	return cfg, configPath, nil
}

// Reload reads path on top of defaults without CLI overrides.
// Used by the watcher to pick up edits to the running config.
func Reload(path string) (*Config, error) {
	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		return nil, fmt.Errorf("reloading config from %s: %w", path, err)
	}
	cfg.normalize()
	return cfg, nil
}

// normalize clamps values the renderer cannot use.
func (c *Config) normalize() {
	if c.Picking.Downsample < 1 {
		c.Picking.Downsample = 1
	}
	if c.Picking.Encoding != EncodingEmulated {
		c.Picking.Encoding = EncodingNative
	}
	if c.Shading.MaxColorComponent < 0.0001 {
		c.Shading.MaxColorComponent = 0.0001
	}
	if c.Measure.HitRadius <= 0 {
		c.Measure.HitRadius = 16
	}
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
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
		return filepath.Join(home, "Library", "Application Support", "LidarView")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "LidarView")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "lidarview")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "lidarview")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
