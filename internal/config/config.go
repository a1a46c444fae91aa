// Package config loads the engine's startup configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Config represents application configuration
type Config struct {
	Roots        []string `json:"roots"`                    // sandbox root directories
	LogLevel     string   `json:"log_level"`                // debug, info, warn, error, none
	LogPath      string   `json:"log_path,omitempty"`       // empty selects stderr
	MaxReadBytes int64    `json:"max_read_bytes,omitempty"` // 0 selects the built-in ceiling
}

func defaultConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		if appData := strings.TrimSpace(os.Getenv("APPDATA")); appData != "" {
			return filepath.Join(appData, "sandboxfs")
		}
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, "AppData", "Roaming", "sandboxfs")
	default:
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, ".config", "sandboxfs")
	}
}

// DefaultConfigPath returns the path Load falls back to when no explicit
// config file is given.
func DefaultConfigPath() string {
	return filepath.Join(defaultConfigDir(), "config.json")
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		LogLevel: "info",
	}
}

// Load reads configuration from path. A missing file is not an error: the
// defaults are returned so the process can run on flags alone.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
