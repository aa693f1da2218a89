// Package config provides configuration loading and structs for the Shinsa tools.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug    bool           `yaml:"debug"`
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Sections SectionsConfig `yaml:"sections"`
	Mutation MutationConfig `yaml:"mutation"`
	Dataset  DatasetConfig  `yaml:"dataset"`
	Review   ReviewConfig   `yaml:"review"`
	Watch    WatchConfig    `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds the path for the evaluation results database.
type StorageConfig struct {
	ResultsPath string `yaml:"results_path"`
}

// SectionsConfig extends the built-in heading registry. Keys are section
// tags; values are extra heading patterns (plain heading text or regex
// fragments) recognized for that tag in addition to the defaults.
type SectionsConfig struct {
	Synonyms map[string][]string `yaml:"synonyms"`
}

// MutationConfig tunes the mutation engine heuristics.
type MutationConfig struct {
	// LookaheadChars bounds the forward newline snap for mutation offsets.
	LookaheadChars int `yaml:"lookahead_chars"`
	// InsertionDepth is the fractional depth into a section body at which
	// attack payloads are inserted.
	InsertionDepth float64 `yaml:"insertion_depth"`
	// MinResultLen is the degenerate-result threshold for deletes.
	MinResultLen int `yaml:"min_result_len"`
	// FallbackPositions overrides the per-tag fractional positions used
	// when a section cannot be located.
	FallbackPositions map[string]float64 `yaml:"fallback_positions"`
}

// DatasetConfig holds generation settings shared by the variant and attack
// dataset builders.
type DatasetConfig struct {
	SampleRatio float64  `yaml:"sample_ratio"`
	Seed        int64    `yaml:"seed"`
	Strict      *bool    `yaml:"strict"`
	MaxRetries  int      `yaml:"max_retries"`
	MinTextLen  int      `yaml:"min_text_len"`
	Variants    []string `yaml:"variants"`
}

// StrictOrDefault returns strict mode; defaults to true when unset.
func (d *DatasetConfig) StrictOrDefault() bool {
	if d.Strict != nil {
		return *d.Strict
	}
	return true
}

// ReviewConfig holds reviewer model client settings. The API key is read
// from the environment variable named by APIKeyEnv, never from the file.
type ReviewConfig struct {
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
	Workers   int    `yaml:"workers"`
}

// WatchConfig holds source dataset watch settings.
type WatchConfig struct {
	Files      []string `yaml:"files"`
	DebounceMS int      `yaml:"debounce_ms"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.ResultsPath = expandPath(cfg.Storage.ResultsPath, configDir)
	for i := range cfg.Watch.Files {
		cfg.Watch.Files[i] = expandPath(cfg.Watch.Files[i], configDir)
	}

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
