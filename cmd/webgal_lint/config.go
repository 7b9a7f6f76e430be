package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// configCandidates are the config file names searched for, in order
var configCandidates = []string{
	".webgal_lint.yaml",
	".webgal_lint.yml",
	".webgal_lint.json",
}

// LintConfig holds the linter configuration
// All rules keep their default state unless listed
type LintConfig struct {
	// WarningsAsErrors treats all warnings as errors (exit code 1)
	WarningsAsErrors bool `yaml:"warnings_as_errors" json:"warnings_as_errors"`

	// MaxProblems caps the diagnostics reported per file (0 means default)
	MaxProblems int `yaml:"max_problems" json:"max_problems"`

	// Rules maps rule IDs to enabled/disabled (true/false)
	Rules map[string]bool `yaml:"rules" json:"rules"`
}

// DefaultLintConfig returns a config with no overrides
func DefaultLintConfig() *LintConfig {
	return &LintConfig{
		WarningsAsErrors: false,
		Rules:            make(map[string]bool),
	}
}

// LoadConfig loads configuration from a file
// Supports both YAML and JSON formats
func LoadConfig(path string) (*LintConfig, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultLintConfig()
	if filepath.Ext(path) == ".json" {
		err = json.Unmarshal(content, config)
	} else {
		err = yaml.Unmarshal(content, config)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	if config.Rules == nil {
		config.Rules = make(map[string]bool)
	}

	return config, nil
}

// FindConfigFile looks for a config file in dir, then in the home directory
func FindConfigFile(dir string) string {
	for _, name := range configCandidates {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		for _, name := range configCandidates {
			path := filepath.Join(home, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}

	return ""
}

// Disable turns the given rules off
func (c *LintConfig) Disable(ids ...string) {
	for _, id := range ids {
		c.Rules[id] = false
	}
}
