package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Dir is the workspace directory holding config, logs and the history db.
const Dir = ".pulse"

// ErrMissingAPIKey is returned by Validate when no model key is configured.
var ErrMissingAPIKey = errors.New("model API key not configured (set GEMINI_API_KEY or API_KEY)")

// Config holds all pulse configuration.
type Config struct {
	Name string `yaml:"name"`
	// City the analyst and assistant reason about.
	City string `yaml:"city"`

	// Model configuration
	LLM LLMConfig `yaml:"llm"`

	// Search history storage
	History HistoryConfig `yaml:"history"`

	// Notification behaviour
	Toast ToastConfig `yaml:"toast"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig configures the model client.
type LLMConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	Timeout string `yaml:"timeout"`
}

// HistoryConfig configures the search history database.
type HistoryConfig struct {
	DatabasePath string `yaml:"database_path"` // relative paths resolve against the workspace
	ListLimit    int    `yaml:"list_limit"`
}

// ToastConfig configures notifications.
type ToastConfig struct {
	Limit       int    `yaml:"limit"`        // resident toasts
	Duration    string `yaml:"duration"`     // default auto-close
	RemoveDelay string `yaml:"remove_delay"` // exit delay between close and removal
	IDs         string `yaml:"ids"`          // counter, uuid
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name: "pulse",
		City: "Bengaluru, India",

		LLM: LLMConfig{
			Model:   "gemini-2.5-flash",
			Timeout: "90s",
		},

		History: HistoryConfig{
			DatabasePath: filepath.Join(Dir, "history.db"),
			ListLimit:    20,
		},

		Toast: ToastConfig{
			Limit:       3,
			Duration:    "5s",
			RemoveDelay: "200ms",
			IDs:         "counter",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultPath returns the config file location inside workspace.
func DefaultPath(workspace string) string {
	return filepath.Join(workspace, Dir, "config.yaml")
}

// Load loads configuration from a YAML file, then applies .env and
// environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// ValidToastIDs lists the supported toast id generators.
var ValidToastIDs = []string{"counter", "uuid"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("model name not configured")
	}
	if c.Toast.Limit < 1 {
		return fmt.Errorf("invalid toast limit: %d (must be at least 1)", c.Toast.Limit)
	}

	validIDs := false
	for _, ids := range ValidToastIDs {
		if c.Toast.IDs == ids {
			validIDs = true
			break
		}
	}
	if !validIDs {
		return fmt.Errorf("invalid toast ids: %s (valid: %v)", c.Toast.IDs, ValidToastIDs)
	}

	for name, value := range map[string]string{
		"llm.timeout":        c.LLM.Timeout,
		"toast.duration":     c.Toast.Duration,
		"toast.remove_delay": c.Toast.RemoveDelay,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, value, err)
		}
	}

	return nil
}

// DatabasePath resolves the history database path against workspace.
func (c *Config) DatabasePath(workspace string) string {
	if filepath.IsAbs(c.History.DatabasePath) {
		return c.History.DatabasePath
	}
	return filepath.Join(workspace, c.History.DatabasePath)
}

// GetLLMTimeout returns the model call timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	return parseDuration(c.LLM.Timeout, 90*time.Second)
}

// GetToastDuration returns the default toast duration.
func (c *Config) GetToastDuration() time.Duration {
	return parseDuration(c.Toast.Duration, 5*time.Second)
}

// GetToastRemoveDelay returns the toast exit delay.
func (c *Config) GetToastRemoveDelay() time.Duration {
	return parseDuration(c.Toast.RemoveDelay, 200*time.Millisecond)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}
