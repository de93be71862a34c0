package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// envOverrides lists the environment variables that override file settings.
type envOverrides struct {
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	APIKey       string `env:"API_KEY"`
	Model        string `env:"PULSE_MODEL"`
	DatabasePath string `env:"PULSE_DB"`
	LogLevel     string `env:"PULSE_LOG_LEVEL"`
	City         string `env:"PULSE_CITY"`
}

// LoadDotEnv loads the given .env files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) {
	for _, path := range paths {
		// The file might not exist and that's ok.
		_ = godotenv.Load(path)
	}
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	vars, err := env.ParseAs[envOverrides]()
	if err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}

	// GEMINI_API_KEY wins over the generic API_KEY
	switch {
	case vars.GeminiAPIKey != "":
		c.LLM.APIKey = vars.GeminiAPIKey
	case vars.APIKey != "":
		c.LLM.APIKey = vars.APIKey
	}

	if vars.Model != "" {
		c.LLM.Model = vars.Model
	}
	if vars.DatabasePath != "" {
		c.History.DatabasePath = vars.DatabasePath
	}
	if vars.LogLevel != "" {
		c.Logging.Level = vars.LogLevel
	}
	if vars.City != "" {
		c.City = vars.City
	}
	return nil
}
