// Package config loads the application configuration from a YAML file
// merged with environment variables. Environment variables take
// precedence over config file values, which take precedence over
// defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	// DBPath is the SQLite database file location
	DBPath string `yaml:"dbPath"`

	// HTTPAddr is the REST API listen address
	HTTPAddr string `yaml:"httpAddr"`

	// CORSOrigins lists allowed browser origins for the REST API
	CORSOrigins []string `yaml:"corsOrigins,omitempty"`

	// GitHub configures the context seeding integration
	GitHub GitHubConfig `yaml:"github,omitempty"`

	// LLM configures the summarization provider chain
	LLM LLMConfig `yaml:"llm,omitempty"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"logLevel,omitempty"`
}

// GitHubConfig contains GitHub API credentials for context seeding.
type GitHubConfig struct {
	Token    string `yaml:"token,omitempty"`
	Username string `yaml:"username,omitempty"`
}

// LLMConfig contains summarization provider settings.
type LLMConfig struct {
	Provider     string `yaml:"provider,omitempty"` // gemini or openai; empty = auto-detect
	GeminiAPIKey string `yaml:"geminiApiKey,omitempty"`
	OpenAIAPIKey string `yaml:"openaiApiKey,omitempty"`
}

// Default returns the configuration defaults.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		DBPath:      filepath.Join(homeDir, ".memoria", "memoria.db"),
		HTTPAddr:    ":3000",
		CORSOrigins: []string{"http://localhost:3000"},
		LogLevel:    "info",
	}
}

// Load reads configPath (when it exists) over the defaults, then
// applies environment variable overrides, then validates.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if val := os.Getenv("MEMORIA_DB_PATH"); val != "" {
		cfg.DBPath = val
	}
	if val := os.Getenv("MEMORIA_HTTP_ADDR"); val != "" {
		cfg.HTTPAddr = val
	}
	if val := os.Getenv("MEMORIA_LLM_PROVIDER"); val != "" {
		cfg.LLM.Provider = val
	}
	if val := os.Getenv("GEMINI_API_KEY"); val != "" {
		cfg.LLM.GeminiAPIKey = val
	}
	if val := os.Getenv("OPENAI_API_KEY"); val != "" {
		cfg.LLM.OpenAIAPIKey = val
	}
	if val := os.Getenv("GITHUB_TOKEN"); val != "" {
		cfg.GitHub.Token = val
	}
	if val := os.Getenv("GITHUB_USERNAME"); val != "" {
		cfg.GitHub.Username = val
	}
}

// Validate checks field values that would otherwise fail at runtime.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("dbPath cannot be empty")
	}
	if c.HTTPAddr == "" {
		return fmt.Errorf("httpAddr cannot be empty")
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logLevel %q (want debug, info, warn, or error)", c.LogLevel)
	}
	switch c.LLM.Provider {
	case "", "gemini", "openai":
	default:
		return fmt.Errorf("invalid llm provider %q (want gemini or openai)", c.LLM.Provider)
	}
	return nil
}

// DefaultPath returns the default config file path.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".memoria", "config.yaml"), nil
}
