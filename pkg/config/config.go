package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// LLM providers understood by the intelligence assistant.
const (
	LLMProviderCortex    = "cortex"
	LLMProviderOpenAI    = "openai"
	LLMProviderAnthropic = "anthropic"
)

// DefaultConfigFile is read when present in the working directory.
const DefaultConfigFile = "config.yaml"

// Config holds all configuration for fraudwatch.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, API keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"0.0.0.0"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// ShutdownTimeoutSeconds bounds graceful HTTP shutdown.
	ShutdownTimeoutSeconds int `yaml:"shutdown_timeout_seconds" env:"SHUTDOWN_TIMEOUT_SECONDS" env-default:"15"`

	// Warehouse connection
	Snowflake SnowflakeConfig `yaml:"snowflake"`

	// Completion backend for the intelligence assistant
	LLM LLMConfig `yaml:"llm"`
}

// SnowflakeConfig identifies the warehouse session. When the platform mounts a
// session token at TokenPath the connection authenticates with OAuth against Host;
// otherwise User/Password are used.
type SnowflakeConfig struct {
	Account   string `yaml:"account" env:"SNOWFLAKE_ACCOUNT" env-default:"SFSENORTHAMERICA-LATAM_DEMO10"`
	Warehouse string `yaml:"warehouse" env:"SNOWFLAKE_WAREHOUSE" env-default:"VW_COCO"`
	Database  string `yaml:"database" env:"SNOWFLAKE_DATABASE" env-default:"MG_COCO"`
	Schema    string `yaml:"schema" env:"SNOWFLAKE_SCHEMA" env-default:"FRAUD_DETECTION"`
	Host      string `yaml:"host" env:"SNOWFLAKE_HOST" env-default:""`
	Role      string `yaml:"role" env:"SNOWFLAKE_ROLE" env-default:""`
	User      string `yaml:"user" env:"SNOWFLAKE_USER" env-default:"mgalvis"`
	Password  string `yaml:"-" env:"SNOWFLAKE_PASSWORD"` // Secret - not in YAML

	TokenPath string `yaml:"token_path" env:"SNOWFLAKE_TOKEN_PATH" env-default:"/snowflake/session/token"`

	LoginTimeoutSeconds int `yaml:"login_timeout_seconds" env:"SNOWFLAKE_LOGIN_TIMEOUT_SECONDS" env-default:"60"`
}

// LoginTimeout returns the configured login timeout as a duration.
func (c *SnowflakeConfig) LoginTimeout() time.Duration {
	return time.Duration(c.LoginTimeoutSeconds) * time.Second
}

// QualifiedSchema returns DATABASE.SCHEMA for use as a table prefix.
func (c *SnowflakeConfig) QualifiedSchema() string {
	return c.Database + "." + c.Schema
}

// LLMConfig selects the completion backend.
type LLMConfig struct {
	Provider  string `yaml:"provider" env:"LLM_PROVIDER" env-default:"cortex"`
	Model     string `yaml:"model" env:"LLM_MODEL" env-default:"llama3.1-70b"`
	BaseURL   string `yaml:"base_url" env:"LLM_BASE_URL" env-default:""`
	APIKey    string `yaml:"-" env:"LLM_API_KEY"` // Secret - not in YAML
	MaxTokens int    `yaml:"max_tokens" env:"LLM_MAX_TOKENS" env-default:"2048"`
}

// Load reads configuration from config.yaml (when present) with environment
// variable overrides. The version parameter is injected at build time.
func Load(version string) (*Config, error) {
	return LoadFile(DefaultConfigFile, version)
}

// LoadFile is Load with an explicit config path. A missing file is not an
// error: configuration then comes from the environment alone.
func LoadFile(path, version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.BindAddr + ":" + c.Port
}

// ShutdownTimeout returns the graceful shutdown window.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

func (c *Config) validate() error {
	if c.Snowflake.Account == "" {
		return fmt.Errorf("snowflake account is required")
	}
	if c.Snowflake.Database == "" || c.Snowflake.Schema == "" {
		return fmt.Errorf("snowflake database and schema are required")
	}

	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	switch c.LLM.Provider {
	case LLMProviderCortex:
	case LLMProviderOpenAI, LLMProviderAnthropic:
		// Self-hosted OpenAI-compatible endpoints may run without a key.
		if c.LLM.APIKey == "" && c.LLM.BaseURL == "" {
			return fmt.Errorf("LLM_API_KEY is required for provider %q", c.LLM.Provider)
		}
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm model is required")
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm max_tokens must be positive, got %d", c.LLM.MaxTokens)
	}

	return nil
}
