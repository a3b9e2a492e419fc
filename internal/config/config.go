// ABOUTME: Configuration loading and parsing for scry-gateway
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete scry-gateway configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Providers ProvidersConfig `yaml:"providers"`
	Router    RouterConfig    `yaml:"router"`
	Search    SearchConfig    `yaml:"search"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// StoreConfig selects and configures the session store backend
type StoreConfig struct {
	Backend string       `yaml:"backend"` // memory, redis, or sqlite
	Redis   RedisConfig  `yaml:"redis"`
	SQLite  SQLiteConfig `yaml:"sqlite"`
}

// RedisConfig holds Redis session store configuration
type RedisConfig struct {
	URL       string        `yaml:"url"`
	KeyPrefix string        `yaml:"key_prefix"`
	TTL       time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	TTLRaw string `yaml:"ttl"`
}

// SQLiteConfig holds SQLite session store configuration
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// ProvidersConfig holds per-provider client configuration
type ProvidersConfig struct {
	Gemini       GeminiConfig       `yaml:"gemini"`
	Groq         GroqConfig         `yaml:"groq"`
	Claude       ClaudeConfig       `yaml:"claude"`
	HuggingFace  HFConfig           `yaml:"huggingface"`
	Pollinations PollinationsConfig `yaml:"pollinations"`
}

// GeminiConfig holds Gemini provider configuration
type GeminiConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// GroqConfig holds Groq provider configuration
type GroqConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// ClaudeConfig holds Claude provider configuration
type ClaudeConfig struct {
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	MaxTokens int64  `yaml:"max_tokens"`
}

// HFConfig holds Hugging Face Inference API configuration
type HFConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// PollinationsConfig holds Pollinations text API configuration
type PollinationsConfig struct {
	Enabled bool   `yaml:"enabled"`
	TextURL string `yaml:"text_url"`
}

// RouterConfig holds model routing configuration. Rules may be given inline
// or loaded from a TOML rules file; inline rules win when both are set.
type RouterConfig struct {
	Default   string       `yaml:"default"`
	RulesPath string       `yaml:"rules_path"`
	Rules     []RuleConfig `yaml:"rules"`
}

// RuleConfig is a single inline routing rule
type RuleConfig struct {
	Trigger  string `yaml:"trigger"`
	Provider string `yaml:"provider"`
}

// SearchConfig holds search augmentation configuration
type SearchConfig struct {
	Enabled    bool          `yaml:"enabled"`
	MaxResults int           `yaml:"max_results"`
	Region     string        `yaml:"region"`
	SafeSearch bool          `yaml:"safe_search"`
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	TimeoutRaw string `yaml:"timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultPath resolves where the gateway looks for its configuration:
// the SCRY_CONFIG environment variable, then $XDG_CONFIG_HOME/scry/gateway.yaml,
// then ~/.config/scry/gateway.yaml.
func DefaultPath() string {
	if p := os.Getenv("SCRY_CONFIG"); p != "" {
		return p
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "scry", "gateway.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "gateway.yaml"
	}
	return filepath.Join(home, ".config", "scry", "gateway.yaml")
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Parse duration fields
	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}

	switch c.Store.Backend {
	case "", "memory":
		// memory needs nothing
	case "redis":
		if c.Store.Redis.URL == "" {
			return fmt.Errorf("store.redis.url is required when store.backend is redis")
		}
	case "sqlite":
		if c.Store.SQLite.Path == "" {
			return fmt.Errorf("store.sqlite.path is required when store.backend is sqlite")
		}
	default:
		return fmt.Errorf("store.backend must be memory, redis, or sqlite (got %q)", c.Store.Backend)
	}

	if c.Router.Default == "" {
		return fmt.Errorf("router.default is required")
	}
	for i, r := range c.Router.Rules {
		if r.Trigger == "" || r.Provider == "" {
			return fmt.Errorf("router.rules[%d]: trigger and provider are both required", i)
		}
	}

	if c.Search.Enabled && c.Search.MaxResults < 0 {
		return fmt.Errorf("search.max_results must not be negative")
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Store.Redis.TTLRaw != "" {
		cfg.Store.Redis.TTL, err = time.ParseDuration(cfg.Store.Redis.TTLRaw)
		if err != nil {
			return fmt.Errorf("parsing store.redis.ttl %q: %w", cfg.Store.Redis.TTLRaw, err)
		}
	}

	if cfg.Search.TimeoutRaw != "" {
		cfg.Search.Timeout, err = time.ParseDuration(cfg.Search.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing search.timeout %q: %w", cfg.Search.TimeoutRaw, err)
		}
	}

	return nil
}
