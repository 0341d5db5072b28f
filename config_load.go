package skepesis

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadConfig reads and parses a config file from the given path.
// Supported formats: JSON (.json), YAML (.yaml, .yml). Fields not present
// in the file keep their DefaultConfig values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file extension %q: use .json, .yaml, or .yml", ext)
	}

	return &cfg, nil
}

// ValidateConfig validates a Config for correctness.
func ValidateConfig(cfg Config) error {
	switch cfg.Database.Driver {
	case DriverSQLite, DriverPostgres:
	case "":
		return fmt.Errorf("database driver is required")
	default:
		return fmt.Errorf("unknown database driver: %q", cfg.Database.Driver)
	}
	if cfg.Database.Driver == DriverPostgres && strings.TrimSpace(cfg.Database.DSN) == "" {
		return fmt.Errorf("postgres driver requires a dsn")
	}

	switch cfg.Backend.Provider {
	case ProviderOllama, ProviderOpenAI:
	case "":
		return fmt.Errorf("backend provider is required")
	default:
		return fmt.Errorf("unknown backend provider: %q", cfg.Backend.Provider)
	}
	if cfg.Backend.Provider == ProviderOpenAI && strings.TrimSpace(cfg.Backend.APIKey) == "" {
		return fmt.Errorf("openai provider requires an api_key")
	}

	if len(cfg.Auth.TokenSecret) > 0 && len(cfg.Auth.TokenSecret) < 16 {
		return fmt.Errorf("auth token_secret must be at least 16 characters")
	}

	if cfg.Server.RateLimitPerMinute < 0 {
		return fmt.Errorf("rate_limit_per_minute cannot be negative")
	}
	if cfg.Insight.MaxConcurrent < 0 {
		return fmt.Errorf("insight max_concurrent cannot be negative")
	}

	return nil
}

// ApplyEnvOverrides layers environment variables over a loaded config so
// deployments can keep secrets out of the config file.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SKEPESIS_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("SKEPESIS_DB_DRIVER"); v != "" {
		cfg.Database.Driver = DatabaseDriver(v)
	}
	if v := os.Getenv("SKEPESIS_DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("SKEPESIS_TOKEN_SECRET"); v != "" {
		cfg.Auth.TokenSecret = v
	}
	if v := os.Getenv("SKEPESIS_BACKEND_PROVIDER"); v != "" {
		cfg.Backend.Provider = BackendProvider(v)
	}
	if v := os.Getenv("SKEPESIS_BACKEND_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("SKEPESIS_BACKEND_MODEL"); v != "" {
		cfg.Backend.Model = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && cfg.Backend.APIKey == "" {
		cfg.Backend.APIKey = v
	}
}
