package skepesis

// Config holds the configuration for the Skepesis platform.
type Config struct {
	// Server configures the HTTP listener.
	Server ServerConfig `json:"server" yaml:"server"`
	// Database selects and configures the persistence backend.
	Database DatabaseConfig `json:"database" yaml:"database"`
	// Auth configures session tokens.
	Auth AuthConfig `json:"auth" yaml:"auth"`
	// Backend selects and configures the inference backend.
	Backend BackendConfig `json:"backend" yaml:"backend"`
	// Insight tunes the analysis engine.
	Insight InsightConfig `json:"insight" yaml:"insight"`
	// Trivia configures the question import source.
	Trivia TriviaConfig `json:"trivia" yaml:"trivia"`
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `json:"addr" yaml:"addr"`
	// CORSOrigins lists allowed browser origins. Empty allows none.
	CORSOrigins []string `json:"cors_origins,omitempty" yaml:"cors_origins,omitempty"`
	// RateLimitPerMinute caps generation requests per caller. Zero disables.
	RateLimitPerMinute int `json:"rate_limit_per_minute,omitempty" yaml:"rate_limit_per_minute,omitempty"`
}

// DatabaseDriver selects the persistence backend.
type DatabaseDriver string

// Supported database drivers.
const (
	DriverSQLite   DatabaseDriver = "sqlite"
	DriverPostgres DatabaseDriver = "postgres"
)

// DatabaseConfig selects and configures the persistence backend.
type DatabaseConfig struct {
	Driver DatabaseDriver `json:"driver" yaml:"driver"`
	// DSN is a file path for sqlite or a connection string for postgres.
	DSN string `json:"dsn" yaml:"dsn"`
}

// AuthConfig configures session tokens.
type AuthConfig struct {
	// TokenSecret signs session tokens. Required, minimum 16 characters.
	TokenSecret string `json:"token_secret" yaml:"token_secret"`
	// TokenTTLHours is the session lifetime. Zero uses the default.
	TokenTTLHours int `json:"token_ttl_hours,omitempty" yaml:"token_ttl_hours,omitempty"`
}

// BackendProvider selects the inference backend.
type BackendProvider string

// Supported inference providers.
const (
	ProviderOllama BackendProvider = "ollama"
	ProviderOpenAI BackendProvider = "openai"
)

// BackendConfig selects and configures the inference backend.
type BackendConfig struct {
	Provider BackendProvider `json:"provider" yaml:"provider"`
	// BaseURL overrides the provider endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	// Model is the model name passed to the provider.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`
	// APIKey authenticates hosted providers. Unused by ollama.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// InsightConfig tunes the analysis engine.
type InsightConfig struct {
	CacheSize              int `json:"cache_size,omitempty" yaml:"cache_size,omitempty"`
	CacheTTLSeconds        int `json:"cache_ttl_seconds,omitempty" yaml:"cache_ttl_seconds,omitempty"`
	MaxConcurrent          int `json:"max_concurrent,omitempty" yaml:"max_concurrent,omitempty"`
	QueueTimeoutSeconds    int `json:"queue_timeout_seconds,omitempty" yaml:"queue_timeout_seconds,omitempty"`
	BreakerThreshold       int `json:"breaker_threshold,omitempty" yaml:"breaker_threshold,omitempty"`
	BreakerCooldownSeconds int `json:"breaker_cooldown_seconds,omitempty" yaml:"breaker_cooldown_seconds,omitempty"`
}

// TriviaConfig configures the question import source.
type TriviaConfig struct {
	// BaseURL overrides the Open Trivia Database endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// DefaultConfig returns a runnable local-development configuration.
// The token secret is intentionally absent and must be supplied.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:               ":8080",
			RateLimitPerMinute: 30,
		},
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			DSN:    "skepesis.db",
		},
		Backend: BackendConfig{
			Provider: ProviderOllama,
			BaseURL:  "http://localhost:11434",
			Model:    "llama3.2:3b",
		},
	}
}
