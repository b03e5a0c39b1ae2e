package config

import (
	"fmt"
	"strings"

	pkgconfig "github.com/utafrali/StorefrontGo/pkg/config"
)

// Config holds all configuration for the storefront client.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Backend REST API base URL.
	APIBaseURL string `env:"STOREFRONT_API_URL" envDefault:"http://localhost:8082/api/v1"`

	// Session store file (flat string key-value store).
	SessionFile string `env:"STOREFRONT_SESSION_FILE" envDefault:".storefront/session.json"`

	// HTTP client.
	HTTPTimeoutSeconds int `env:"STOREFRONT_HTTP_TIMEOUT_SECONDS" envDefault:"15"`
	HTTPMaxRetries     int `env:"STOREFRONT_HTTP_MAX_RETRIES" envDefault:"3"`

	// Circuit breaker.
	CBMaxRequests  uint32  `env:"STOREFRONT_CB_MAX_REQUESTS" envDefault:"1"`
	CBIntervalSecs int     `env:"STOREFRONT_CB_INTERVAL_SECONDS" envDefault:"60"`
	CBTimeoutSecs  int     `env:"STOREFRONT_CB_TIMEOUT_SECONDS" envDefault:"30"`
	CBFailureRatio float64 `env:"STOREFRONT_CB_FAILURE_RATIO" envDefault:"0.5"`
	CBMinRequests  uint32  `env:"STOREFRONT_CB_MIN_REQUESTS" envDefault:"5"`

	// Search debounce quiet period.
	SearchDebounceMs int `env:"STOREFRONT_SEARCH_DEBOUNCE_MS" envDefault:"500"`

	// OpenTelemetry.
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads storefront configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	return cfg, nil
}

// Validate checks configuration invariants. pkg/config runs it after parsing.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
		return fmt.Errorf("invalid API base URL: %q", c.APIBaseURL)
	}
	if c.HTTPTimeoutSeconds < 1 {
		return fmt.Errorf("invalid HTTP timeout: %d", c.HTTPTimeoutSeconds)
	}
	if c.SearchDebounceMs < 0 {
		return fmt.Errorf("invalid search debounce: %d", c.SearchDebounceMs)
	}
	return nil
}

// MockAPIConfig holds configuration for the fixture backend.
type MockAPIConfig struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	HTTPPort int `env:"MOCKAPI_HTTP_PORT" envDefault:"8082"`

	// JWT signing secret and token lifetime for minted bearer tokens.
	JWTSecret       string `env:"MOCKAPI_JWT_SECRET" envDefault:"dev-secret-do-not-use-in-prod"`
	TokenExpiryHrs  int    `env:"MOCKAPI_TOKEN_EXPIRY_HOURS" envDefault:"6"`
	StartingBalance int    `env:"MOCKAPI_STARTING_BALANCE" envDefault:"500"`
}

// Validate checks fixture backend invariants. pkg/config runs it after parsing.
func (c *MockAPIConfig) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT secret must not be empty")
	}
	return nil
}

// LoadMockAPI reads fixture backend configuration from environment variables.
func LoadMockAPI() (*MockAPIConfig, error) {
	cfg := &MockAPIConfig{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load mockapi config: %w", err)
	}
	return cfg, nil
}
