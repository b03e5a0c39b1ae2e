package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Validator is implemented by config structs that carry invariants the env
// tags cannot express (URL schemes, port ranges, cross-field rules). Load
// runs it after parsing so callers get a fully checked struct or an error.
type Validator interface {
	Validate() error
}

// Load parses environment variables into the provided struct and, when the
// struct implements Validator, verifies its invariants.
// The struct should use `env` tags to define mappings.
//
// Example:
//
//	type Config struct {
//	    APIBaseURL string `env:"STOREFRONT_API_URL" envDefault:"http://localhost:8082/api/v1"`
//	    LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if v, ok := cfg.(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("validate config: %w", err)
		}
	}
	return nil
}
