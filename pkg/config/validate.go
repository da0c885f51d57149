package config

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// minSecretLength is the shortest accepted signing secret outside
// development.
const minSecretLength = 32

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	switch c.Environment {
	case EnvDevelopment, EnvProduction, EnvTest:
		// valid
	default:
		errs = append(errs, fmt.Errorf("environment must be \"development\", \"production\" or \"test\", got %q", c.Environment))
	}

	// auth.jwt_secret is required.
	if c.Auth.JWTSecret == "" {
		errs = append(errs, fmt.Errorf("auth.jwt_secret or auth.jwt_secret_file is required"))
	} else if c.IsProduction() && len(c.Auth.JWTSecret) < minSecretLength {
		errs = append(errs, fmt.Errorf("auth.jwt_secret must be at least %d bytes in production", minSecretLength))
	}

	if len(c.Auth.Transports) == 0 {
		errs = append(errs, fmt.Errorf("auth.transports must not be empty"))
	}
	for i, t := range c.Auth.Transports {
		switch strings.ToLower(t) {
		case "cookie", "bearer", "x-access-token":
			// valid
		default:
			errs = append(errs, fmt.Errorf("auth.transports[%d] must be \"cookie\", \"bearer\" or \"x-access-token\", got %q", i, t))
		}
	}

	if c.Auth.RenewalWindow < 0 {
		errs = append(errs, fmt.Errorf("auth.renewal_window must be >= 0, got %s", c.Auth.RenewalWindow))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("auth.token_ttl must be > 0, got %s", c.Auth.TokenTTL))
	} else if c.Auth.RenewalWindow >= c.Auth.TokenTTL {
		errs = append(errs, fmt.Errorf("auth.renewal_window (%s) must be shorter than auth.token_ttl (%s)", c.Auth.RenewalWindow, c.Auth.TokenTTL))
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("auth.bcrypt_cost must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.Auth.BcryptCost))
	}
	if c.Auth.RateLimit.RequestsPerMinute < 0 {
		errs = append(errs, fmt.Errorf("auth.rate_limit.requests_per_minute must be >= 0, got %d", c.Auth.RateLimit.RequestsPerMinute))
	}

	// server.port must be positive.
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.MaxBodySize <= 0 {
		errs = append(errs, fmt.Errorf("server.max_body_size must be > 0, got %d", c.Server.MaxBodySize))
	}

	// storage.type must be a known value.
	switch c.Storage.Type {
	case "memory", "postgres":
		// valid
	default:
		errs = append(errs, fmt.Errorf("storage.type must be \"memory\" or \"postgres\", got %q", c.Storage.Type))
	}

	// If storage.type is "postgres", DSN or DSNFile must be set.
	if c.Storage.Type == "postgres" {
		if c.Storage.Postgres.DSN == "" && c.Storage.Postgres.DSNFile == "" {
			errs = append(errs, fmt.Errorf("storage.postgres.dsn or storage.postgres.dsn_file is required when storage.type is \"postgres\""))
		}
	}

	switch strings.ToLower(c.Log.Level) {
	case "trace", "debug", "info", "warn", "error":
		// valid
	default:
		errs = append(errs, fmt.Errorf("log.level must be trace, debug, info, warn or error, got %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "json", "text":
		// valid
	default:
		errs = append(errs, fmt.Errorf("log.format must be \"json\" or \"text\", got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}
