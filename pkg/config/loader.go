package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, STOREFRONT_CONFIG env, ./config.yaml, /etc/storefront/config.yaml)
//  3. Environment variable overrides, legacy names first
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. STOREFRONT_CONFIG environment variable
// 3. ./config.yaml in the current directory
// 4. /etc/storefront/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}

	if envPath := os.Getenv("STOREFRONT_CONFIG"); envPath != "" {
		return envPath
	}

	candidates := []string{
		"config.yaml",
		"/etc/storefront/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps environment variables to config fields. The legacy
// names of the original deployment (JWT_SECRET, PORT, NODE_ENV...) are
// applied first so that the structured STOREFRONT_* names win when both
// are set.
func applyEnvOverrides(cfg *Config) error {
	var err error

	// Legacy env var mappings.
	setString(&cfg.Auth.JWTSecret, "JWT_SECRET")
	setString(&cfg.Auth.CookieDomain, "COOKIE_DOMAIN")
	setString(&cfg.Environment, "NODE_ENV")
	setString(&cfg.Server.FrontendURL, "FRONTEND_URL")
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Storage.Type = "postgres"
		cfg.Storage.Postgres.DSN = v
	}
	if e := setInt(&cfg.Server.Port, "PORT"); e != nil {
		err = e
	}

	// Structured env var mappings.
	setString(&cfg.Environment, "STOREFRONT_ENVIRONMENT")
	setString(&cfg.Auth.JWTSecret, "STOREFRONT_JWT_SECRET")
	setString(&cfg.Auth.JWTSecretFile, "STOREFRONT_JWT_SECRET_FILE")
	setString(&cfg.Auth.CookieDomain, "STOREFRONT_COOKIE_DOMAIN")
	setString(&cfg.Server.FrontendURL, "STOREFRONT_FRONTEND_URL")
	setString(&cfg.Server.UploadsDir, "STOREFRONT_UPLOADS_DIR")
	setString(&cfg.Storage.Type, "STOREFRONT_STORAGE")
	setString(&cfg.Storage.Postgres.DSN, "STOREFRONT_POSTGRES_DSN")
	setString(&cfg.Log.Level, "STOREFRONT_LOG_LEVEL")
	setString(&cfg.Log.Format, "STOREFRONT_LOG_FORMAT")
	setString(&cfg.Log.Debug, "STOREFRONT_DEBUG")

	if v := os.Getenv("STOREFRONT_AUTH_TRANSPORTS"); v != "" {
		cfg.Auth.Transports = splitList(v)
	}
	if v := os.Getenv("STOREFRONT_CORS_ORIGINS"); v != "" {
		cfg.Server.CORS.AllowedOrigins = splitList(v)
	}

	for _, e := range []error{
		setInt(&cfg.Server.Port, "STOREFRONT_PORT"),
		setInt(&cfg.Auth.RateLimit.RequestsPerMinute, "STOREFRONT_RATE_LIMIT_RPM"),
		setDuration(&cfg.Auth.RenewalWindow, "STOREFRONT_RENEWAL_WINDOW"),
		setDuration(&cfg.Auth.TokenTTL, "STOREFRONT_TOKEN_TTL"),
	} {
		if e != nil {
			err = e
		}
	}
	return err
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

// splitList splits a comma-separated value, dropping empty entries.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// resolveFileReferences reads _file fields and populates the corresponding value fields.
// For each field ending in _file, if the value field is empty and the file field is set,
// the file is read, whitespace is trimmed, and the value field is populated.
func resolveFileReferences(cfg *Config) error {
	// auth.jwt_secret_file -> auth.jwt_secret
	if cfg.Auth.JWTSecretFile != "" && cfg.Auth.JWTSecret == "" {
		val, err := readSecretFile(cfg.Auth.JWTSecretFile)
		if err != nil {
			return fmt.Errorf("auth.jwt_secret_file: %w", err)
		}
		cfg.Auth.JWTSecret = val
	}

	// storage.postgres.dsn_file -> storage.postgres.dsn
	if cfg.Storage.Postgres.DSNFile != "" && cfg.Storage.Postgres.DSN == "" {
		val, err := readSecretFile(cfg.Storage.Postgres.DSNFile)
		if err != nil {
			return fmt.Errorf("storage.postgres.dsn_file: %w", err)
		}
		cfg.Storage.Postgres.DSN = val
	}

	return nil
}

// readSecretFile reads a file and returns its content with surrounding whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
