// Package config provides unified configuration for the storefront API.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (STOREFRONT_ prefix)
//  4. Backward-compatible env var mapping for legacy variable names
//  5. File reference resolution (_file suffix fields)
//  6. Validation
package config

import "time"

// Environments recognized by the server. Production turns on Secure cookies.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Config holds all configuration for the storefront API.
type Config struct {
	Environment   string              `yaml:"environment"` // default: "development"
	Server        ServerConfig        `yaml:"server"`
	Auth          AuthConfig          `yaml:"auth"`
	Storage       StorageConfig       `yaml:"storage"`
	Log           LogConfig           `yaml:"log"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// IsProduction reports whether the server runs in production.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`             // default: 5000
	ReadTimeout     time.Duration `yaml:"read_timeout"`     // default: 15s
	WriteTimeout    time.Duration `yaml:"write_timeout"`    // default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // default: 10s
	MaxBodySize     int64         `yaml:"max_body_size"`    // default: 1 MiB
	UploadsDir      string        `yaml:"uploads_dir"`      // default: "uploads"
	FrontendURL     string        `yaml:"frontend_url"`     // optional
	CORS            CORSConfig    `yaml:"cors"`
}

// CORSConfig holds cross-origin settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Origins returns the allowed origins including the frontend URL.
func (s ServerConfig) Origins() []string {
	origins := make([]string, 0, len(s.CORS.AllowedOrigins)+1)
	if s.FrontendURL != "" {
		origins = append(origins, s.FrontendURL)
	}
	for _, o := range s.CORS.AllowedOrigins {
		if o != "" && o != s.FrontendURL {
			origins = append(origins, o)
		}
	}
	return origins
}

// AuthConfig holds credential and session settings.
type AuthConfig struct {
	JWTSecret     string          `yaml:"jwt_secret"`      // required
	JWTSecretFile string          `yaml:"jwt_secret_file"` // _file variant for jwt_secret
	CookieDomain  string          `yaml:"cookie_domain"`   // optional
	Transports    []string        `yaml:"transports"`      // default: cookie, bearer, x-access-token
	RenewalWindow time.Duration   `yaml:"renewal_window"`  // default: 5m, 0 disables renewal
	TokenTTL      time.Duration   `yaml:"token_ttl"`       // default: 24h
	BcryptCost    int             `yaml:"bcrypt_cost"`     // default: 10
	Bypass        []string        `yaml:"bypass"`          // paths exempt from auth
	RateLimit     RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig holds per-user request budgets for protected routes.
type RateLimitConfig struct {
	RequestsPerMinute int            `yaml:"requests_per_minute"` // default: 0 (unlimited)
	Roles             map[string]int `yaml:"roles"`               // per-role overrides
}

// StorageConfig holds persistence settings.
type StorageConfig struct {
	Type     string         `yaml:"type"` // "memory" or "postgres", default: "memory"
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	DSN            string `yaml:"dsn"`
	DSNFile        string `yaml:"dsn_file"`         // _file variant for dsn
	MaxConns       int32  `yaml:"max_conns"`        // default: 25
	MigrateOnStart bool   `yaml:"migrate_on_start"` // default: true
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // trace, debug, info, warn, error; default: "info"
	Format string `yaml:"format"` // json or text; default: "json"

	// Debug lists the debug categories to enable, comma separated
	// (auth, users, storage, transport, config, all).
	Debug string `yaml:"debug"`
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Environment: EnvDevelopment,
		Server: ServerConfig{
			Port:            5000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodySize:     1 << 20,
			UploadsDir:      "uploads",
			CORS: CORSConfig{
				AllowedOrigins: []string{
					"https://inventorymaster.vercel.app",
					"http://127.0.0.1:5173",
				},
			},
		},
		Auth: AuthConfig{
			Transports:    []string{"cookie", "bearer", "x-access-token"},
			RenewalWindow: 5 * time.Minute,
			TokenTTL:      24 * time.Hour,
			BcryptCost:    10,
		},
		Storage: StorageConfig{
			Type: "memory",
			Postgres: PostgresConfig{
				MaxConns:       25,
				MigrateOnStart: true,
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}
