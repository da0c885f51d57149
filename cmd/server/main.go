// Command server runs the storefront API.
//
// Configuration is read from a YAML file (-config, STOREFRONT_CONFIG,
// ./config.yaml or /etc/storefront/config.yaml) and environment overrides.
// The variables of the original deployment are honored:
//
//	JWT_SECRET    - credential signing secret (required)
//	COOKIE_DOMAIN - domain set on the token cookie (optional)
//	NODE_ENV      - "production" enables Secure cookies (default: "development")
//	PORT          - listen port (default: 5000)
//	FRONTEND_URL  - allowed CORS origin (optional)
//	DATABASE_URL  - PostgreSQL DSN; selects the postgres store (optional)
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/inventorymaster/storefront/pkg/auth"
	"github.com/inventorymaster/storefront/pkg/auth/jwt"
	"github.com/inventorymaster/storefront/pkg/config"
	"github.com/inventorymaster/storefront/pkg/debug"
	"github.com/inventorymaster/storefront/pkg/storage/memory"
	"github.com/inventorymaster/storefront/pkg/storage/postgres"
	transporthttp "github.com/inventorymaster/storefront/pkg/transport/http"
	"github.com/inventorymaster/storefront/pkg/users"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)
	debug.Init(cfg.Log.Debug)
	debug.Log("config", "configuration loaded",
		"port", cfg.Server.Port,
		"origins", cfg.Server.Origins(),
		"debug_categories", debug.Categories(),
	)

	store, err := newStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	tokens, err := jwt.New(cfg.Auth.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token codec: %w", err)
	}

	transports := make([]auth.Transport, 0, len(cfg.Auth.Transports))
	for _, name := range cfg.Auth.Transports {
		t, err := auth.ParseTransport(name)
		if err != nil {
			return err
		}
		transports = append(transports, t)
	}

	cookie := auth.CookieConfig{
		Domain: cfg.Auth.CookieDomain,
		Secure: cfg.IsProduction(),
	}

	authn, err := auth.New(auth.Config{
		Transports:    transports,
		RenewalWindow: cfg.Auth.RenewalWindow,
		RenewalTTL:    cfg.Auth.TokenTTL,
		Cookie:        cookie,
		Logger:        logger,
	}, tokens, store)
	if err != nil {
		return fmt.Errorf("creating authenticator: %w", err)
	}

	var limiter auth.RateLimiter
	if rl := cfg.Auth.RateLimit; rl.RequestsPerMinute > 0 || len(rl.Roles) > 0 {
		limiter = auth.NewInProcessLimiter(rl.Roles, rl.RequestsPerMinute)
		logger.Info("rate limiting enabled", "requests_per_minute", rl.RequestsPerMinute)
	}

	svc, err := users.NewService(store, tokens,
		users.WithTokenTTL(cfg.Auth.TokenTTL),
		users.WithBcryptCost(cfg.Auth.BcryptCost),
		users.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("creating user service: %w", err)
	}

	routerCfg := transporthttp.RouterConfig{
		AllowedOrigins: cfg.Server.Origins(),
		UploadsDir:     cfg.Server.UploadsDir,
		MaxBodySize:    cfg.Server.MaxBodySize,
		Bypass:         cfg.Auth.Bypass,
	}
	if cfg.Observability.Metrics.Enabled {
		routerCfg.MetricsPath = cfg.Observability.Metrics.Path
	}

	router := transporthttp.NewRouter(routerCfg, transporthttp.Dependencies{
		Users:   svc,
		Store:   store,
		Authn:   authn,
		Limiter: limiter,
		Cookie:  cookie,
		Logger:  logger,
	})

	srv := transporthttp.NewServer(router,
		transporthttp.WithAddr(fmt.Sprintf(":%d", cfg.Server.Port)),
		transporthttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
		transporthttp.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		transporthttp.WithLogger(logger),
	)

	logger.Info("storefront configured",
		"environment", cfg.Environment,
		"storage", cfg.Storage.Type,
		"transports", cfg.Auth.Transports,
		"renewal_window", cfg.Auth.RenewalWindow,
	)

	return srv.ListenAndServe()
}

// newStore creates the configured user store.
func newStore(cfg *config.Config) (users.Store, error) {
	switch cfg.Storage.Type {
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		store, err := postgres.New(ctx, postgres.Config{
			DSN:            cfg.Storage.Postgres.DSN,
			MaxConns:       cfg.Storage.Postgres.MaxConns,
			MigrateOnStart: cfg.Storage.Postgres.MigrateOnStart,
		})
		if err != nil {
			return nil, fmt.Errorf("creating postgres store: %w", err)
		}
		slog.Info("storage enabled", "type", "postgres")
		return store, nil
	default:
		slog.Info("storage enabled", "type", "memory")
		return memory.New(), nil
	}
}

// newLogger builds the process logger from the log settings.
func newLogger(cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: debug.ParseLevel(cfg.Level)}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
