package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/inventorymaster/storefront/pkg/api"
	"github.com/inventorymaster/storefront/pkg/auth"
	"github.com/inventorymaster/storefront/pkg/observability"
	"github.com/inventorymaster/storefront/pkg/transport"
	"github.com/inventorymaster/storefront/pkg/users"
)

// readinessTimeout bounds the store health check behind /readyz.
const readinessTimeout = 2 * time.Second

// RouterConfig holds the settings that shape the route table.
type RouterConfig struct {
	// AllowedOrigins are the CORS origins allowed to send credentials.
	AllowedOrigins []string

	// UploadsDir is served under /uploads. Empty disables the route.
	UploadsDir string

	// MaxBodySize caps JSON request bodies.
	MaxBodySize int64

	// MetricsPath exposes Prometheus metrics when non-empty.
	MetricsPath string

	// Bypass lists protected paths that skip authentication.
	Bypass []string
}

// Dependencies are the services the router dispatches to.
type Dependencies struct {
	Users   *users.Service
	Store   users.Store
	Authn   *auth.Authenticator
	Limiter auth.RateLimiter
	Cookie  auth.CookieConfig
	Logger  *slog.Logger
}

// NewRouter builds the storefront route table with the global middleware
// stack applied.
func NewRouter(cfg RouterConfig, deps Dependencies) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = 1 << 20
	}

	h := &userHandlers{
		svc:         deps.Users,
		authn:       deps.Authn,
		cookie:      deps.Cookie,
		maxBodySize: cfg.MaxBodySize,
		logger:      deps.Logger,
		now:         time.Now,
	}

	r := chi.NewRouter()

	r.Use(transport.RequestID())
	r.Use(chimw.RealIP)
	r.Use(transport.Logging(deps.Logger))
	r.Use(transport.Recovery(deps.Logger))
	if cfg.MetricsPath != "" {
		r.Use(observability.MetricsMiddleware)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", auth.AccessTokenHeader, transport.RequestIDHeader},
		ExposedHeaders:   []string{transport.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(securityHeaders(cfg.AllowedOrigins))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		transport.WriteAPIError(w, api.NewNotFoundError("route not found: "+r.Method+" "+r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("method", "method "+r.Method+" not allowed on "+r.URL.Path),
			http.StatusMethodNotAllowed,
		)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("Home page"))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", handleReady(deps.Store, deps.Logger))

	if cfg.MetricsPath != "" {
		r.Handle(cfg.MetricsPath, promhttp.Handler())
	}

	r.Get("/documentation", handleDocsIndex)
	r.Get("/documentation/openapi.yaml", handleOpenAPI)

	if cfg.UploadsDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", staticFiles(cfg.UploadsDir)))
	}

	r.Route("/api/users", func(ur chi.Router) {
		ur.Post("/register", h.register)
		ur.Post("/login", h.login)
		ur.Get("/logout", h.logout)
		ur.Get("/loggedin", h.loggedIn)

		ur.Group(func(pr chi.Router) {
			pr.Use(auth.Middleware(deps.Authn, deps.Limiter, cfg.Bypass))
			pr.Get("/getuser", h.getUser)
			pr.Patch("/updateuser", h.updateUser)
			pr.Patch("/changepassword", h.changePassword)
		})
	})

	return r
}

func handleReady(store users.Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		if err := store.HealthCheck(ctx); err != nil {
			logger.Warn("readiness check failed", "error", err)
			transport.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// staticFiles serves files from dir without directory listings.
func staticFiles(dir string) http.Handler {
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			transport.WriteAPIError(w, api.NewNotFoundError("file not found"))
			return
		}
		fs.ServeHTTP(w, r)
	})
}
