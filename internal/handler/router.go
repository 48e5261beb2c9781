// Package handler exposes the console over HTTP: a session gate in front
// of the backend auth endpoints and one set of screen routes per session.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/boddenberg/wallet-console-go/internal/domain"
	"github.com/boddenberg/wallet-console-go/internal/infra/cache"
	"github.com/boddenberg/wallet-console-go/internal/infra/observability"
	"github.com/boddenberg/wallet-console-go/internal/infra/session"
	"github.com/boddenberg/wallet-console-go/internal/port"
	"github.com/boddenberg/wallet-console-go/internal/screen"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Options carries everything the router is built from.
type Options struct {
	// Screens are the collaborators every session console is built from.
	Screens screen.Deps
	Store   port.SessionStore
	Tokens  *session.Tokens
	// Consoles holds the mounted screens of each live session.
	Consoles        *cache.InMemory[*screen.Console]
	SessionTTL      time.Duration
	LoginRatePerMin int
	AllowedOrigins  []string
	// ReadyChecks are run by /readyz; the console is ready when all pass.
	ReadyChecks []ReadyCheck
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// ReadyCheck probes one dependency.
type ReadyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(opts.Logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler())
	r.Get("/readyz", readyzHandler(opts.ReadyChecks))
	r.Handle("/metrics", promhttp.HandlerFor(opts.Metrics.Registry, promhttp.HandlerOpts{}))

	gate := newGate(opts)
	limiter := NewRateLimiter(opts.LoginRatePerMin, opts.Logger)

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		r.Get("/metrics/gateway", gatewayMetricsHandler(opts.Metrics))

		// Session gate
		r.With(limiter.Handler).Post("/session/login", gate.login)
		r.With(limiter.Handler).Post("/session/register", gate.register)

		r.Group(func(r chi.Router) {
			r.Use(gate.guard)

			r.Post("/session/logout", gate.logout)

			// Screens
			r.Get("/screens", listScreensHandler())
			r.Get("/screens/{screen}", gate.snapshot)
			r.Post("/screens/{screen}/mount", gate.mount)
			r.Post("/screens/{screen}/{action}", gate.act)
		})
	})

	return r
}

func healthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func readyzHandler(checks []ReadyCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := domain.HealthStatus{Status: "ready", Dependencies: []domain.DependencyHealth{}}
		status := http.StatusOK
		for _, c := range checks {
			start := time.Now()
			dep := domain.DependencyHealth{Name: c.Name, Status: "up"}
			if err := c.Check(ctx); err != nil {
				dep.Status = "down"
				dep.Error = err.Error()
				resp.Status = "unavailable"
				status = http.StatusServiceUnavailable
			}
			dep.LatencyMs = time.Since(start).Milliseconds()
			resp.Dependencies = append(resp.Dependencies, dep)
		}
		writeJSON(w, status, resp)
	}
}

func gatewayMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.Snapshot())
	}
}

func listScreensHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string][]string{"screens": screen.Names})
	}
}
