package api

import (
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/marmos91/kvfs/internal/logger"
	"github.com/marmos91/kvfs/internal/telemetry"
	"github.com/marmos91/kvfs/pkg/api/handlers"
	"github.com/marmos91/kvfs/pkg/api/middleware"
	"github.com/marmos91/kvfs/pkg/auth"
	"github.com/marmos91/kvfs/pkg/fs"
	"github.com/marmos91/kvfs/pkg/kv"
	"github.com/marmos91/kvfs/pkg/metrics"
)

// NewRouter creates and configures the chi router with all middleware and routes.
//
// The router is configured with:
//   - Request ID middleware for request tracking
//   - Real IP extraction for proper client identification
//   - Request logging, which also opens the per-request trace span
//   - Panic recovery to prevent server crashes
//   - Request timeout to prevent hung requests
//
// Routes:
//   - GET /health, /health/ready, /health/store - probes, unauthenticated
//   - GET /metrics - Prometheus metrics (404 when metrics are disabled)
//   - POST /api/v1/auth/login, /api/v1/auth/refresh - unauthenticated
//   - GET /api/v1/auth/me - authenticated
//   - /api/v1/files, /api/v1/meta, /api/v1/dirs - authenticated filesystem access
//   - /api/v1/users - user management, admin only except the own-password change
func NewRouter(config APIConfig, fsys *fs.FileSystem, store kv.Store, storeType string, users *auth.Store, jwtService *auth.JWTService) http.Handler {
	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.RequestTimeout))

	healthHandler := handlers.NewHealthHandler(store, storeType)
	authHandler := handlers.NewAuthHandler(users, jwtService)
	userHandler := handlers.NewUserHandler(users)
	fileHandler := handlers.NewFileHandler(fsys)
	dirHandler := handlers.NewDirHandler(fsys)

	// Health routes - unauthenticated
	r.Route("/health", func(r chi.Router) {
		r.Get("/", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
		r.Get("/store", healthHandler.Store)
	})

	// Prometheus metrics. The handler answers 404 when metrics are disabled.
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)

			r.Group(func(r chi.Router) {
				r.Use(middleware.JWTAuth(jwtService))
				r.Get("/me", authHandler.Me)
			})
		})

		// Authenticated routes. Users flagged for a password change can only
		// reach the endpoint that performs it.
		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuth(jwtService))
			r.Use(middleware.RequirePasswordChange("/api/v1/users/me/password"))

			r.Route("/files", func(r chi.Router) {
				r.Get("/*", fileHandler.Read)
				r.Head("/*", fileHandler.Stat)
				r.Put("/*", fileHandler.Write)
				r.Delete("/*", fileHandler.Delete)
			})

			r.Route("/meta", func(r chi.Router) {
				r.Get("/*", fileHandler.GetMetadata)
				r.Patch("/*", fileHandler.SetMetadata)
			})

			r.Route("/dirs", func(r chi.Router) {
				r.Get("/*", dirHandler.List)
				r.Post("/*", dirHandler.Mkdir)
			})

			r.Route("/users", func(r chi.Router) {
				r.Post("/me/password", userHandler.ChangeOwnPassword)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin())
					r.Get("/", userHandler.List)
					r.Post("/", userHandler.Create)
					r.Get("/{username}", userHandler.Get)
					r.Put("/{username}", userHandler.Update)
					r.Delete("/{username}", userHandler.Delete)
					r.Post("/{username}/password", userHandler.ResetPassword)
				})
			})
		})
	})

	// Root redirect to health for convenience
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	return r
}

// requestLogger opens the request span, seeds the LogContext every *Ctx log
// line below this middleware inherits, and emits one completion line per
// request. It must run after RequestID and RealIP so both are populated.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lc := logger.NewLogContext(clientAddr(r)).
			WithRequest(chimiddleware.GetReqID(r.Context()), r.Method, r.URL.Path)

		ctx, span := telemetry.StartHTTPSpan(r.Context(), r.Method, r.URL.Path,
			telemetry.ClientIP(lc.ClientIP),
			telemetry.RequestID(lc.RequestID),
		)
		defer span.End()

		lc = lc.WithTrace(telemetry.TraceID(ctx), telemetry.SpanID(ctx))
		ctx = logger.WithContext(ctx, lc)

		logger.DebugCtx(ctx, "request started",
			logger.KeyMethod, r.Method,
			logger.KeyRoute, r.URL.Path,
			logger.KeyUserAgent, r.UserAgent(),
		)

		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		span.SetAttributes(telemetry.HTTPStatus(ww.Status()))
		logger.InfoCtx(ctx, "request completed",
			logger.KeyMethod, r.Method,
			logger.KeyRoute, r.URL.Path,
			logger.KeyStatusCode, ww.Status(),
			logger.KeyBytesWritten, ww.BytesWritten(),
			logger.DurationMs(lc.DurationMs()),
		)
	})
}

// clientAddr strips the port from RemoteAddr. Behind RealIP the address may
// already be a bare IP, which SplitHostPort rejects.
func clientAddr(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
