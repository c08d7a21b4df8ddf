package http

import (
	"net/http"

	"github.com/dreschagin/system-diagnostics/internal/infrastructure/cache"
	"github.com/dreschagin/system-diagnostics/internal/interfaces/http/handler"
	"github.com/dreschagin/system-diagnostics/internal/interfaces/http/middleware"
	"github.com/dreschagin/system-diagnostics/pkg/config"
	"github.com/dreschagin/system-diagnostics/pkg/logger"
)

// Router wires handlers, middleware and probe endpoints.
type Router struct {
	mux                *http.ServeMux
	diagnosticsHandler *handler.DiagnosticsHandler
	privilegeHandler   *handler.PrivilegeHandler
	historyHandler     *handler.HistoryHandler
	websocketHandler   *handler.WebSocketHandler
	snapshotCache      *cache.SnapshotCache
	server             config.ServerConfig
	security           config.SecurityConfig
	logger             *logger.Logger
}

func NewRouter(
	diagnosticsHandler *handler.DiagnosticsHandler,
	privilegeHandler *handler.PrivilegeHandler,
	historyHandler *handler.HistoryHandler,
	websocketHandler *handler.WebSocketHandler,
	snapshotCache *cache.SnapshotCache,
	server config.ServerConfig,
	security config.SecurityConfig,
	logger *logger.Logger,
) *Router {
	return &Router{
		mux:                http.NewServeMux(),
		diagnosticsHandler: diagnosticsHandler,
		privilegeHandler:   privilegeHandler,
		historyHandler:     historyHandler,
		websocketHandler:   websocketHandler,
		snapshotCache:      snapshotCache,
		server:             server,
		security:           security,
		logger:             logger,
	}
}

// Setup registers all routes and returns the composed handler.
func (rt *Router) Setup() http.Handler {
	// Health endpoints are intentionally unauthenticated for probes.
	// Liveness says the process runs; readiness additionally requires a
	// completed collection cycle.
	rt.mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	rt.mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if !rt.snapshotCache.Ready() {
			http.Error(w, "waiting for first collection cycle", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	authMiddleware := middleware.Auth(middleware.AuthConfig{
		Enabled:     rt.security.AuthEnabled,
		BearerToken: rt.security.AuthToken,
	}, rt.logger)

	// Diagnostics API
	rt.mux.Handle("/api/current", authMiddleware(http.HandlerFunc(rt.diagnosticsHandler.GetCurrent)))
	rt.mux.Handle("/api/retry_with_admin", authMiddleware(http.HandlerFunc(rt.privilegeHandler.RetryWithAdmin)))
	rt.mux.Handle("/api/privilege", authMiddleware(http.HandlerFunc(rt.privilegeHandler.GetState)))
	rt.mux.Handle("/api/v1/history", authMiddleware(http.HandlerFunc(rt.historyHandler.GetHistory)))

	// WebSocket does its own auth (token may come via query parameter).
	rt.mux.Handle("/ws", http.HandlerFunc(rt.websocketHandler.HandleConnection))

	rateLimiter := middleware.NewIPRateLimiter(rt.server.RateLimitRPS, rt.server.RateLimitBurst)

	var h http.Handler = rt.mux
	h = middleware.Compression(h)
	h = middleware.RateLimit(rateLimiter)(h)
	h = middleware.Logger(rt.logger)(h)
	h = middleware.Recovery(rt.logger)(h)

	return h
}
