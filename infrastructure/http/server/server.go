package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/complyance/governance/infrastructure/http/handler"
	"github.com/complyance/governance/infrastructure/http/middleware"
	"github.com/complyance/governance/infrastructure/http/sse"
	"github.com/complyance/governance/infrastructure/service/logger"
)

const APIPrefix = "/api/v1"

// Server represents the HTTP server
type Server struct {
	server *http.Server
	logger logger.Logger
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string
	AllowCreds     bool
	CORSEnabled    bool
}

// Dependencies are the handlers and middleware the router is assembled from.
// Metrics, RateLimit, Events and Registry may be nil.
type Dependencies struct {
	Users       *handler.UserHandler
	Posts       *handler.PostHandler
	Preferences *handler.PreferenceHandler
	System      *handler.SystemHandler
	Actor       *middleware.ActorMiddleware
	RateLimit   *middleware.RateLimitMiddleware
	Events      *sse.Streamer
	Metrics     middleware.RequestObserver
	Registry    *prometheus.Registry
	Logger      logger.Logger
}

// NewRouter wires every route. CORS and the correlation ID wrap the whole
// router so preflight requests and unmatched paths get them too.
func NewRouter(config ServerConfig, deps Dependencies) http.Handler {
	router := mux.NewRouter()

	if deps.Registry != nil {
		router.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	api := router.PathPrefix(APIPrefix).Subrouter()
	deps.Users.RegisterRoutes(api)
	deps.Posts.RegisterRoutes(api)
	deps.Preferences.RegisterRoutes(api)
	deps.System.RegisterRoutes(api)
	if deps.Events != nil {
		api.HandleFunc("/events", deps.Events.HandleSSE).Methods(http.MethodGet)
	}

	api.Use(middleware.RequestLogging(deps.Logger, deps.Metrics))
	api.Use(middleware.Recovery(deps.Logger))
	if deps.RateLimit != nil {
		api.Use(deps.RateLimit.RateLimit)
	}
	api.Use(deps.Actor.ResolveActor)

	var h http.Handler = router
	if config.CORSEnabled {
		h = middleware.CORSMiddleware(config.AllowedOrigins, config.AllowCreds)(h)
	}
	return middleware.CorrelationIDMiddleware(h)
}

// NewServer creates a new HTTP server
func NewServer(config ServerConfig, deps Dependencies) *Server {
	srv := &http.Server{
		Addr:         config.Addr,
		Handler:      NewRouter(config, deps),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}
	if deps.Events != nil {
		// event streams never go idle on their own
		srv.RegisterOnShutdown(deps.Events.Close)
	}
	return &Server{
		logger: deps.Logger,
		server: srv,
	}
}

// Start blocks until the server stops. It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info(context.Background(), "Starting HTTP server", map[string]interface{}{
		"addr": s.server.Addr,
	})
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "Shutting down HTTP server", nil)
	return s.server.Shutdown(ctx)
}
