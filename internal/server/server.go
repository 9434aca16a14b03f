// Package server assembles the HTTP and WebSocket API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/alanyoungcy/pedsim/internal/domain"
	"github.com/alanyoungcy/pedsim/internal/server/handler"
	"github.com/alanyoungcy/pedsim/internal/server/middleware"
	"github.com/alanyoungcy/pedsim/internal/server/ws"
)

// rateLimitWindow is the window RateLimitPerMinute applies to.
const rateLimitWindow = time.Minute

// Config holds the HTTP server configuration.
type Config struct {
	Port               int
	CORSOrigins        []string
	RateLimitPerMinute int
	MaxUploadBytes     int64
}

// Handlers aggregates all HTTP handlers that the server needs to register.
type Handlers struct {
	Health     *handler.HealthHandler
	Status     *handler.StatusHandler
	Insights   *handler.InsightHandler
	Datasets   *handler.DatasetHandler
	Elasticity *handler.ElasticityHandler
}

// Server is the HTTP + WebSocket API server.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a Server with all routes registered. limiter and sim
// may be nil, which disables rate limiting and the simulator route.
func NewServer(cfg Config, handlers Handlers, sim *ws.Simulator, limiter domain.RateLimiter, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)
	mux.HandleFunc("GET /api/status", handlers.Status.GetStatus)
	mux.HandleFunc("GET /api/insights/comparison", handlers.Insights.GetComparison)

	mux.HandleFunc("POST /api/datasets", handlers.Datasets.Upload)
	mux.HandleFunc("GET /api/datasets/remote", handlers.Datasets.ListRemote)
	mux.HandleFunc("GET /api/datasets/skus", handlers.Datasets.ListSKUs)
	mux.HandleFunc("GET /api/datasets/{id}", handlers.Datasets.GetDataset)

	mux.HandleFunc("GET /api/elasticity/demo", handlers.Elasticity.Demo)
	mux.HandleFunc("POST /api/elasticity/analyze", handlers.Elasticity.Analyze)
	mux.HandleFunc("POST /api/elasticity/curve", handlers.Elasticity.Curve)

	if sim != nil {
		mux.HandleFunc("GET /ws/simulate", sim.HandleWS)
	}

	// Applied innermost first: CORS ends up outermost.
	var h http.Handler = mux
	if cfg.MaxUploadBytes > 0 {
		h = middleware.BodyLimit(cfg.MaxUploadBytes)(h)
	}
	if limiter != nil && cfg.RateLimitPerMinute > 0 {
		h = middleware.RateLimit(limiter, cfg.RateLimitPerMinute, rateLimitWindow, logger)(h)
	}
	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(cfg.Port)),
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
	}
}

// Handler returns the fully wrapped root handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
