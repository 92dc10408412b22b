package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/DeBrosOfficial/distcache/pkg/distcache"
	"github.com/DeBrosOfficial/distcache/pkg/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// HealthChecker probes the cache backend.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Config holds gateway settings
type Config struct {
	ListenAddr string
	// RequestTimeout bounds each request; the cache call sees it through the
	// request context. Zero disables the bound.
	RequestTimeout time.Duration
	// Backend names the backend in health responses.
	Backend string
	// MaxValueBytes caps a PUT body. Zero means DefaultMaxValueBytes.
	MaxValueBytes int64
}

// DefaultMaxValueBytes is the PUT body limit when Config.MaxValueBytes is unset.
const DefaultMaxValueBytes = 16 << 20

// Gateway exposes registered caches over HTTP
type Gateway struct {
	logger   *logging.ColoredLogger
	cfg      Config
	registry *distcache.Registry
	health   HealthChecker
	router   chi.Router
}

// New builds the gateway router. health may be nil when the backend has no probe.
func New(logger *logging.ColoredLogger, cfg Config, registry *distcache.Registry, health HealthChecker) (*Gateway, error) {
	if registry == nil {
		return nil, fmt.Errorf("gateway requires a cache registry")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.MaxValueBytes <= 0 {
		cfg.MaxValueBytes = DefaultMaxValueBytes
	}

	g := &Gateway{
		logger:   logger,
		cfg:      cfg,
		registry: registry,
		health:   health,
		router:   chi.NewRouter(),
	}

	g.router.Use(requestIDMiddleware)
	g.router.Use(g.loggingMiddleware)
	g.router.Use(middleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		g.router.Use(deadlineMiddleware(cfg.RequestTimeout))
	}

	g.router.Get("/v1/health", g.healthHandler)
	g.router.Get("/v1/caches", g.listCachesHandler)
	g.router.Route("/v1/cache/{cache}/{key}", func(r chi.Router) {
		r.Get("/", g.getHandler)
		r.Put("/", g.setHandler)
		r.Delete("/", g.removeHandler)
		r.Post("/refresh", g.refreshHandler)
	})

	g.logger.ComponentInfo(logging.ComponentGateway, "HTTP gateway initialized",
		zap.String("listen_addr", cfg.ListenAddr),
		zap.String("backend", cfg.Backend),
		zap.Strings("caches", registry.Names()),
	)
	return g, nil
}

// Routes returns the HTTP handler
func (g *Gateway) Routes() http.Handler {
	return g.router
}
