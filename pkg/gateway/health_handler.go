package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/DeBrosOfficial/distcache/pkg/errors"
	"github.com/DeBrosOfficial/distcache/pkg/logging"
	"github.com/mackerelio/go-osstat/memory"
	"go.uber.org/zap"
)

func (g *Gateway) healthHandler(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":  "ok",
		"backend": g.cfg.Backend,
		"caches":  g.registry.Names(),
	}

	if mem, err := memory.Get(); err == nil {
		resp["memory"] = map[string]any{
			"total": mem.Total,
			"used":  mem.Used,
			"free":  mem.Free,
		}
	}

	code := http.StatusOK
	if g.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := g.health.Health(ctx); err != nil {
			if !errors.IsServiceUnavailable(err) {
				err = errors.NewServiceError(g.cfg.Backend, "backend health check failed", err)
			}
			g.logger.ComponentWarn(logging.ComponentGateway, "backend health check failed", zap.Error(err))
			httpErr := errors.ToHTTPError(err, requestIDFromContext(r.Context()))
			resp["status"] = "unavailable"
			resp["error"] = httpErr
			code = httpErr.Status
		}
	}

	writeJSON(w, code, resp)
}
