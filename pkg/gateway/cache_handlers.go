package gateway

import (
	stderrors "errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/DeBrosOfficial/distcache/pkg/distcache"
	"github.com/DeBrosOfficial/distcache/pkg/errors"
	"github.com/DeBrosOfficial/distcache/pkg/logging"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// resolve returns the cache and key addressed by the request path.
func (g *Gateway) resolve(r *http.Request) (distcache.Cache, string, error) {
	cache, err := g.registry.Lookup(chi.URLParam(r, "cache"))
	if err != nil {
		return nil, "", err
	}
	key := chi.URLParam(r, "key")
	if r.URL.RawPath != "" {
		// chi matched on the escaped path, so the parameter is still encoded.
		key, err = url.PathUnescape(key)
		if err != nil {
			return nil, "", errors.NewValidationError("key", "invalid key encoding", chi.URLParam(r, "key"))
		}
	}
	if key == "" {
		return nil, "", errors.NewValidationError("key", "key is required", key)
	}
	return cache, key, nil
}

// getHandler returns the raw value stored under key.
//
//	GET /v1/cache/{cache}/{key}
func (g *Gateway) getHandler(w http.ResponseWriter, r *http.Request) {
	cache, key, err := g.resolve(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	value, err := cache.Get(r.Context(), key)
	if err != nil {
		g.logFailure(r, "get", key, err)
		writeError(w, r, err)
		return
	}
	if value == nil {
		writeError(w, r, errors.NewNotFoundError("key", key))
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(value)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(value)
}

// setHandler stores the request body under key.
//
//	PUT /v1/cache/{cache}/{key}?ttl=30s
//	PUT /v1/cache/{cache}/{key}?expires_at=2026-10-16T12:00:00Z
//	PUT /v1/cache/{cache}/{key}?sliding=5m
func (g *Gateway) setHandler(w http.ResponseWriter, r *http.Request) {
	cache, key, err := g.resolve(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	opts, err := parseEntryOptions(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	value, err := io.ReadAll(http.MaxBytesReader(w, r.Body, g.cfg.MaxValueBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if stderrors.As(err, &maxErr) {
			writeError(w, r, errors.NewPayloadTooLargeError(maxErr.Limit, err))
			return
		}
		writeError(w, r, errors.NewValidationError("body", "failed to read value", err.Error()))
		return
	}

	if err := cache.Set(r.Context(), key, value, opts); err != nil {
		g.logFailure(r, "set", key, err)
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"cache":  chi.URLParam(r, "cache"),
		"key":    key,
		"bytes":  len(value),
	})
}

// refreshHandler resets the idle timer of key.
//
//	POST /v1/cache/{cache}/{key}/refresh
func (g *Gateway) refreshHandler(w http.ResponseWriter, r *http.Request) {
	cache, key, err := g.resolve(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := cache.Refresh(r.Context(), key); err != nil {
		g.logFailure(r, "refresh", key, err)
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"cache":  chi.URLParam(r, "cache"),
		"key":    key,
	})
}

// removeHandler deletes key. Deleting a missing key succeeds.
//
//	DELETE /v1/cache/{cache}/{key}
func (g *Gateway) removeHandler(w http.ResponseWriter, r *http.Request) {
	cache, key, err := g.resolve(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := cache.Remove(r.Context(), key); err != nil {
		g.logFailure(r, "remove", key, err)
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"cache":  chi.URLParam(r, "cache"),
		"key":    key,
	})
}

func (g *Gateway) listCachesHandler(w http.ResponseWriter, r *http.Request) {
	names := g.registry.Names()
	writeJSON(w, http.StatusOK, map[string]any{
		"caches": names,
		"count":  len(names),
	})
}

func (g *Gateway) logFailure(r *http.Request, op, key string, err error) {
	if errors.IsClientError(errors.GetErrorCode(err)) {
		return
	}
	g.logger.ComponentError(logging.ComponentGateway, "cache operation failed",
		zap.String("op", op),
		zap.String("cache", chi.URLParam(r, "cache")),
		zap.String("key", key),
		zap.String("request_id", requestIDFromContext(r.Context())),
		zap.Error(err))
}

// parseEntryOptions reads expiration settings from query parameters.
func parseEntryOptions(q url.Values) (distcache.EntryOptions, error) {
	var opts distcache.EntryOptions

	if v := q.Get("ttl"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return opts, errors.NewValidationError("ttl", "invalid duration", v)
		}
		opts = opts.SetAbsoluteExpirationRelativeToNow(d)
	}
	if v := q.Get("expires_at"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return opts, errors.NewValidationError("expires_at", "expected RFC 3339 timestamp", v)
		}
		opts = opts.SetAbsoluteExpiration(t)
	}
	if v := q.Get("sliding"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return opts, errors.NewValidationError("sliding", "invalid duration", v)
		}
		opts = opts.SetSlidingExpiration(d)
	}

	return opts, nil
}
