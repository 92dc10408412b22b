package olric

import (
	"github.com/DeBrosOfficial/distcache/pkg/distcache"
	"github.com/DeBrosOfficial/distcache/pkg/errors"
	"github.com/DeBrosOfficial/distcache/pkg/logging"
	"go.uber.org/zap"
)

// CacheOptions is filled in by the setup callback passed to AddCache.
type CacheOptions struct {
	// Client is an already-connected Olric client. Its lifecycle stays with the caller.
	Client *Client
	// CacheName names both the registered cache and its DMap.
	CacheName string
	// Logger is optional; the client's logger is used when nil.
	Logger *logging.ColoredLogger
}

// AddCache builds an Olric-backed cache from the options populated by setup
// and registers it in reg under CacheName.
func AddCache(reg *distcache.Registry, setup func(*CacheOptions)) (*distcache.Adapter, error) {
	if reg == nil {
		return nil, errors.NewValidationError("registry", "registry is required", nil)
	}
	if setup == nil {
		return nil, errors.NewValidationError("setup", "setup callback is required", nil)
	}

	var opts CacheOptions
	setup(&opts)

	if opts.Client == nil {
		return nil, errors.NewValidationError("client", "olric client is required", nil)
	}
	if opts.CacheName == "" {
		return nil, errors.NewValidationError("cache_name", "cache name is required", opts.CacheName)
	}
	logger := opts.Logger
	if logger == nil {
		logger = opts.Client.logger
	}

	store, err := opts.Client.NewStore(opts.CacheName)
	if err != nil {
		return nil, err
	}
	adapter, err := distcache.NewAdapter(opts.CacheName, store, distcache.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if err := reg.Register(opts.CacheName, adapter); err != nil {
		return nil, err
	}

	logger.ComponentInfo(logging.ComponentCache, "Registered Olric cache",
		zap.String("cache", opts.CacheName))
	return adapter, nil
}
