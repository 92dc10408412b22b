package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DeBrosOfficial/distcache/pkg/boltstore"
	"github.com/DeBrosOfficial/distcache/pkg/config"
	"github.com/DeBrosOfficial/distcache/pkg/distcache"
	"github.com/DeBrosOfficial/distcache/pkg/gateway"
	"github.com/DeBrosOfficial/distcache/pkg/logging"
	"github.com/DeBrosOfficial/distcache/pkg/olric"
	"go.uber.org/zap"
)

func setupLogger(cfg config.LoggingConfig) (*logging.ColoredLogger, error) {
	level := logging.ParseLevel(cfg.Level)
	if cfg.OutputFile != "" {
		return logging.NewFileLogger(logging.ComponentGeneral, cfg.OutputFile, false, level)
	}
	return logging.NewLevelLogger(logging.ComponentGeneral, cfg.Colors, level)
}

// backend is what main needs from a started cache backend.
type backend struct {
	health gateway.HealthChecker
	close  func(ctx context.Context) error
}

func startOlric(ctx context.Context, cfg *config.Config, reg *distcache.Registry, logger *logging.ColoredLogger) (*backend, error) {
	var (
		client   *olric.Client
		shutdown func(ctx context.Context) error
	)

	switch cfg.Backend {
	case config.BackendOlric:
		c, err := olric.NewClient(olric.Config{
			Servers:       cfg.Olric.Servers,
			HealthTimeout: cfg.Olric.HealthTimeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		client = c
		shutdown = c.Close
	case config.BackendOlricEmbedded:
		node, err := olric.StartEmbedded(ctx, olric.EmbeddedConfig{
			BindAddr:       cfg.Olric.BindAddr,
			BindPort:       cfg.Olric.BindPort,
			MemberlistPort: cfg.Olric.MemberlistPort,
			Peers:          cfg.Olric.Peers,
		}, logger)
		if err != nil {
			return nil, err
		}
		client = node.Client()
		shutdown = func(ctx context.Context) error {
			_ = client.Close(ctx)
			return node.Shutdown(ctx)
		}
	default:
		return nil, fmt.Errorf("unsupported olric backend %q", cfg.Backend)
	}

	for _, name := range cfg.Caches {
		if _, err := olric.AddCache(reg, func(o *olric.CacheOptions) {
			o.Client = client
			o.CacheName = name
			o.Logger = logger
		}); err != nil {
			_ = shutdown(ctx)
			return nil, fmt.Errorf("register cache %s: %w", name, err)
		}
	}
	return &backend{health: client, close: shutdown}, nil
}

func startBolt(ctx context.Context, cfg *config.Config, reg *distcache.Registry, logger *logging.ColoredLogger) (*backend, error) {
	db, err := boltstore.Open(cfg.Bolt.Path, boltstore.Options{BucketPrefix: cfg.Bolt.BucketPrefix}, logger)
	if err != nil {
		return nil, err
	}

	for _, name := range cfg.Caches {
		store, err := db.Store(name)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		adapter, err := distcache.NewAdapter(name, store, distcache.WithLogger(logger))
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		if err := reg.Register(name, adapter); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("register cache %s: %w", name, err)
		}
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	if cfg.Bolt.SweepInterval > 0 {
		go db.RunSweeper(sweepCtx, cfg.Bolt.SweepInterval)
	}

	return &backend{
		close: func(context.Context) error {
			stopSweep()
			return db.Close()
		},
	}, nil
}

func main() {
	flags, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	cfg, errs := loadConfig(flags)
	if len(errs) > 0 {
		fmt.Fprintf(os.Stderr, "invalid configuration:\n%s", formatErrors(errs))
		os.Exit(1)
	}

	if flags.printConfig {
		if err := config.Encode(os.Stdout, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "failed to encode config: %v\n", err)
			os.Exit(1)
		}
		return
	}

	logger, err := setupLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.ComponentInfo(logging.ComponentConfig, "Loaded configuration",
		zap.String("backend", cfg.Backend),
		zap.Strings("caches", cfg.Caches),
		zap.String("listen_addr", cfg.Gateway.ListenAddr),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := distcache.NewRegistry()
	var be *backend
	switch cfg.Backend {
	case config.BackendBolt:
		be, err = startBolt(ctx, cfg, reg, logger)
	default:
		be, err = startOlric(ctx, cfg, reg, logger)
	}
	if err != nil {
		logger.ComponentError(logging.ComponentGeneral, "failed to start cache backend", zap.Error(err))
		os.Exit(1)
	}

	g, err := gateway.New(logger, gateway.Config{
		ListenAddr:     cfg.Gateway.ListenAddr,
		RequestTimeout: cfg.Gateway.RequestTimeout,
		Backend:        cfg.Backend,
		MaxValueBytes:  cfg.Gateway.MaxValueBytes,
	}, reg, be.health)
	if err != nil {
		logger.ComponentError(logging.ComponentGeneral, "failed to initialize gateway", zap.Error(err))
		_ = be.close(ctx)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              cfg.Gateway.ListenAddr,
		Handler:           g.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.ComponentInfo(logging.ComponentGeneral, "distcache HTTP server starting",
			zap.String("addr", cfg.Gateway.ListenAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.ComponentError(logging.ComponentGeneral, "HTTP server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.ComponentInfo(logging.ComponentGeneral, "Shutting down distcache...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.ComponentError(logging.ComponentGeneral, "HTTP server shutdown error", zap.Error(err))
	}
	if err := reg.Close(); err != nil {
		logger.ComponentWarn(logging.ComponentGeneral, "failed to close caches", zap.Error(err))
	}
	if err := be.close(shutdownCtx); err != nil {
		logger.ComponentWarn(logging.ComponentGeneral, "failed to close backend", zap.Error(err))
	}
	logger.ComponentInfo(logging.ComponentGeneral, "distcache shutdown complete")
}
