package olric

import (
	"context"
	"fmt"
	"time"

	"github.com/DeBrosOfficial/distcache/pkg/logging"
	olriclib "github.com/olric-data/olric"
	"github.com/olric-data/olric/config"
	"go.uber.org/zap"
)

// EmbeddedConfig configures an in-process Olric node.
type EmbeddedConfig struct {
	BindAddr       string
	BindPort       int
	MemberlistPort int
	// Peers are memberlist addresses of other nodes to join.
	Peers []string
	// StartTimeout bounds how long Start waits for the node to report ready.
	StartTimeout time.Duration
}

// Embedded is an Olric node running inside this process.
type Embedded struct {
	db     *olriclib.Olric
	logger *logging.ColoredLogger
	errCh  chan error
}

// StartEmbedded boots an embedded Olric node and waits until it is ready.
func StartEmbedded(ctx context.Context, cfg EmbeddedConfig, logger *logging.ColoredLogger) (*Embedded, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.BindAddr == "" {
		cfg.BindAddr = "127.0.0.1"
	}
	if cfg.BindPort == 0 {
		cfg.BindPort = 3320
	}
	if cfg.MemberlistPort == 0 {
		cfg.MemberlistPort = 3322
	}
	if cfg.StartTimeout == 0 {
		cfg.StartTimeout = 30 * time.Second
	}

	env := "local"
	if len(cfg.Peers) > 0 {
		env = "lan"
	}
	c := config.New(env)
	c.BindAddr = cfg.BindAddr
	c.BindPort = cfg.BindPort
	c.MemberlistConfig.BindAddr = cfg.BindAddr
	c.MemberlistConfig.BindPort = cfg.MemberlistPort
	c.Peers = cfg.Peers
	c.Logger = zap.NewStdLog(logger.Logger)
	c.LogLevel = "WARN"

	ready := make(chan struct{})
	c.Started = func() { close(ready) }

	db, err := olriclib.New(c)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedded Olric node: %w", err)
	}

	e := &Embedded{db: db, logger: logger, errCh: make(chan error, 1)}
	go func() {
		e.errCh <- db.Start()
	}()

	logger.ComponentInfo(logging.ComponentOlric, "Starting embedded Olric node",
		zap.String("bind_addr", cfg.BindAddr),
		zap.Int("bind_port", cfg.BindPort),
		zap.Int("memberlist_port", cfg.MemberlistPort),
		zap.Strings("peers", cfg.Peers))

	timer := time.NewTimer(cfg.StartTimeout)
	defer timer.Stop()

	select {
	case <-ready:
		logger.ComponentInfo(logging.ComponentOlric, "Embedded Olric node ready")
		return e, nil
	case err := <-e.errCh:
		return nil, fmt.Errorf("embedded Olric node exited during startup: %w", err)
	case <-timer.C:
		_ = db.Shutdown(context.Background())
		return nil, fmt.Errorf("embedded Olric node did not become ready within %s", cfg.StartTimeout)
	case <-ctx.Done():
		_ = db.Shutdown(context.Background())
		return nil, ctx.Err()
	}
}

// Client returns a client bound to the embedded node.
func (e *Embedded) Client() *Client {
	return NewClientFrom(e.db.NewEmbeddedClient(), e.logger)
}

// Shutdown stops the node.
func (e *Embedded) Shutdown(ctx context.Context) error {
	if err := e.db.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down embedded Olric node: %w", err)
	}
	e.logger.ComponentInfo(logging.ComponentOlric, "Embedded Olric node stopped")
	return nil
}
