package olric

import (
	"context"
	"fmt"
	"time"

	"github.com/DeBrosOfficial/distcache/pkg/errors"
	"github.com/DeBrosOfficial/distcache/pkg/logging"
	olriclib "github.com/olric-data/olric"
	"go.uber.org/zap"
)

// Client wraps an Olric client (cluster or embedded) for distributed cache operations
type Client struct {
	client        olriclib.Client
	logger        *logging.ColoredLogger
	healthTimeout time.Duration
}

// Config holds configuration for the Olric client
type Config struct {
	// Servers is a list of Olric server addresses (e.g., ["localhost:3320"])
	// If empty, defaults to ["localhost:3320"]
	Servers []string

	// HealthTimeout bounds a single Health probe.
	// If zero, defaults to 5 seconds
	HealthTimeout time.Duration
}

// NewClient connects to an Olric cluster
func NewClient(cfg Config, logger *logging.ColoredLogger) (*Client, error) {
	servers := cfg.Servers
	if len(servers) == 0 {
		servers = []string{"localhost:3320"}
	}

	client, err := olriclib.NewClusterClient(servers)
	if err != nil {
		return nil, fmt.Errorf("failed to create Olric cluster client: %w", err)
	}

	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger.ComponentInfo(logging.ComponentOlric, "Olric cluster client created",
		zap.Strings("servers", servers))

	return newClient(client, cfg.HealthTimeout, logger), nil
}

// NewClientFrom wraps an existing Olric client, such as an embedded one.
func NewClientFrom(client olriclib.Client, logger *logging.ColoredLogger) *Client {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return newClient(client, 0, logger)
}

func newClient(client olriclib.Client, healthTimeout time.Duration, logger *logging.ColoredLogger) *Client {
	if healthTimeout == 0 {
		healthTimeout = 5 * time.Second
	}
	return &Client{
		client:        client,
		logger:        logger,
		healthTimeout: healthTimeout,
	}
}

// NewStore returns a Store backed by the DMap named after the cache.
func (c *Client) NewStore(cacheName string) (*Store, error) {
	dm, err := c.client.NewDMap(cacheName)
	if err != nil {
		return nil, fmt.Errorf("failed to create DMap %s: %w", cacheName, err)
	}
	return newStore(dmapAdapter{dm: dm}, c.logger), nil
}

// Health runs a put/get/delete probe against a scratch DMap. Failures are
// reported as *errors.ServiceError.
func (c *Client) Health(ctx context.Context) error {
	dm, err := c.client.NewDMap("_health_check")
	if err != nil {
		return errors.NewServiceError("olric", "failed to create DMap for health check", err)
	}

	testKey := fmt.Sprintf("_health_%d", time.Now().UnixNano())
	testValue := "ok"

	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	if err := dm.Put(ctx, testKey, testValue); err != nil {
		return errors.NewServiceError("olric", "health check put failed", err)
	}

	gr, err := dm.Get(ctx, testKey)
	if err != nil {
		return errors.NewServiceError("olric", "health check get failed", err)
	}

	val, err := gr.String()
	if err != nil {
		return errors.NewServiceError("olric", "health check value decode failed", err)
	}
	if val != testValue {
		return errors.NewServiceError("olric", fmt.Sprintf("health check value mismatch: expected %q, got %q", testValue, val), nil)
	}

	_, _ = dm.Delete(ctx, testKey)
	return nil
}

// Close closes the Olric client connection
func (c *Client) Close(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Close(ctx)
}

// GetClient returns the underlying Olric client
func (c *Client) GetClient() olriclib.Client {
	return c.client
}
