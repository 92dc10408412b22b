package olric

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DeBrosOfficial/distcache/pkg/distcache"
	cacheerrors "github.com/DeBrosOfficial/distcache/pkg/errors"
	"github.com/DeBrosOfficial/distcache/pkg/logging"
	olriclib "github.com/olric-data/olric"
	"go.uber.org/zap"
)

// dmap is the slice of the Olric DMap API the store needs.
type dmap interface {
	Name() string
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type dmapAdapter struct {
	dm olriclib.DMap
}

func (d dmapAdapter) Name() string {
	return d.dm.Name()
}

func (d dmapAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	gr, err := d.dm.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var raw []byte
	if err := gr.Scan(&raw); err != nil {
		return nil, fmt.Errorf("failed to read value: %w", err)
	}
	return raw, nil
}

func (d dmapAdapter) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl > 0 {
		return d.dm.Put(ctx, key, value, olriclib.EX(ttl))
	}
	return d.dm.Put(ctx, key, value)
}

func (d dmapAdapter) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return d.dm.Expire(ctx, key, ttl)
}

func (d dmapAdapter) Delete(ctx context.Context, key string) error {
	_, err := d.dm.Delete(ctx, key)
	return err
}

// Store keeps one cache in an Olric DMap. Each value is wrapped in a
// distcache.Envelope so the lifespan and max-idle it was written with can
// be read back. Olric's own key TTL enforces both limits: the write sets it
// to the shorter of the two, and every read of an entry with a max-idle
// pushes it out again.
type Store struct {
	dm     dmap
	logger *logging.ColoredLogger
	now    func() time.Time
}

var _ distcache.Store = (*Store)(nil)

func newStore(dm dmap, logger *logging.ColoredLogger) *Store {
	return &Store{dm: dm, logger: logger, now: time.Now}
}

func isKeyNotFound(err error) bool {
	return errors.Is(err, olriclib.ErrKeyNotFound)
}

func (s *Store) load(ctx context.Context, key string) (*distcache.Envelope, error) {
	raw, err := s.dm.Get(ctx, key)
	if err != nil {
		if isKeyNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	env, err := distcache.UnmarshalEnvelope(raw)
	if err != nil {
		return nil, err
	}

	if env.MaxIdle == distcache.NoExpiration {
		return &env, nil
	}

	now := s.now()
	env.LastAccess = now.UnixMilli()
	ttl, _ := env.TTL(now)
	if ttl <= 0 {
		return nil, nil
	}
	if err := s.dm.Expire(ctx, key, ttl); err != nil {
		if isKeyNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to reset idle timeout: %w", err)
	}
	return &env, nil
}

// Get returns the value for key. Reading an entry with a max-idle resets its idle clock.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	env, err := s.load(ctx, key)
	if err != nil || env == nil {
		return nil, false, err
	}
	return env.Value, true, nil
}

// GetWithMetadata returns the value and the limits it was written with.
func (s *Store) GetWithMetadata(ctx context.Context, key string) (*distcache.ValueWithMetadata, error) {
	env, err := s.load(ctx, key)
	if err != nil || env == nil {
		return nil, err
	}
	return env.Metadata(), nil
}

// Put writes value with the given limits.
func (s *Store) Put(ctx context.Context, key string, value []byte, lifespan, maxIdle *distcache.ExpirationTime) error {
	now := s.now()
	env := distcache.NewEnvelope(value, lifespan, maxIdle, now)
	ttl, limited := env.TTL(now)
	if limited && ttl <= 0 {
		return cacheerrors.NewValidationError("expiration", "must be positive", fmt.Sprintf("lifespan=%s max_idle=%s", lifespan, maxIdle))
	}

	b, err := env.Marshal()
	if err != nil {
		return err
	}
	if err := s.dm.Put(ctx, key, b, ttl); err != nil {
		return err
	}

	s.logger.ComponentDebug(logging.ComponentOlric, "dmap put",
		zap.String("dmap", s.dm.Name()),
		zap.String("key", key),
		zap.Duration("ttl", ttl))
	return nil
}

// Remove deletes key. A missing key is not an error.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.dm.Delete(ctx, key); err != nil && !isKeyNotFound(err) {
		return err
	}
	return nil
}
