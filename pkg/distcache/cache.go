package distcache

import (
	"context"
	"fmt"
	"time"

	"github.com/DeBrosOfficial/distcache/pkg/errors"
	"github.com/DeBrosOfficial/distcache/pkg/logging"
	"go.uber.org/zap"
)

// Cache is the host-facing distributed cache contract. Each operation has a
// blocking form and an Async form; the blocking form waits for the Async
// one. Cancelling ctx fails the operation.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	GetAsync(ctx context.Context, key string) *Pending[[]byte]

	Set(ctx context.Context, key string, value []byte, opts EntryOptions) error
	SetAsync(ctx context.Context, key string, value []byte, opts EntryOptions) *Pending[struct{}]

	Refresh(ctx context.Context, key string) error
	RefreshAsync(ctx context.Context, key string) *Pending[struct{}]

	Remove(ctx context.Context, key string) error
	RemoveAsync(ctx context.Context, key string) *Pending[struct{}]

	Close() error
}

// Adapter implements Cache on top of a Store. It keeps no state of its own
// besides the store handle.
type Adapter struct {
	name   string
	store  Store
	logger *logging.ColoredLogger
	now    func() time.Time
}

var _ Cache = (*Adapter)(nil)

// Option customizes an Adapter.
type Option func(*Adapter)

// WithLogger sets the adapter logger.
func WithLogger(logger *logging.ColoredLogger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithClock overrides the time source used for absolute expirations.
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAdapter binds a named cache to store.
func NewAdapter(name string, store Store, opts ...Option) (*Adapter, error) {
	if name == "" {
		return nil, errors.NewValidationError("name", "cache name is required", name)
	}
	if store == nil {
		return nil, errors.NewValidationError("store", "store is required", nil)
	}

	a := &Adapter{
		name:   name,
		store:  store,
		logger: logging.NewNopLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Name returns the cache name the adapter was bound to.
func (a *Adapter) Name() string {
	return a.name
}

// Get returns the value for key, or nil when the key is absent.
func (a *Adapter) Get(ctx context.Context, key string) ([]byte, error) {
	return a.GetAsync(ctx, key).Wait()
}

// GetAsync is the asynchronous form of Get.
func (a *Adapter) GetAsync(ctx context.Context, key string) *Pending[[]byte] {
	return run(func() ([]byte, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		value, found, err := a.store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("get %q from cache %s: %w", key, a.name, err)
		}
		if !found {
			return nil, nil
		}
		if value == nil {
			return []byte{}, nil
		}
		return cloneBytes(value), nil
	})
}

// Set writes value under key with the limits derived from opts.
func (a *Adapter) Set(ctx context.Context, key string, value []byte, opts EntryOptions) error {
	return a.SetAsync(ctx, key, value, opts).Err()
}

// SetAsync is the asynchronous form of Set. value is copied before the call
// returns, so the caller may reuse it immediately.
func (a *Adapter) SetAsync(ctx context.Context, key string, value []byte, opts EntryOptions) *Pending[struct{}] {
	value = cloneBytes(value)
	return run(func() (struct{}, error) {
		if err := ctx.Err(); err != nil {
			return struct{}{}, err
		}
		exp, err := DeriveExpiration(opts, a.now())
		if err != nil {
			return struct{}{}, err
		}
		if err := a.store.Put(ctx, key, value, exp.Lifespan, exp.MaxIdle); err != nil {
			return struct{}{}, fmt.Errorf("set %q in cache %s: %w", key, a.name, err)
		}
		a.logger.ComponentDebug(logging.ComponentCache, "entry written",
			zap.String("cache", a.name),
			zap.String("key", key),
			zap.Int("bytes", len(value)),
			zap.Stringer("lifespan", exp.Lifespan),
			zap.Stringer("max_idle", exp.MaxIdle))
		return struct{}{}, nil
	})
}

// Refresh rewrites an entry with its current limits so the store resets its
// idle clock. Absent entries and entries without a lifespan are left alone.
func (a *Adapter) Refresh(ctx context.Context, key string) error {
	return a.RefreshAsync(ctx, key).Err()
}

// RefreshAsync is the asynchronous form of Refresh.
func (a *Adapter) RefreshAsync(ctx context.Context, key string) *Pending[struct{}] {
	return run(func() (struct{}, error) {
		if err := ctx.Err(); err != nil {
			return struct{}{}, err
		}
		vwm, err := a.store.GetWithMetadata(ctx, key)
		if err != nil {
			return struct{}{}, fmt.Errorf("refresh %q in cache %s: %w", key, a.name, err)
		}
		if vwm == nil || vwm.Lifespan == NoExpiration {
			return struct{}{}, nil
		}

		lifespan := SecondsExpiration(vwm.Lifespan)
		var maxIdle *ExpirationTime
		if vwm.MaxIdle != NoExpiration {
			maxIdle = SecondsExpiration(vwm.MaxIdle)
		}
		if err := a.store.Put(ctx, key, vwm.Value, lifespan, maxIdle); err != nil {
			return struct{}{}, fmt.Errorf("refresh %q in cache %s: %w", key, a.name, err)
		}
		return struct{}{}, nil
	})
}

// Remove deletes key. Removing an absent key succeeds.
func (a *Adapter) Remove(ctx context.Context, key string) error {
	return a.RemoveAsync(ctx, key).Err()
}

// RemoveAsync is the asynchronous form of Remove.
func (a *Adapter) RemoveAsync(ctx context.Context, key string) *Pending[struct{}] {
	return run(func() (struct{}, error) {
		if err := ctx.Err(); err != nil {
			return struct{}{}, err
		}
		if err := a.store.Remove(ctx, key); err != nil {
			return struct{}{}, fmt.Errorf("remove %q from cache %s: %w", key, a.name, err)
		}
		return struct{}{}, nil
	})
}

// Close is a no-op: the store handle belongs to whoever created it.
func (a *Adapter) Close() error {
	return nil
}

// cloneBytes copies b so callers and stores never share backing arrays.
// A non-nil empty slice stays non-nil.
func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
