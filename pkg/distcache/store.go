package distcache

import (
	"context"
	"time"
)

// Store is the keyed remote cache the adapter delegates to. Implementations
// must honor ctx on every call and must not commit a write whose ctx was
// cancelled before the write reached the backend.
type Store interface {
	// Get returns the value stored under key. found is false for an absent
	// or expired key; that is not an error.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// GetWithMetadata returns the value together with its limits, or nil
	// when the key is absent.
	GetWithMetadata(ctx context.Context, key string) (*ValueWithMetadata, error)

	// Put writes value under key. A nil lifespan or maxIdle means no limit.
	Put(ctx context.Context, key string, value []byte, lifespan, maxIdle *ExpirationTime) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}

// ValueWithMetadata is a stored value plus the limits it was written with.
// Lifespan and MaxIdle are in seconds, NoExpiration when unset.
type ValueWithMetadata struct {
	Value    []byte
	Lifespan int64
	MaxIdle  int64
	Created  time.Time
}
