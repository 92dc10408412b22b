package boltstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/DeBrosOfficial/distcache/pkg/distcache"
	bolt "go.etcd.io/bbolt"
)

// Store is one cache inside a DB. Expired entries read as absent and are
// deleted on the read that notices them.
type Store struct {
	db     *DB
	bucket []byte
}

var _ distcache.Store = (*Store)(nil)

var errBucketMissing = errors.New("bucket missing")

// load reads key inside an update transaction, dropping it if expired and
// recording the access for entries with a max-idle.
func (s *Store) load(ctx context.Context, key string) (*distcache.Envelope, error) {
	var out *distcache.Envelope
	err := s.db.db.Update(func(tx *bolt.Tx) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		b := tx.Bucket(s.bucket)
		if b == nil {
			return errBucketMissing
		}
		raw := b.Get([]byte(key))
		if raw == nil {
			return nil
		}
		env, err := distcache.UnmarshalEnvelope(raw)
		if err != nil {
			return err
		}

		now := s.db.now()
		if env.Expired(now) {
			return b.Delete([]byte(key))
		}
		if env.MaxIdle != distcache.NoExpiration {
			env.LastAccess = now.UnixMilli()
			buf, err := env.Marshal()
			if err != nil {
				return err
			}
			if err := b.Put([]byte(key), buf); err != nil {
				return err
			}
		}
		if env.Value != nil {
			env.Value = append([]byte{}, env.Value...)
		}
		out = &env
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bolt read %q: %w", key, err)
	}
	return out, nil
}

// Get returns the value for key.
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

// Put writes value with the given limits in a single transaction.
func (s *Store) Put(ctx context.Context, key string, value []byte, lifespan, maxIdle *distcache.ExpirationTime) error {
	env := distcache.NewEnvelope(value, lifespan, maxIdle, s.db.now())
	buf, err := env.Marshal()
	if err != nil {
		return err
	}
	err = s.db.db.Update(func(tx *bolt.Tx) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		b := tx.Bucket(s.bucket)
		if b == nil {
			return errBucketMissing
		}
		return b.Put([]byte(key), buf)
	})
	if err != nil {
		return fmt.Errorf("bolt write %q: %w", key, err)
	}
	return nil
}

// Remove deletes key. Deleting a missing key is a no-op in bbolt.
func (s *Store) Remove(ctx context.Context, key string) error {
	err := s.db.db.Update(func(tx *bolt.Tx) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		b := tx.Bucket(s.bucket)
		if b == nil {
			return errBucketMissing
		}
		return b.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("bolt delete %q: %w", key, err)
	}
	return nil
}
