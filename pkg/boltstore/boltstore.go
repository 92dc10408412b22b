// Package boltstore keeps distcache entries in a local bbolt file. It is
// the single-node backend used for development and for deployments without
// an Olric cluster.
package boltstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DeBrosOfficial/distcache/pkg/distcache"
	"github.com/DeBrosOfficial/distcache/pkg/logging"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

const defaultBucketPrefix = "cache:"

// Options configures Open.
type Options struct {
	// BucketPrefix is prepended to every cache name to form its bucket.
	BucketPrefix string
	// Timeout is how long Open waits for the file lock.
	Timeout time.Duration
}

// DB is an open bbolt file holding one bucket per cache.
type DB struct {
	db     *bolt.DB
	prefix []byte
	logger *logging.ColoredLogger
	now    func() time.Time
}

// Open initializes or opens the database at path.
func Open(path string, opts Options, logger *logging.ColoredLogger) (*DB, error) {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Second
	}
	prefix := opts.BucketPrefix
	if prefix == "" {
		prefix = defaultBucketPrefix
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database %s: %w", path, err)
	}

	logger.ComponentInfo(logging.ComponentBolt, "Opened bolt cache database", zap.String("path", path))
	return &DB{db: db, prefix: []byte(prefix), logger: logger, now: time.Now}, nil
}

// Close closes the underlying database.
func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

func (d *DB) bucketName(cache string) []byte {
	return append(append([]byte(nil), d.prefix...), cache...)
}

// Store returns the store for the named cache, creating its bucket.
func (d *DB) Store(cache string) (*Store, error) {
	name := d.bucketName(cache)
	if err := d.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(name)
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to create bucket for cache %s: %w", cache, err)
	}
	return &Store{db: d, bucket: name}, nil
}

// Sweep deletes every expired entry across all caches and returns how many
// were removed. Entries that cannot be decoded are logged and kept.
func (d *DB) Sweep(ctx context.Context) (int, error) {
	now := d.now()
	removed := 0
	err := d.db.Update(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, b *bolt.Bucket) error {
			if !bytes.HasPrefix(name, d.prefix) {
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			var expired [][]byte
			if err := b.ForEach(func(k, v []byte) error {
				env, err := distcache.UnmarshalEnvelope(v)
				if err != nil {
					// Reads of this key fail the same way; leave it for an operator.
					d.logger.ComponentWarn(logging.ComponentBolt, "Skipping undecodable entry",
						zap.ByteString("bucket", name),
						zap.ByteString("key", k),
						zap.Error(err))
					return nil
				}
				if env.Expired(now) {
					expired = append(expired, append([]byte(nil), k...))
				}
				return nil
			}); err != nil {
				return err
			}
			for _, k := range expired {
				if err := b.Delete(k); err != nil {
					return err
				}
			}
			removed += len(expired)
			return nil
		})
	})
	if err != nil {
		return 0, fmt.Errorf("sweep failed: %w", err)
	}
	if removed > 0 {
		d.logger.ComponentDebug(logging.ComponentBolt, "Swept expired entries", zap.Int("removed", removed))
	}
	return removed, nil
}

// RunSweeper calls Sweep every interval until ctx is done.
func (d *DB) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := d.Sweep(ctx); err != nil && !errors.Is(err, context.Canceled) {
				d.logger.ComponentWarn(logging.ComponentBolt, "Sweep failed", zap.Error(err))
			}
		}
	}
}
