package distcache

import (
	"context"
	"errors"
	"sync"
	"time"
)

type fakeEntry struct {
	value    []byte
	lifespan *ExpirationTime
	maxIdle  *ExpirationTime
}

type putCall struct {
	key      string
	value    []byte
	lifespan *ExpirationTime
	maxIdle  *ExpirationTime
}

// fakeStore is an in-memory Store that records every write. When block is
// non-nil, Put waits on it (or on ctx) before committing.
type fakeStore struct {
	mu      sync.Mutex
	entries map[string]fakeEntry
	puts    []putCall
	removes int
	block   chan struct{}
	entered chan struct{}
	failGet error
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: make(map[string]fakeEntry)}
}

func (f *fakeStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet != nil {
		return nil, false, f.failGet
	}
	e, ok := f.entries[key]
	if !ok {
		return nil, false, nil
	}
	return e.value, true, nil
}

func (f *fakeStore) GetWithMetadata(ctx context.Context, key string) (*ValueWithMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[key]
	if !ok {
		return nil, nil
	}
	return &ValueWithMetadata{
		Value:    e.value,
		Lifespan: e.lifespan.Seconds(),
		MaxIdle:  e.maxIdle.Seconds(),
		Created:  time.Now(),
	}, nil
}

func (f *fakeStore) Put(ctx context.Context, key string, value []byte, lifespan, maxIdle *ExpirationTime) error {
	if f.block != nil {
		if f.entered != nil {
			close(f.entered)
		}
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = fakeEntry{value: value, lifespan: lifespan, maxIdle: maxIdle}
	f.puts = append(f.puts, putCall{key: key, value: value, lifespan: lifespan, maxIdle: maxIdle})
	return nil
}

func (f *fakeStore) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, key)
	f.removes++
	return nil
}

func (f *fakeStore) putCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.puts)
}

func (f *fakeStore) lastPut() putCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.puts[len(f.puts)-1]
}

var errBackend = errors.New("connection reset by peer")
