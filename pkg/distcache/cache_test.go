package distcache

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"
)

func newTestAdapter(t *testing.T, store Store, now time.Time) *Adapter {
	t.Helper()
	a, err := NewAdapter("sessions", store, WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("NewAdapter() error = %v", err)
	}
	return a
}

func TestAdapter_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	a := newTestAdapter(t, store, time.Now())

	values := map[string][]byte{
		"text":   []byte("hello"),
		"binary": {0x00, 0xff, 0x10, 0x00},
		"empty":  {},
	}

	for key, value := range values {
		t.Run(key, func(t *testing.T) {
			if err := a.Set(ctx, key, value, EntryOptions{}); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			got, err := a.Get(ctx, key)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got == nil {
				t.Fatal("Get() returned nil for a stored key")
			}
			if !bytes.Equal(got, value) {
				t.Errorf("Get() = %v, want %v", got, value)
			}
		})
	}
}

func TestAdapter_GetAbsent(t *testing.T) {
	ctx := context.Background()
	a := newTestAdapter(t, newFakeStore(), time.Now())

	got, err := a.Get(ctx, "missing")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != nil {
		t.Errorf("Get() = %v, want nil", got)
	}
}

func TestAdapter_RemoveThenGet(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	a := newTestAdapter(t, store, time.Now())

	if err := a.Set(ctx, "k", []byte("v"), EntryOptions{}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	for _, key := range []string{"k", "never-written"} {
		if err := a.Remove(ctx, key); err != nil {
			t.Fatalf("Remove(%q) error = %v", key, err)
		}
		got, err := a.Get(ctx, key)
		if err != nil {
			t.Fatalf("Get(%q) error = %v", key, err)
		}
		if got != nil {
			t.Errorf("Get(%q) after Remove = %v, want nil", key, got)
		}
	}
}

func TestAdapter_SetAppliesDerivedExpiration(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	t.Run("relative to now", func(t *testing.T) {
		store := newFakeStore()
		a := newTestAdapter(t, store, now)
		opts := EntryOptions{}.SetAbsoluteExpirationRelativeToNow(10 * time.Second)
		if err := a.Set(ctx, "k", []byte("v"), opts); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		put := store.lastPut()
		if put.lifespan.Seconds() != 10 || put.maxIdle.Seconds() != 10 {
			t.Errorf("put lifespan=%v maxIdle=%v, want 10s/10s", put.lifespan, put.maxIdle)
		}
	})

	t.Run("absolute instant", func(t *testing.T) {
		store := newFakeStore()
		a := newTestAdapter(t, store, now)
		opts := EntryOptions{}.SetAbsoluteExpiration(now.Add(30 * time.Second))
		if err := a.Set(ctx, "k", []byte("v"), opts); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		put := store.lastPut()
		if put.lifespan.Seconds() != 30 {
			t.Errorf("put lifespan = %v, want 30 SECONDS", put.lifespan)
		}
		if put.maxIdle != nil {
			t.Errorf("put maxIdle = %v, want none", put.maxIdle)
		}
	})

	t.Run("no options", func(t *testing.T) {
		store := newFakeStore()
		a := newTestAdapter(t, store, now)
		if err := a.Set(ctx, "k", []byte("v"), EntryOptions{}); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		put := store.lastPut()
		if put.lifespan != nil || put.maxIdle != nil {
			t.Errorf("put lifespan=%v maxIdle=%v, want none", put.lifespan, put.maxIdle)
		}
	})
}

func TestAdapter_SetRejectsPastExpirationWithoutWrite(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	a := newTestAdapter(t, store, now)

	err := a.Set(context.Background(), "k", []byte("v"), EntryOptions{}.SetAbsoluteExpiration(now.Add(-time.Second)))
	if err == nil {
		t.Fatal("expected error for past absolute expiration")
	}
	if store.putCount() != 0 {
		t.Errorf("store received %d puts, want 0", store.putCount())
	}
}

func TestAdapter_CopiesValues(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	a := newTestAdapter(t, store, time.Now())

	value := []byte("abc")
	if err := a.Set(ctx, "k", value, EntryOptions{}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	value[0] = 'z'

	got, err := a.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "abc" {
		t.Errorf("stored value changed through caller slice: %q", got)
	}

	got[1] = 'z'
	again, _ := a.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("stored value changed through returned slice: %q", again)
	}
}

func TestAdapter_RefreshNeverExpiringIsNoop(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	a := newTestAdapter(t, store, time.Now())

	if err := a.Set(ctx, "k", []byte("v"), EntryOptions{}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	before := store.putCount()

	if err := a.Refresh(ctx, "k"); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if err := a.Refresh(ctx, "missing"); err != nil {
		t.Fatalf("Refresh(missing) error = %v", err)
	}
	if store.putCount() != before {
		t.Errorf("Refresh issued %d writes, want 0", store.putCount()-before)
	}
}

func TestAdapter_RefreshRewritesLimits(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		lifespan    *ExpirationTime
		maxIdle     *ExpirationTime
		wantMaxIdle int64
	}{
		{"lifespan and max idle", SecondsExpiration(60), SecondsExpiration(15), 15},
		{"lifespan only", SecondsExpiration(60), nil, NoExpiration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			store.entries["k"] = fakeEntry{value: []byte("v"), lifespan: tt.lifespan, maxIdle: tt.maxIdle}
			a := newTestAdapter(t, store, time.Now())

			if err := a.Refresh(ctx, "k"); err != nil {
				t.Fatalf("Refresh() error = %v", err)
			}
			if store.putCount() != 1 {
				t.Fatalf("Refresh issued %d writes, want 1", store.putCount())
			}
			put := store.lastPut()
			if put.key != "k" || string(put.value) != "v" {
				t.Errorf("Refresh wrote %q=%q, want k=v", put.key, put.value)
			}
			if put.lifespan.Seconds() != 60 || put.lifespan.Unit != Seconds {
				t.Errorf("lifespan = %v, want 60 SECONDS", put.lifespan)
			}
			if put.maxIdle.Seconds() != tt.wantMaxIdle {
				t.Errorf("max idle = %v, want %d", put.maxIdle, tt.wantMaxIdle)
			}
		})
	}
}

func TestAdapter_CancelBeforeStart(t *testing.T) {
	store := newFakeStore()
	a := newTestAdapter(t, store, time.Now())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := a.Set(ctx, "k", []byte("v"), EntryOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("Set() error = %v, want context.Canceled", err)
	}
	if _, err := a.Get(ctx, "k"); !errors.Is(err, context.Canceled) {
		t.Fatalf("Get() error = %v, want context.Canceled", err)
	}
	if store.putCount() != 0 || len(store.entries) != 0 {
		t.Errorf("store changed after cancelled Set")
	}
}

func TestAdapter_CancelDuringWrite(t *testing.T) {
	store := newFakeStore()
	store.block = make(chan struct{})
	store.entered = make(chan struct{})
	a := newTestAdapter(t, store, time.Now())

	ctx, cancel := context.WithCancel(context.Background())
	pending := a.SetAsync(ctx, "k", []byte("v"), EntryOptions{})

	select {
	case <-store.entered:
	case <-time.After(time.Second):
		t.Fatal("store was never called")
	}
	cancel()

	select {
	case <-pending.Done():
	case <-time.After(time.Second):
		t.Fatal("cancelled SetAsync did not complete")
	}
	if err := pending.Err(); !errors.Is(err, context.Canceled) {
		t.Fatalf("SetAsync() error = %v, want context.Canceled", err)
	}
	if store.putCount() != 0 || len(store.entries) != 0 {
		t.Errorf("store changed after cancelled SetAsync")
	}
}

func TestAdapter_PropagatesStoreErrors(t *testing.T) {
	store := newFakeStore()
	store.failGet = errBackend
	a := newTestAdapter(t, store, time.Now())

	_, err := a.Get(context.Background(), "k")
	if !errors.Is(err, errBackend) {
		t.Fatalf("Get() error = %v, want %v", err, errBackend)
	}
}

func TestAdapter_AsyncMatchesSync(t *testing.T) {
	ctx := context.Background()
	a := newTestAdapter(t, newFakeStore(), time.Now())

	if err := a.SetAsync(ctx, "k", []byte("v"), EntryOptions{}).Err(); err != nil {
		t.Fatalf("SetAsync() error = %v", err)
	}
	got, err := a.GetAsync(ctx, "k").Wait()
	if err != nil || string(got) != "v" {
		t.Fatalf("GetAsync() = %q, %v", got, err)
	}
	if err := a.RefreshAsync(ctx, "k").Err(); err != nil {
		t.Fatalf("RefreshAsync() error = %v", err)
	}
	if err := a.RemoveAsync(ctx, "k").Err(); err != nil {
		t.Fatalf("RemoveAsync() error = %v", err)
	}
	if got, _ := a.Get(ctx, "k"); got != nil {
		t.Errorf("Get() after RemoveAsync = %q", got)
	}
}

func TestNewAdapter_Validation(t *testing.T) {
	if _, err := NewAdapter("", newFakeStore()); err == nil {
		t.Error("expected error for empty name")
	}
	if _, err := NewAdapter("sessions", nil); err == nil {
		t.Error("expected error for nil store")
	}
}
