package distcache

import (
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Envelope is the on-wire form stores use to keep the limits next to the
// value. Times are unix milliseconds.
type Envelope struct {
	Value      []byte `msgpack:"v"`
	Lifespan   int64  `msgpack:"l"`
	MaxIdle    int64  `msgpack:"m"`
	Created    int64  `msgpack:"c"`
	LastAccess int64  `msgpack:"a,omitempty"`
}

// NewEnvelope builds an envelope for a write at now.
func NewEnvelope(value []byte, lifespan, maxIdle *ExpirationTime, now time.Time) Envelope {
	ms := now.UnixMilli()
	return Envelope{
		Value:      value,
		Lifespan:   lifespan.Seconds(),
		MaxIdle:    maxIdle.Seconds(),
		Created:    ms,
		LastAccess: ms,
	}
}

// Marshal encodes the envelope with msgpack.
func (e Envelope) Marshal() ([]byte, error) {
	b, err := msgpack.Marshal(&e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cache entry: %w", err)
	}
	return b, nil
}

// UnmarshalEnvelope decodes an envelope produced by Marshal.
func UnmarshalEnvelope(b []byte) (Envelope, error) {
	var e Envelope
	if err := msgpack.Unmarshal(b, &e); err != nil {
		return Envelope{}, fmt.Errorf("failed to decode cache entry: %w", err)
	}
	return e, nil
}

// TTL returns how long the entry should live from now, taking both limits
// into account. ok is false when the entry has no limit at all. A
// non-positive ttl with ok true means the entry has already expired.
func (e Envelope) TTL(now time.Time) (ttl time.Duration, ok bool) {
	nowMs := now.UnixMilli()
	if e.Lifespan != NoExpiration {
		ttl = time.Duration(e.Created+e.Lifespan*1000-nowMs) * time.Millisecond
		ok = true
	}
	if e.MaxIdle != NoExpiration {
		last := e.LastAccess
		if last == 0 {
			last = e.Created
		}
		idle := time.Duration(last+e.MaxIdle*1000-nowMs) * time.Millisecond
		if !ok || idle < ttl {
			ttl = idle
		}
		ok = true
	}
	return ttl, ok
}

// Expired reports whether either limit has elapsed at now.
func (e Envelope) Expired(now time.Time) bool {
	ttl, ok := e.TTL(now)
	return ok && ttl <= 0
}

// Metadata converts the envelope into the form returned by GetWithMetadata.
func (e Envelope) Metadata() *ValueWithMetadata {
	return &ValueWithMetadata{
		Value:    e.Value,
		Lifespan: e.Lifespan,
		MaxIdle:  e.MaxIdle,
		Created:  time.UnixMilli(e.Created),
	}
}
