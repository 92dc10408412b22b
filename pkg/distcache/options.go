package distcache

import "time"

// EntryOptions carries the host-side expiration settings for a write. The
// three fields are meant to be mutually exclusive; when more than one is
// set, the precedence documented on DeriveExpiration applies. A zero field
// is unset.
type EntryOptions struct {
	// AbsoluteExpiration is a fixed wall-clock instant at which the entry expires.
	AbsoluteExpiration *time.Time

	// AbsoluteExpirationRelativeToNow expires the entry this long after the write.
	AbsoluteExpirationRelativeToNow time.Duration

	// SlidingExpiration expires the entry after this long without access.
	SlidingExpiration time.Duration
}

// SetAbsoluteExpiration sets a fixed expiration instant and returns the options.
func (o EntryOptions) SetAbsoluteExpiration(t time.Time) EntryOptions {
	o.AbsoluteExpiration = &t
	return o
}

// SetAbsoluteExpirationRelativeToNow sets an expiration offset from the write.
func (o EntryOptions) SetAbsoluteExpirationRelativeToNow(d time.Duration) EntryOptions {
	o.AbsoluteExpirationRelativeToNow = d
	return o
}

// SetSlidingExpiration sets an idle timeout.
func (o EntryOptions) SetSlidingExpiration(d time.Duration) EntryOptions {
	o.SlidingExpiration = d
	return o
}

// IsZero reports whether no expiration field is set.
func (o EntryOptions) IsZero() bool {
	return o.AbsoluteExpiration == nil && o.AbsoluteExpirationRelativeToNow == 0 && o.SlidingExpiration == 0
}
