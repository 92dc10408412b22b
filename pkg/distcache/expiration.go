package distcache

import (
	"fmt"
	"time"

	"github.com/DeBrosOfficial/distcache/pkg/errors"
)

// NoExpiration is the sentinel a store reports for an unset lifespan or max-idle.
const NoExpiration int64 = -1

// TimeUnit is the unit of an ExpirationTime value.
type TimeUnit int

const (
	Seconds TimeUnit = iota
	Milliseconds
	Minutes
	Hours
	Days
)

func (u TimeUnit) String() string {
	switch u {
	case Seconds:
		return "SECONDS"
	case Milliseconds:
		return "MILLISECONDS"
	case Minutes:
		return "MINUTES"
	case Hours:
		return "HOURS"
	case Days:
		return "DAYS"
	default:
		return fmt.Sprintf("TimeUnit(%d)", int(u))
	}
}

func (u TimeUnit) duration() time.Duration {
	switch u {
	case Milliseconds:
		return time.Millisecond
	case Minutes:
		return time.Minute
	case Hours:
		return time.Hour
	case Days:
		return 24 * time.Hour
	default:
		return time.Second
	}
}

// ExpirationTime is a lifespan or max-idle limit in the store's vocabulary.
// A nil *ExpirationTime means "no limit".
type ExpirationTime struct {
	Value int64
	Unit  TimeUnit
}

// SecondsExpiration returns an ExpirationTime of n seconds.
func SecondsExpiration(n int64) *ExpirationTime {
	return &ExpirationTime{Value: n, Unit: Seconds}
}

// Duration converts the expiration to a time.Duration. Nil yields 0.
func (e *ExpirationTime) Duration() time.Duration {
	if e == nil {
		return 0
	}
	return time.Duration(e.Value) * e.Unit.duration()
}

// Seconds returns the expiration in whole seconds, or NoExpiration when e is nil.
func (e *ExpirationTime) Seconds() int64 {
	if e == nil {
		return NoExpiration
	}
	return int64(e.Duration() / time.Second)
}

func (e *ExpirationTime) String() string {
	if e == nil {
		return "none"
	}
	return fmt.Sprintf("%d %s", e.Value, e.Unit)
}

// Expiration is the pair of limits applied to a single write.
type Expiration struct {
	Lifespan *ExpirationTime
	MaxIdle  *ExpirationTime
}

// IsZero reports whether neither limit is set.
func (e Expiration) IsZero() bool {
	return e.Lifespan == nil && e.MaxIdle == nil
}

// DeriveExpiration translates host options into store limits.
//
// Max-idle is the relative-to-now offset when set, otherwise unset.
// Lifespan is the relative-to-now offset when set, otherwise the time left
// until AbsoluteExpiration, otherwise unset. Sliding expiration is validated
// but does not map onto either limit.
//
// Negative durations and absolute instants at or before now are rejected.
// Positive durations shorter than a second round up to one second.
func DeriveExpiration(opts EntryOptions, now time.Time) (Expiration, error) {
	if opts.AbsoluteExpirationRelativeToNow < 0 {
		return Expiration{}, errors.NewValidationError("absolute_expiration_relative_to_now",
			"must be positive", opts.AbsoluteExpirationRelativeToNow.String())
	}
	if opts.SlidingExpiration < 0 {
		return Expiration{}, errors.NewValidationError("sliding_expiration",
			"must be positive", opts.SlidingExpiration.String())
	}

	var exp Expiration
	if rel := opts.AbsoluteExpirationRelativeToNow; rel > 0 {
		exp.MaxIdle = SecondsExpiration(wholeSeconds(rel))
		exp.Lifespan = SecondsExpiration(wholeSeconds(rel))
		return exp, nil
	}

	if opts.AbsoluteExpiration != nil {
		remaining := opts.AbsoluteExpiration.Sub(now)
		if remaining <= 0 {
			return Expiration{}, errors.NewValidationError("absolute_expiration",
				"must be in the future", opts.AbsoluteExpiration.Format(time.RFC3339))
		}
		exp.Lifespan = SecondsExpiration(wholeSeconds(remaining))
	}

	return exp, nil
}

func wholeSeconds(d time.Duration) int64 {
	secs := int64(d / time.Second)
	if secs == 0 && d > 0 {
		return 1
	}
	return secs
}
