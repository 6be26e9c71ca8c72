// Package clock reads host time, arms the global timer and samples the
// performance counters.
package clock

import (
	"errors"
	"math"
	"time"

	"github.com/reglet-dev/canister-sdk/go/domain/entities"
	"github.com/reglet-dev/canister-sdk/go/domain/ports"
)

var (
	// ErrBeforeEpoch is returned when a timer deadline is not after the Unix
	// epoch. A deadline of 0 ns would disarm the timer instead.
	ErrBeforeEpoch = errors.New("timer deadline not after the Unix epoch")
	// ErrBeyondRange is returned when a timer deadline does not fit in
	// nanoseconds since the epoch.
	ErrBeyondRange = errors.New("timer deadline beyond the representable range")
)

var (
	epoch       = time.Unix(0, 0)
	maxDeadline = time.Unix(0, math.MaxInt64)
)

// Clock wraps the time system calls.
type Clock struct {
	api ports.TimeAPI
}

// New returns a Clock backed by api.
func New(api ports.TimeAPI) *Clock {
	return &Clock{api: api}
}

// Now returns the host time. It is constant within one execution.
func (c *Clock) Now() time.Time {
	return fromNanos(c.api.Time())
}

// SetTimer arms the global timer to fire at t, replacing any armed deadline,
// and returns the previous deadline. A zero t disarms the timer. A zero
// previous deadline means the timer was not armed.
func (c *Clock) SetTimer(t time.Time) (time.Time, error) {
	var ns uint64
	if !t.IsZero() {
		if !t.After(epoch) {
			return time.Time{}, ErrBeforeEpoch
		}
		if t.After(maxDeadline) {
			return time.Time{}, ErrBeyondRange
		}
		ns = uint64(t.UnixNano())
	}
	return fromNanos(c.api.GlobalTimerSet(ns)), nil
}

// After arms the global timer to fire d after the current host time.
func (c *Clock) After(d time.Duration) (time.Time, error) {
	return c.SetTimer(c.Now().Add(d))
}

// Disarm cancels the global timer and returns the previous deadline.
func (c *Clock) Disarm() time.Time {
	return fromNanos(c.api.GlobalTimerSet(0))
}

// PerformanceCounter returns the requested instruction counter.
func (c *Clock) PerformanceCounter(kind entities.PerformanceCounter) uint64 {
	return c.api.PerformanceCounter(uint32(kind))
}

func fromNanos(ns uint64) time.Time {
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, int64(ns)).UTC()
}
