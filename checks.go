package textcmd

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Check decides whether an invocation may run a command. Returning false
// denies quietly; returning an error aborts with that error.
type Check func(ctx context.Context, inv *Invocation) (bool, error)

// CheckFailureError reports the check that denied an invocation.
type CheckFailureError struct {
	// Command is the qualified name of the command owning the check.
	Command string

	// Index is the position of the check in that command's checks.
	Index int
}

func (e *CheckFailureError) Error() string {
	return fmt.Sprintf("check %d of %s failed", e.Index, e.Command)
}

// Is reports whether target is ErrCheckFailed.
func (e *CheckFailureError) Is(target error) bool { return target == ErrCheckFailed }

// All passes when every check passes. Checks run in order and stop at the
// first denial.
func All(checks ...Check) Check {
	return func(ctx context.Context, inv *Invocation) (bool, error) {
		for _, c := range checks {
			ok, err := c(ctx, inv)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
}

// Any passes when at least one check passes. An error stops evaluation.
func Any(checks ...Check) Check {
	return func(ctx context.Context, inv *Invocation) (bool, error) {
		for _, c := range checks {
			ok, err := c(ctx, inv)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	}
}

// CooldownKey picks the bucket an invocation is charged to.
type CooldownKey func(inv *Invocation) string

// PerUser charges each author separately.
func PerUser(inv *Invocation) string { return inv.Message.AuthorID }

// PerChannel charges each channel separately.
func PerChannel(inv *Invocation) string { return inv.Message.ChannelID }

// Global charges every invocation to one bucket.
func Global(*Invocation) string { return "" }

// CooldownLimiter rate limits invocations per key with token buckets.
type CooldownLimiter struct {
	limit rate.Limit
	burst int
	key   CooldownKey

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewCooldown allows uses per period with the given burst, per key. A nil
// key defaults to PerUser.
func NewCooldown(uses int, per time.Duration, burst int, key CooldownKey) *CooldownLimiter {
	if key == nil {
		key = PerUser
	}
	if burst < 1 {
		burst = 1
	}
	return &CooldownLimiter{
		limit:    rate.Every(per / time.Duration(max(uses, 1))),
		burst:    burst,
		key:      key,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Allow charges one use to inv's bucket and reports whether it was
// available.
func (l *CooldownLimiter) Allow(inv *Invocation) bool {
	return l.limiter(l.key(inv)).Allow()
}

// Reset forgets every bucket.
func (l *CooldownLimiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.limiters)
}

func (l *CooldownLimiter) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = lim
	}
	return lim
}

// Check returns the limiter as a Check.
func (l *CooldownLimiter) Check() Check {
	return func(_ context.Context, inv *Invocation) (bool, error) {
		return l.Allow(inv), nil
	}
}

// Cooldown is shorthand for NewCooldown(uses, per, uses, key).Check().
//
//	textcmd.WithChecks(textcmd.Cooldown(3, time.Minute, textcmd.PerUser))
func Cooldown(uses int, per time.Duration, key CooldownKey) Check {
	return NewCooldown(uses, per, uses, key).Check()
}
