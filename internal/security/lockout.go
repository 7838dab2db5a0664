package security

import (
	"time"

	"go-commerce-api/internal/model"
)

// LockoutPolicy bounds consecutive failed logins. Once Threshold failures
// accumulate, the account is denied until the lock window elapses. The lock
// self-heals: after expiry the account behaves as unlocked, and the counter
// is cleared on the next successful login rather than on read.
type LockoutPolicy struct {
	Threshold int
	Duration  time.Duration
}

const (
	DefaultLockoutThreshold = 5
	DefaultLockoutDuration  = 2 * time.Hour
)

func NewLockoutPolicy(threshold int, duration time.Duration) LockoutPolicy {
	if threshold <= 0 {
		threshold = DefaultLockoutThreshold
	}
	if duration <= 0 {
		duration = DefaultLockoutDuration
	}
	return LockoutPolicy{Threshold: threshold, Duration: duration}
}

// Locked is a pure read: it never mutates the account and is safe to call
// any number of times per request.
func (p LockoutPolicy) Locked(a model.Account, now time.Time) bool {
	return a.LockedUntil != nil && now.Before(*a.LockedUntil)
}

// RetryAfter reports how long until an active lock expires. Zero when the
// account is not locked.
func (p LockoutPolicy) RetryAfter(a model.Account, now time.Time) time.Duration {
	if !p.Locked(a, now) {
		return 0
	}
	return a.LockedUntil.Sub(now)
}

// OnFailedAttempt returns the account state after one more failed login.
// Reaching the threshold sets the lock window. The stored lock timestamp of
// an expired window is left alone; Locked ignores it once it has passed.
func (p LockoutPolicy) OnFailedAttempt(a model.Account, now time.Time) model.Account {
	a.FailedLoginAttempts++
	if a.FailedLoginAttempts >= p.Threshold && !p.Locked(a, now) {
		until := now.Add(p.Duration)
		a.LockedUntil = &until
	}
	a.UpdatedAt = now
	return a
}

// OnSuccessfulAttempt clears the counter and any lock, and stamps the login
// time.
func (p LockoutPolicy) OnSuccessfulAttempt(a model.Account, now time.Time) model.Account {
	a.FailedLoginAttempts = 0
	a.LockedUntil = nil
	a.LastLogin = &now
	a.UpdatedAt = now
	return a
}
