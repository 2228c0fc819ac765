package services

import (
	"time"

	"github.com/you/rentauthsvc/domain"
)

// LockoutPolicy tracks consecutive failed password attempts per credential
// and locks the account for a cooldown window once the threshold is reached.
// It only mutates the credential; callers persist it synchronously before
// reporting a denial so attempt counts survive a crash.
type LockoutPolicy struct {
	threshold int
	cooldown  time.Duration
	clock     domain.Clock
}

// NewLockoutPolicy creates a lockout policy. threshold is the number of
// consecutive failures that triggers a lock.
func NewLockoutPolicy(threshold int, cooldown time.Duration, clock domain.Clock) *LockoutPolicy {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Minute
	}
	return &LockoutPolicy{threshold: threshold, cooldown: cooldown, clock: clock}
}

// CheckLocked reports whether the credential is currently locked and how long
// until retry. An elapsed lock is cleared in place (lazy expiry); the caller
// must persist the mutation.
func (p *LockoutPolicy) CheckLocked(user *domain.User) (time.Duration, bool) {
	if user.LockedUntil == nil {
		return 0, false
	}
	now := p.clock.Now()
	if user.LockedUntil.After(now) {
		return user.LockedUntil.Sub(now), true
	}
	user.LockedUntil = nil
	user.FailedAttempts = 0
	return 0, false
}

// RecordFailure increments the failure count and sets the lock when the
// threshold is reached.
func (p *LockoutPolicy) RecordFailure(user *domain.User) {
	user.FailedAttempts++
	if user.FailedAttempts >= p.threshold {
		lockedUntil := p.clock.Now().Add(p.cooldown)
		user.LockedUntil = &lockedUntil
	}
}

// RecordSuccess resets the failure count and clears any lock.
func (p *LockoutPolicy) RecordSuccess(user *domain.User) {
	user.FailedAttempts = 0
	user.LockedUntil = nil
}
