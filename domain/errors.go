package domain

import (
	"errors"
	"fmt"
	"time"
)

// Credential errors. ErrInvalidCredentials is deliberately generic: callers
// must not learn whether the email or the password was wrong.
var (
	ErrUserNotFound           = errors.New("user not found")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrAccountInactive        = errors.New("account has been deactivated")
)

// Token errors. One sentinel covers refresh, reset, verification and
// mfa-pending tokens so verification failures leave no oracle.
var (
	ErrTokenInvalid = errors.New("invalid or expired token")
)

// MFA errors.
var (
	ErrInvalidMfaCode    = errors.New("invalid mfa code")
	ErrMfaAlreadyEnabled = errors.New("mfa is already enabled")
	ErrMfaNotEnabled     = errors.New("mfa is not enabled")
)

// Wallet challenge errors. ErrInvalidChallenge covers unknown, expired,
// already-consumed challenges and bad signatures uniformly.
var (
	ErrInvalidChallenge       = errors.New("invalid or expired challenge")
	ErrMalformedWalletAddress = errors.New("malformed wallet address")
)

// AccountLockedError is returned while the lockout cooldown is running.
type AccountLockedError struct {
	RetryAfter time.Duration
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account is locked, try again in %d seconds", int(e.RetryAfter.Seconds()))
}

// IsAccountLocked reports whether err is an AccountLockedError and returns it.
func IsAccountLocked(err error) (*AccountLockedError, bool) {
	var locked *AccountLockedError
	if errors.As(err, &locked) {
		return locked, true
	}
	return nil, false
}
