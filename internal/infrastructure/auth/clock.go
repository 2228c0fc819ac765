package auth

import (
	"time"

	"github.com/you/rentauthsvc/domain"
)

// SystemClock implements domain.Clock with the wall clock.
type SystemClock struct{}

func NewSystemClock() domain.Clock { return SystemClock{} }

func (SystemClock) Now() time.Time { return time.Now() }
