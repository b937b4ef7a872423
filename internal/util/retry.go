// ABOUTME: Jittered exponential backoff for retrying busy database transactions
// ABOUTME: Delays stay short because a user is waiting on the turn being retried
package util

import (
	"math/rand/v2"
	"time"
)

// DefaultMaxDelay caps a single wait between transaction attempts
const DefaultMaxDelay = time.Second

// Backoff computes the wait before a retry
type Backoff struct {
	Base time.Duration
	Max  time.Duration // zero means DefaultMaxDelay
}

// Delay returns the wait before retry number attempt (1-based).
// The first retry waits about Base, each later one twice as long, within ±25%.
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt <= 0 || b.Base <= 0 {
		return 0
	}
	limit := b.Max
	if limit <= 0 {
		limit = DefaultMaxDelay
	}

	d := b.Base
	for i := 1; i < attempt && d < limit; i++ {
		d *= 2
	}
	if d > limit {
		d = limit
	}

	quarter := d / 4
	if quarter <= 0 {
		return d
	}
	return d - quarter + time.Duration(rand.Int64N(int64(2*quarter)+1))
}
