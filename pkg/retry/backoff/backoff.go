// Package backoff provides delay strategies for pkg/retry.
package backoff

import (
	"math"
	"time"
)

// Strategy returns how long to wait before the next attempt. attempts starts
// at 1.
type Strategy func(attempts uint) time.Duration

// BinaryExponential doubles the delay on every attempt, starting from
// baseDelay. Delays that would overflow are clamped to the largest duration.
//
// Ex. BinaryExponential(time.Second) = 1s, 2s, 4s, 8s, ...
func BinaryExponential(baseDelay time.Duration) Strategy {
	return func(attempts uint) time.Duration {
		if attempts == 0 {
			attempts = 1
		}

		shift := attempts - 1
		if shift >= 63 || baseDelay > time.Duration(math.MaxInt64)>>shift {
			return math.MaxInt64
		}
		return baseDelay << shift
	}
}
