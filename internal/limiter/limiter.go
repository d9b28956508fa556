// Package limiter defines interfaces and implementations for request-rate admission.
package limiter

import "time"

// Gate controls per-identity request admission.
type Gate interface {
	// Allow reports whether a request for the identity is admitted and,
	// when denied, how long until the current window resets.
	Allow(identity string) (bool, time.Duration)
}
