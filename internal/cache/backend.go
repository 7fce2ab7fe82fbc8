// Package cache memoises task list results per user and query fingerprint and
// keeps a per-user registry of written keys so a user's entries can be
// invalidated as a whole.
//
// Cache failures never fail a request: the Index treats every backend error
// as a miss and recomputes from the store.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Backend.Get when a key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Backend is a key-value store with expiring entries and string sets.
// Every operation is atomic on a single key; there are no cross-key transactions.
type Backend interface {
	// Get returns the value stored under key, or ErrMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// AddMember adds member to the set stored under setKey and refreshes
	// the set's expiry to ttl.
	AddMember(ctx context.Context, setKey, member string, ttl time.Duration) error

	// Members returns the members of the set stored under setKey.
	// A missing set has no members.
	Members(ctx context.Context, setKey string) ([]string, error)
}
