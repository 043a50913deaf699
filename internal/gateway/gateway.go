// Package gateway talks to the storefront API. It provides the HTTP client
// used for the catalog, the auth endpoint, and the remote user directory,
// plus a local in-memory user directory that implements the same surface.
package gateway

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrUnauthorized is returned when the server rejects the current
	// token. The client erases the stored credential before returning it.
	ErrUnauthorized = errors.New("unauthorized access")
	// ErrAuthRequired is returned before any request is sent when an
	// authenticated call is attempted without a token.
	ErrAuthRequired = errors.New("authentication required")
	// ErrNotFound is returned for lookups of unknown identifiers.
	ErrNotFound = errors.New("not found")
)

// idMint hands out identifiers for locally simulated user creation. Values
// derive from the current Unix timestamp in milliseconds and are bumped to
// stay strictly increasing.
type idMint struct {
	mu   sync.Mutex
	last int64
}

func (m *idMint) next() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := time.Now().UnixMilli()
	if id <= m.last {
		id = m.last + 1
	}
	m.last = id
	return id
}

// bump raises the floor so seeded identifiers are never reissued.
func (m *idMint) bump(v int64) {
	m.mu.Lock()
	if v > m.last {
		m.last = v
	}
	m.mu.Unlock()
}
