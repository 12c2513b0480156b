// Package tokenstore holds the one artifact the storefront persists at
// the boundary: the bearer token, kept under a single well-known key
// and cleared on logout or on any unauthorized response.
package tokenstore

import (
	"context"
	"errors"
	"sync"
)

// tokenKey is the single well-known storage key for the session token.
const tokenKey = "storefront:access_token"

// ErrNoToken is returned by Load when no token is stored.
var ErrNoToken = errors.New("no stored token")

// Store persists the bearer token between requests.
type Store interface {
	Save(ctx context.Context, token string) error
	Load(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

// MemoryStore keeps the token in process memory. It backs tests and
// redis-less runs; the cart itself is always memory-only regardless.
type MemoryStore struct {
	mu    sync.Mutex
	token string
	set   bool
}

// NewMemoryStore creates an empty in-memory token store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Save(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	m.set = true
	return nil
}

func (m *MemoryStore) Load(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return "", ErrNoToken
	}
	return m.token, nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.set = false
	return nil
}
