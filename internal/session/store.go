// Package session holds the checkout session records created at initiation
// time. The only security-relevant artifact is the successIndicator: it is
// written once when a session is created, compared verbatim against the
// indicator echoed back on the completion redirect, and cleared once the
// comparison succeeds.
package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned when no session exists for an order.
var ErrNotFound = errors.New("checkout session not found")

// CheckoutSession is one checkout attempt, keyed by the merchant order ID.
type CheckoutSession struct {
	OrderID          string    `json:"order_id"`
	SessionID        string    `json:"session_id"`
	SuccessIndicator string    `json:"success_indicator"`
	CreatedAt        time.Time `json:"created_at"`
}

// Store persists checkout sessions for the lifetime of one checkout attempt.
// A new session for the same order replaces the old one.
type Store interface {
	Put(ctx context.Context, s *CheckoutSession) error
	Get(ctx context.Context, orderID string) (*CheckoutSession, error)
	Delete(ctx context.Context, orderID string) error
}

// MemoryStore is a TTL-aware in-memory Store, used when Redis is unavailable.
// Sessions do not survive a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]memoryEntry
}

type memoryEntry struct {
	session   CheckoutSession
	expiresAt time.Time
}

// NewMemoryStore creates an in-memory store with the given session TTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]memoryEntry),
	}
}

// Put stores a session, replacing any previous one for the same order.
func (m *MemoryStore) Put(ctx context.Context, s *CheckoutSession) error {
	if s == nil || s.OrderID == "" {
		return errors.New("session with order ID is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.OrderID] = memoryEntry{
		session:   *s,
		expiresAt: time.Now().Add(m.ttl),
	}
	return nil
}

// Get returns the session for an order, or ErrNotFound.
func (m *MemoryStore) Get(ctx context.Context, orderID string) (*CheckoutSession, error) {
	m.mu.RLock()
	entry, ok := m.sessions[orderID]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if time.Now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.sessions, orderID)
		m.mu.Unlock()
		return nil, ErrNotFound
	}

	s := entry.session
	return &s, nil
}

// Delete removes the session for an order. Deleting a missing session is not
// an error.
func (m *MemoryStore) Delete(ctx context.Context, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, orderID)
	return nil
}
