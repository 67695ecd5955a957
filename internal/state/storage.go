// Package state manages per-customer conversation sessions.
package state

import (
	"context"
	"errors"
)

var (
	// ErrSessionNotFound indicates that no session exists for the customer.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionLocked indicates that another message for the customer is still being processed.
	ErrSessionLocked = errors.New("session is locked, try again later")
)

// Storage defines the persistence contract for conversation sessions.
type Storage interface {
	// Get returns the session for the customer or ErrSessionNotFound.
	Get(ctx context.Context, customerID string) (*Session, error)
	// Save stores the session under its CustomerID.
	Save(ctx context.Context, session *Session) error
	// Delete removes the customer's session. Deleting a missing session is not an error.
	Delete(ctx context.Context, customerID string) error
	// List returns every stored session.
	List(ctx context.Context) ([]*Session, error)
}

// Locker serialises work per customer without blocking unrelated customers.
type Locker interface {
	// Lock blocks until the customer's lock is held and returns the matching unlock function.
	Lock(ctx context.Context, customerID string) (func(), error)
}
