package state

import (
	"context"
	"sync"
	"time"
)

// MemoryStorage keeps sessions in a process-local map. It is the default backend.
type MemoryStorage struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

var _ Storage = (*MemoryStorage)(nil)

// NewMemoryStorage returns an empty in-memory session store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{sessions: make(map[string]*Session)}
}

// Get returns a copy of the stored session.
func (s *MemoryStorage) Get(_ context.Context, customerID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[customerID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	return session.Clone(), nil
}

// Save stores a copy of session.
func (s *MemoryStorage) Save(_ context.Context, session *Session) error {
	stored := session.Clone()
	stored.UpdatedAt = time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.CustomerID] = stored
	return nil
}

// Delete removes the customer's session.
func (s *MemoryStorage) Delete(_ context.Context, customerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, customerID)
	return nil
}

// List returns copies of all sessions.
func (s *MemoryStorage) List(_ context.Context) ([]*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		result = append(result, session.Clone())
	}
	return result, nil
}

type keyedMutex struct {
	mu   sync.Mutex
	refs int
}

// MemoryLocker hands out one mutex per customer and forgets it once no caller holds or waits for it.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]*keyedMutex
}

var _ Locker = (*MemoryLocker)(nil)

// NewMemoryLocker returns a process-local keyed locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]*keyedMutex)}
}

// Lock acquires the customer's mutex. The context is checked before blocking only.
func (l *MemoryLocker) Lock(ctx context.Context, customerID string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	km, ok := l.locks[customerID]
	if !ok {
		km = &keyedMutex{}
		l.locks[customerID] = km
	}
	km.refs++
	l.mu.Unlock()

	km.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			km.mu.Unlock()

			l.mu.Lock()
			km.refs--
			if km.refs == 0 {
				delete(l.locks, customerID)
			}
			l.mu.Unlock()
		})
	}, nil
}
