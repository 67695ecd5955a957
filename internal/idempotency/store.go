// Package idempotency remembers which inbound provider messages were already handled,
// so webhook redeliveries never advance a conversation twice.
package idempotency

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	appredis "github.com/Proton-105/wasawasa-bot/pkg/redis"
)

// Store claims message keys. Claim reports true for the first caller only,
// until the key's ttl elapses or the key is released.
type Store interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release forgets a claim so a redelivery of the same key is processed again.
	Release(ctx context.Context, key string) error
}

// RedisStore shares claims between webhook instances through SETNX keys.
type RedisStore struct {
	client appredis.KV
	log    *slog.Logger
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a Store backed by client.
func NewRedisStore(client appredis.KV, log *slog.Logger) *RedisStore {
	if log == nil {
		log = slog.Default()
	}

	return &RedisStore{
		client: client,
		log:    log,
	}
}

// Claim stores key unless it is already present.
func (s *RedisStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	claimed, err := s.client.SetNX(ctx, recordKey(key), 1, ttl)
	if err != nil {
		s.log.Error("failed to claim inbound message", slog.String("key", key), slog.Any("error", err))
		return false, err
	}

	return claimed, nil
}

// Release deletes the claim for key.
func (s *RedisStore) Release(ctx context.Context, key string) error {
	if err := s.client.Delete(ctx, recordKey(key)); err != nil {
		s.log.Error("failed to release inbound message claim", slog.String("key", key), slog.Any("error", err))
		return err
	}

	return nil
}

func recordKey(key string) string {
	return fmt.Sprintf("wasawasa:inbound:%s", key)
}

// MemoryStore is the single-process Store. Expired keys are dropped by Purge.
type MemoryStore struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-process Store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		expires: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Claim records key until ttl elapses unless an unexpired claim exists.
func (s *MemoryStore) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if exp, ok := s.expires[key]; ok && now.Before(exp) {
		return false, nil
	}

	s.expires[key] = now.Add(ttl)
	return true, nil
}

// Release forgets the claim for key.
func (s *MemoryStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.expires, key)
	return nil
}

// Purge removes expired keys and returns how many were dropped.
func (s *MemoryStore) Purge() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, exp := range s.expires {
		if !now.Before(exp) {
			delete(s.expires, key)
			removed++
		}
	}

	return removed
}

// Len returns the number of remembered keys, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.expires)
}
