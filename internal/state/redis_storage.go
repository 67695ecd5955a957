package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	appredis "github.com/Proton-105/wasawasa-bot/pkg/redis"
)

const (
	sessionKeyPrefix  = "wasawasa:session:"
	sessionLockPrefix = "wasawasa:lock:"
	lockTTL           = 5 * time.Second
	lockPollInterval  = 25 * time.Millisecond
	lockWait          = 2 * time.Second
)

// releaseLockScript deletes the lock only while it still carries the caller's token.
const releaseLockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

// RedisStorage persists sessions in Redis so several webhook workers can share them.
type RedisStorage struct {
	client appredis.KV
	log    *slog.Logger
	ttl    time.Duration
}

var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage initializes a Redis-backed Storage. A zero ttl keeps sessions until deleted.
func NewRedisStorage(client appredis.KV, log *slog.Logger, ttl time.Duration) *RedisStorage {
	if log == nil {
		log = slog.Default()
	}

	return &RedisStorage{
		client: client,
		log:    log,
		ttl:    ttl,
	}
}

// Get returns the stored session or ErrSessionNotFound when absent.
func (s *RedisStorage) Get(ctx context.Context, customerID string) (*Session, error) {
	data, err := s.client.Get(ctx, sessionKey(customerID))
	if err != nil {
		if errors.Is(err, appredis.Nil) {
			return nil, ErrSessionNotFound
		}

		s.log.Error("failed to get session from redis", slog.String("customer_id", customerID), slog.Any("error", err))
		return nil, fmt.Errorf("get session: %w", err)
	}

	var session Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		s.log.Error("failed to decode session", slog.String("customer_id", customerID), slog.Any("error", err))
		return nil, fmt.Errorf("decode session: %w", err)
	}

	return &session, nil
}

// Save encodes the session as JSON and stores it with the configured TTL.
func (s *RedisStorage) Save(ctx context.Context, session *Session) error {
	stored := session.Clone()
	stored.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if err := s.client.Set(ctx, sessionKey(session.CustomerID), data, s.ttl); err != nil {
		s.log.Error("failed to save session in redis", slog.String("customer_id", session.CustomerID), slog.Any("error", err))
		return fmt.Errorf("save session: %w", err)
	}

	return nil
}

// Delete removes the session for the given customer.
func (s *RedisStorage) Delete(ctx context.Context, customerID string) error {
	if err := s.client.Delete(ctx, sessionKey(customerID)); err != nil {
		s.log.Error("failed to delete session", slog.String("customer_id", customerID), slog.Any("error", err))
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

// List scans every stored session. Undecodable entries are skipped.
func (s *RedisStorage) List(ctx context.Context) ([]*Session, error) {
	keys, err := s.client.ScanKeys(ctx, sessionKeyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan sessions: %w", err)
	}

	result := make([]*Session, 0, len(keys))
	for _, key := range keys {
		session, err := s.Get(ctx, strings.TrimPrefix(key, sessionKeyPrefix))
		if err != nil {
			if errors.Is(err, ErrSessionNotFound) {
				continue
			}
			s.log.Warn("skipping unreadable session", slog.String("key", key), slog.Any("error", err))
			continue
		}
		result = append(result, session)
	}

	return result, nil
}

// RedisLocker implements Locker with a SETNX key per customer. Each holder writes its own
// token, so a holder that outlived lockTTL cannot release a lock it no longer owns.
type RedisLocker struct {
	client appredis.KV
	log    *slog.Logger
}

var _ Locker = (*RedisLocker)(nil)

// NewRedisLocker creates a distributed per-customer locker.
func NewRedisLocker(client appredis.KV, log *slog.Logger) *RedisLocker {
	if log == nil {
		log = slog.Default()
	}

	return &RedisLocker{client: client, log: log}
}

// Lock polls for the customer's lock key until it is acquired, ctx ends, or the wait budget runs out.
func (l *RedisLocker) Lock(ctx context.Context, customerID string) (func(), error) {
	key := sessionLockPrefix + customerID
	token := uuid.NewString()
	deadline := time.Now().Add(lockWait)

	for {
		acquired, err := l.client.SetNX(ctx, key, token, lockTTL)
		if err != nil {
			l.log.Error("failed to acquire session lock", slog.String("customer_id", customerID), slog.Any("error", err))
			return nil, err
		}
		if acquired {
			break
		}

		if time.Now().After(deadline) {
			l.log.Warn("session lock already held", slog.String("customer_id", customerID))
			return nil, ErrSessionLocked
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockPollInterval):
		}
	}

	return func() {
		// released with a fresh context so a cancelled request still frees the key
		released, err := l.client.Eval(context.Background(), releaseLockScript, []string{key}, token)
		if err != nil {
			l.log.Error("failed to release session lock", slog.String("customer_id", customerID), slog.Any("error", err))
			return
		}
		if n, _ := released.(int64); n == 0 {
			l.log.Warn("session lock expired before release", slog.String("customer_id", customerID))
		}
	}, nil
}

func sessionKey(customerID string) string {
	return sessionKeyPrefix + customerID
}
