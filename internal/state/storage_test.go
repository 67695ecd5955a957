package state

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/wasawasa-bot/pkg/config"
	appredis "github.com/Proton-105/wasawasa-bot/pkg/redis"
)

func TestStorages(t *testing.T) {
	backends := map[string]func(t *testing.T) Storage{
		"memory": func(t *testing.T) Storage { return NewMemoryStorage() },
		"redis": func(t *testing.T) Storage {
			return NewRedisStorage(setupTestRedis(t), testLogger(), time.Hour)
		},
	}

	for name, build := range backends {
		build := build
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			storage := build(t)

			_, err := storage.Get(ctx, "+233200000000")
			assert.ErrorIs(t, err, ErrSessionNotFound)

			session := &Session{
				CustomerID: "+233200000000",
				Stage:      StageConfirming,
				Name:       "Ama",
				Price:      "10",
				Location:   "Bamahu near Total",
			}
			require.NoError(t, storage.Save(ctx, session))

			loaded, err := storage.Get(ctx, session.CustomerID)
			require.NoError(t, err)
			assert.Equal(t, session.Stage, loaded.Stage)
			assert.Equal(t, "Ama", loaded.Name)
			assert.Equal(t, "10", loaded.Price)
			assert.Equal(t, "Bamahu near Total", loaded.Location)
			assert.False(t, loaded.UpdatedAt.IsZero())

			loaded.Price = "20"
			again, err := storage.Get(ctx, session.CustomerID)
			require.NoError(t, err)
			assert.Equal(t, "10", again.Price, "stored session must not alias the returned copy")

			require.NoError(t, storage.Save(ctx, &Session{CustomerID: "+233200000001", Stage: StageGreeting, Name: "Kofi"}))
			all, err := storage.List(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 2)

			require.NoError(t, storage.Delete(ctx, session.CustomerID))
			_, err = storage.Get(ctx, session.CustomerID)
			assert.ErrorIs(t, err, ErrSessionNotFound)
			assert.NoError(t, storage.Delete(ctx, session.CustomerID))
		})
	}
}

func TestRedisStorage_AppliesTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := appredis.New(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	storage := NewRedisStorage(client, testLogger(), time.Minute)
	require.NoError(t, storage.Save(context.Background(), &Session{CustomerID: "c1", Stage: StageGreeting}))

	mr.FastForward(2 * time.Minute)

	_, err = storage.Get(context.Background(), "c1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryLocker_SerialisesSameCustomer(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		active  int32
		overlap int32
	)

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(ctx, "c1")
			if err != nil {
				t.Errorf("lock: %v", err)
				return
			}
			defer unlock()

			if atomic.AddInt32(&active, 1) > 1 {
				atomic.StoreInt32(&overlap, 1)
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&active, -1)
		}()
	}
	wg.Wait()

	assert.Zero(t, atomic.LoadInt32(&overlap))
	assert.Empty(t, locker.locks, "idle customer locks must be released")
}

func TestMemoryLocker_DifferentCustomersDoNotBlock(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	unlockA, err := locker.Lock(ctx, "a")
	require.NoError(t, err)
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB, err := locker.Lock(ctx, "b")
		if err == nil {
			unlockB()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock for another customer blocked")
	}
}

func TestRedisLocker_Contention(t *testing.T) {
	locker := NewRedisLocker(setupTestRedis(t), testLogger())

	unlock, err := locker.Lock(context.Background(), "c1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, "c1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()

	unlockAgain, err := locker.Lock(context.Background(), "c1")
	require.NoError(t, err)
	unlockAgain()
}

func TestRedisLocker_ExpiredHolderCannotReleaseSuccessor(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := appredis.New(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	locker := NewRedisLocker(client, testLogger())

	unlockA, err := locker.Lock(context.Background(), "c1")
	require.NoError(t, err)

	mr.FastForward(lockTTL + time.Second)

	unlockB, err := locker.Lock(context.Background(), "c1")
	require.NoError(t, err)

	unlockA()
	assert.True(t, mr.Exists(sessionLockPrefix+"c1"), "stale holder must not delete the current lock")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, "c1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlockB()
	assert.False(t, mr.Exists(sessionLockPrefix+"c1"))
}

func TestSession_Reset(t *testing.T) {
	s := &Session{CustomerID: "c1", Stage: StageConfirming, Name: "Ama", Price: "15", Location: "Kpaguri"}
	s.Reset()

	assert.Equal(t, StageGreeting, s.Stage)
	assert.Equal(t, "Ama", s.Name)
	assert.Empty(t, s.Price)
	assert.Empty(t, s.Location)
}

func setupTestRedis(t *testing.T) *appredis.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := appredis.New(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
