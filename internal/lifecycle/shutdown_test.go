package lifecycle

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdown_RunsAllHooks(t *testing.T) {
	s := NewShutdown(slog.New(slog.NewTextHandler(io.Discard, nil)))

	var ran atomic.Int32
	s.Register("dispatcher", func(context.Context) error { ran.Add(1); return nil })
	s.RegisterCloser("redis", func() error { ran.Add(1); return nil })
	s.Register("nil", nil)

	require.NoError(t, s.Execute(context.Background()))
	assert.Equal(t, int32(2), ran.Load())
}

func TestShutdown_CollectsErrors(t *testing.T) {
	s := NewShutdown(nil)
	boom := errors.New("connection reset")

	s.RegisterCloser("amqp", func() error { return boom })
	s.Register("worker", func(context.Context) error { return nil })

	err := s.Execute(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "amqp: connection reset")
}

func TestShutdown_StopsWaitingAtDeadline(t *testing.T) {
	s := NewShutdown(nil)
	release := make(chan struct{})
	defer close(release)

	s.Register("stuck", func(context.Context) error { <-release; return nil })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := s.Execute(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
