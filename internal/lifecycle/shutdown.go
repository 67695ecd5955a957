package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Hook is a named step of the shutdown sequence.
type Hook struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Shutdown coordinates graceful shutdown hooks in parallel.
type Shutdown struct {
	mu    sync.Mutex
	hooks []Hook
	log   *slog.Logger
}

// NewShutdown constructs a new Shutdown coordinator.
func NewShutdown(log *slog.Logger) *Shutdown {
	if log == nil {
		log = slog.Default()
	}

	return &Shutdown{log: log}
}

// Register adds a named shutdown hook.
func (s *Shutdown) Register(name string, fn func(context.Context) error) {
	if fn == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.hooks = append(s.hooks, Hook{Name: name, Fn: fn})
}

// RegisterCloser adds a hook for a component that only needs Close.
func (s *Shutdown) RegisterCloser(name string, closeFn func() error) {
	if closeFn == nil {
		return
	}
	s.Register(name, func(context.Context) error { return closeFn() })
}

// Execute runs all registered hooks concurrently and waits for completion or ctx expiry.
func (s *Shutdown) Execute(ctx context.Context) error {
	s.mu.Lock()
	hooks := append([]Hook(nil), s.hooks...)
	s.mu.Unlock()

	start := time.Now()
	s.log.Info("shutdown sequence started", slog.Int("hook_count", len(hooks)))

	var wg sync.WaitGroup
	errCh := make(chan error, len(hooks))

	for _, hook := range hooks {
		h := hook

		wg.Add(1)
		go func() {
			defer wg.Done()

			s.log.Info("running shutdown hook", slog.String("hook", h.Name))

			if err := h.Fn(ctx); err != nil {
				s.log.Error("shutdown hook failed", slog.String("hook", h.Name), slog.Any("error", err))
				errCh <- fmt.Errorf("%s: %w", h.Name, err)
				return
			}

			s.log.Info("shutdown hook completed", slog.String("hook", h.Name))
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	var timeoutErr error
	select {
	case <-done:
	case <-ctx.Done():
		timeoutErr = fmt.Errorf("shutdown interrupted: %w", ctx.Err())
	}

	s.log.Info("shutdown sequence finished", slog.Duration("elapsed", time.Since(start)))

	n := len(errCh)
	errs := make([]error, 0, n+1)
	for i := 0; i < n; i++ {
		errs = append(errs, <-errCh)
	}
	if timeoutErr != nil {
		errs = append(errs, timeoutErr)
	}

	return errors.Join(errs...)
}
