package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var (
	// ErrQueueClosed is returned when Dispatch is called after Close.
	ErrQueueClosed = errors.New("notify: queue closed")
	// ErrQueueFull indicates the queue is saturated and the delivery was not accepted.
	ErrQueueFull = errors.New("notify: queue full")
)

// LocalOptions controls the in-process dispatcher.
type LocalOptions struct {
	QueueSize int
	Workers   int
	// Timeout bounds a single delivery.
	Timeout time.Duration
}

// LocalDispatcher delivers notifications from a bounded in-memory queue drained by a
// fixed worker pool. Failed deliveries are logged as dead letters and never retried.
type LocalDispatcher struct {
	deliver func(ctx context.Context, d Delivery) error
	log     *slog.Logger
	opts    LocalOptions

	mu     sync.RWMutex
	closed bool
	jobs   chan Delivery
	wg     sync.WaitGroup
	once   sync.Once
}

var _ Dispatcher = (*LocalDispatcher)(nil)

// NewLocalDispatcher starts the worker pool; zero options fall back to defaults.
func NewLocalDispatcher(deliverer *Deliverer, opts LocalOptions, log *slog.Logger) *LocalDispatcher {
	return newLocalDispatcher(deliverer.Deliver, opts, log)
}

func newLocalDispatcher(deliver func(context.Context, Delivery) error, opts LocalOptions, log *slog.Logger) *LocalDispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}

	d := &LocalDispatcher{
		deliver: deliver,
		log:     log,
		opts:    opts,
		jobs:    make(chan Delivery, opts.QueueSize),
	}

	d.wg.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go d.worker()
	}

	return d
}

// Dispatch enqueues delivery without blocking.
func (d *LocalDispatcher) Dispatch(_ context.Context, delivery Delivery) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrQueueClosed
	}

	select {
	case d.jobs <- delivery:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting deliveries and waits for queued ones to finish.
func (d *LocalDispatcher) Close() {
	d.once.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.jobs)
		d.mu.Unlock()

		d.wg.Wait()
	})
}

func (d *LocalDispatcher) worker() {
	defer d.wg.Done()
	for delivery := range d.jobs {
		d.handle(delivery)
	}
}

// handle runs detached from the request that queued the delivery, which has already been answered.
func (d *LocalDispatcher) handle(delivery Delivery) {
	ctx, cancel := context.WithTimeout(context.Background(), d.opts.Timeout)
	defer cancel()

	if err := d.deliver(ctx, delivery); err != nil {
		d.log.Error("restaurant notification dead-lettered",
			slog.String("to", delivery.To),
			slog.String("customer_id", delivery.Order.CustomerID),
			slog.Any("error", err))
	}
}
