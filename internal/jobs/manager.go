package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/Proton-105/wasawasa-bot/internal/notify"
)

// Manager describes the minimal queue operations needed by the application.
type Manager interface {
	Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

type manager struct {
	client *asynq.Client
	log    *slog.Logger
}

// NewManager builds a Manager backed by an asynq client.
func NewManager(redisOpt asynq.RedisConnOpt, log *slog.Logger) Manager {
	client := asynq.NewClient(redisOpt)

	return &manager{
		client: client,
		log:    log,
	}
}

func (m *manager) Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	return m.client.EnqueueContext(ctx, task, opts...)
}

func (m *manager) Close() error {
	return m.client.Close()
}

// Dispatcher queues restaurant notifications through a Manager.
type Dispatcher struct {
	manager Manager
	log     *slog.Logger
}

var _ notify.Dispatcher = (*Dispatcher)(nil)

// NewDispatcher returns a notify.Dispatcher that enqueues through manager.
func NewDispatcher(manager Manager, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{manager: manager, log: log}
}

// Dispatch enqueues d; the send itself happens on the worker.
func (d *Dispatcher) Dispatch(ctx context.Context, delivery notify.Delivery) error {
	task, err := NewRestaurantNotifyTask(delivery)
	if err != nil {
		return err
	}

	info, err := d.manager.Enqueue(ctx, task)
	if err != nil {
		return err
	}

	d.log.DebugContext(ctx, "restaurant notification queued",
		slog.String("task_id", info.ID),
		slog.String("queue", info.Queue))

	return nil
}
