package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/wasawasa-bot/internal/domain"
	"github.com/Proton-105/wasawasa-bot/internal/notify"
)

type fakeManager struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeManager) Enqueue(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "task-1", Queue: QueueCritical, Type: task.Type()}, nil
}

func (f *fakeManager) Close() error { return nil }

func testDelivery() notify.Delivery {
	return notify.Delivery{
		To:   "+233209856297",
		Body: "🔔 *NEW ORDER!*",
		Order: domain.Order{
			CustomerID:   "+233241234567",
			CustomerName: "Ama",
			Price:        "10",
			Location:     "Bamahu near Total",
			ConfirmedAt:  time.Date(2025, 3, 14, 18, 5, 9, 0, time.UTC),
		},
		CorrelationID: "req-7",
	}
}

func TestRestaurantNotifyTask_RoundTrip(t *testing.T) {
	task, err := NewRestaurantNotifyTask(testDelivery())
	require.NoError(t, err)
	assert.Equal(t, TaskTypeRestaurantNotify, task.Type())

	got, err := DecodeRestaurantNotify(task)
	require.NoError(t, err)
	assert.Equal(t, testDelivery().To, got.To)
	assert.Equal(t, testDelivery().Body, got.Body)
	assert.True(t, testDelivery().Order.ConfirmedAt.Equal(got.Order.ConfirmedAt))
	assert.Equal(t, "Ama", got.Order.CustomerName)
	assert.Equal(t, "req-7", got.CorrelationID)
}

func TestDecodeRestaurantNotify_InvalidPayload(t *testing.T) {
	_, err := DecodeRestaurantNotify(asynq.NewTask(TaskTypeRestaurantNotify, []byte("{")))
	assert.Error(t, err)
}

func TestDispatcher_Enqueues(t *testing.T) {
	m := &fakeManager{}
	d := NewDispatcher(m, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, d.Dispatch(context.Background(), testDelivery()))
	require.Len(t, m.tasks, 1)
	assert.Equal(t, TaskTypeRestaurantNotify, m.tasks[0].Type())
}

func TestDispatcher_PropagatesEnqueueError(t *testing.T) {
	boom := errors.New("redis down")
	d := NewDispatcher(&fakeManager{err: boom}, nil)

	assert.ErrorIs(t, d.Dispatch(context.Background(), testDelivery()), boom)
}
