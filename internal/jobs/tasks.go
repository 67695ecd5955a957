package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/Proton-105/wasawasa-bot/internal/notify"
)

const (
	TaskTypeRestaurantNotify = "restaurant:notify"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
)

// Queues is the priority map the worker consumes.
var Queues = map[string]int{
	QueueCritical: 6,
	QueueDefault:  3,
}

// NewRestaurantNotifyTask wraps a delivery for the queue. Failed tasks are archived
// on the first error instead of retried.
func NewRestaurantNotifyTask(d notify.Delivery) (*asynq.Task, error) {
	payload, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal restaurant notification: %w", err)
	}

	return asynq.NewTask(TaskTypeRestaurantNotify, payload, asynq.Queue(QueueCritical), asynq.MaxRetry(0)), nil
}

// DecodeRestaurantNotify reverses NewRestaurantNotifyTask.
func DecodeRestaurantNotify(t *asynq.Task) (notify.Delivery, error) {
	var d notify.Delivery
	if err := json.Unmarshal(t.Payload(), &d); err != nil {
		return notify.Delivery{}, fmt.Errorf("decode %s payload: %w", t.Type(), err)
	}
	return d, nil
}
