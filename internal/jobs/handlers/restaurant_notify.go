package handlers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/Proton-105/wasawasa-bot/internal/jobs"
	"github.com/Proton-105/wasawasa-bot/internal/notify"
)

// Deliverer performs one restaurant delivery.
type Deliverer interface {
	Deliver(ctx context.Context, d notify.Delivery) error
}

// RestaurantNotifyHandler consumes restaurant:notify tasks.
type RestaurantNotifyHandler struct {
	deliverer Deliverer
	log       *slog.Logger
}

// NewRestaurantNotifyHandler wires the handler to a Deliverer.
func NewRestaurantNotifyHandler(deliverer Deliverer, log *slog.Logger) *RestaurantNotifyHandler {
	if log == nil {
		log = slog.Default()
	}
	return &RestaurantNotifyHandler{deliverer: deliverer, log: log}
}

// ProcessTask sends the queued notification. A malformed payload is never retryable.
func (h *RestaurantNotifyHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	d, err := jobs.DecodeRestaurantNotify(t)
	if err != nil {
		h.log.ErrorContext(ctx, "restaurant notify: failed to decode payload", slog.String("task_type", t.Type()), slog.String("error", err.Error()))
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	attrs := []any{
		slog.String("task_type", t.Type()),
		slog.String("customer_id", d.Order.CustomerID),
		slog.String("correlation_id", d.CorrelationID),
	}
	if id, ok := asynq.GetTaskID(ctx); ok {
		attrs = append(attrs, slog.String("task_id", id))
	}
	h.log.InfoContext(ctx, "delivering restaurant notification", attrs...)

	return h.deliverer.Deliver(ctx, d)
}
