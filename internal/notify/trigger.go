// Package notify tells the restaurant about confirmed orders without holding up the customer reply.
package notify

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/Proton-105/wasawasa-bot/internal/domain"
	"github.com/Proton-105/wasawasa-bot/pkg/logger"
	"github.com/Proton-105/wasawasa-bot/pkg/metrics"
)

// Delivery is one restaurant alert waiting to be sent. CorrelationID ties the worker's
// logs and events back to the inbound request that confirmed the order.
type Delivery struct {
	To            string       `json:"to"`
	Body          string       `json:"body"`
	Order         domain.Order `json:"order"`
	CorrelationID string       `json:"correlation_id,omitempty"`
}

// Dispatcher queues a delivery for an independent worker. Dispatch must not wait for the send.
type Dispatcher interface {
	Dispatch(ctx context.Context, d Delivery) error
}

// Trigger turns confirmed orders into restaurant deliveries.
type Trigger struct {
	phone      atomic.Pointer[string]
	dispatcher Dispatcher
	log        *slog.Logger
}

// NewTrigger builds a Trigger sending to phone. An empty phone disables notifications.
func NewTrigger(phone string, dispatcher Dispatcher, log *slog.Logger) *Trigger {
	if log == nil {
		log = slog.Default()
	}

	t := &Trigger{dispatcher: dispatcher, log: log}
	t.SetPhone(phone)

	return t
}

// SetPhone replaces the restaurant destination, e.g. after a config reload.
func (t *Trigger) SetPhone(phone string) {
	t.phone.Store(&phone)
}

// Phone returns the current restaurant destination.
func (t *Trigger) Phone() string {
	if p := t.phone.Load(); p != nil {
		return *p
	}
	return ""
}

// NotifyRestaurant hands order to the dispatcher. It never fails the caller: a missing
// destination or a rejected dispatch is logged and counted only.
func (t *Trigger) NotifyRestaurant(ctx context.Context, order domain.Order) {
	phone := t.Phone()
	if phone == "" {
		t.log.WarnContext(ctx, "restaurant phone not configured, skipping notification",
			slog.String("customer_id", order.CustomerID))
		metrics.RecordNotification("skipped")
		return
	}

	d := Delivery{
		To:            phone,
		Body:          RestaurantMessage(order),
		Order:         order,
		CorrelationID: logger.CorrelationIDFromContext(ctx),
	}

	if err := t.dispatcher.Dispatch(ctx, d); err != nil {
		t.log.ErrorContext(ctx, "failed to queue restaurant notification",
			slog.String("customer_id", order.CustomerID),
			slog.Any("error", err))
		metrics.RecordNotification("dropped")
		return
	}

	metrics.RecordNotification("queued")
}
