package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Proton-105/wasawasa-bot/internal/domain"
	"github.com/Proton-105/wasawasa-bot/pkg/logger"
	"github.com/Proton-105/wasawasa-bot/pkg/metrics"
)

// Sender delivers a text message to a phone number.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}

// EventPublisher announces confirmed orders to other systems.
type EventPublisher interface {
	PublishOrderConfirmed(ctx context.Context, order domain.Order) error
}

// Deliverer performs a queued delivery: the WhatsApp alert first, then the order event.
type Deliverer struct {
	sender    Sender
	publisher EventPublisher
	log       *slog.Logger
}

// NewDeliverer builds a Deliverer. publisher may be nil when events are disabled.
func NewDeliverer(sender Sender, publisher EventPublisher, log *slog.Logger) *Deliverer {
	if log == nil {
		log = slog.Default()
	}
	return &Deliverer{sender: sender, publisher: publisher, log: log}
}

// Deliver sends d once. The returned error reports the WhatsApp send only;
// event publishing failures are logged.
func (d *Deliverer) Deliver(ctx context.Context, delivery Delivery) error {
	if delivery.CorrelationID != "" {
		ctx = logger.WithCorrelationID(ctx, delivery.CorrelationID)
	}

	if d.publisher != nil {
		defer func() {
			if err := d.publisher.PublishOrderConfirmed(ctx, delivery.Order); err != nil {
				d.log.WarnContext(ctx, "failed to publish order event",
					slog.String("customer_id", delivery.Order.CustomerID),
					slog.Any("error", err))
			}
		}()
	}

	if err := d.sender.Send(ctx, delivery.To, delivery.Body); err != nil {
		metrics.RecordNotification("failed")
		return fmt.Errorf("send restaurant notification: %w", err)
	}

	metrics.RecordNotification("sent")
	d.log.InfoContext(ctx, "restaurant notified of new order",
		slog.String("customer_id", delivery.Order.CustomerID),
		slog.String("price", delivery.Order.Price))

	return nil
}
