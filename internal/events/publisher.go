package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/Proton-105/wasawasa-bot/internal/domain"
	"github.com/Proton-105/wasawasa-bot/pkg/logger"
)

// channel is the part of an AMQP channel used for publishing.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Publisher sends order events to a topic exchange.
type Publisher struct {
	conn       *amqp091.Connection
	open       func() (channel, error)
	exchange   string
	routingKey string
	log        *slog.Logger
}

// NewPublisher dials url and declares exchange as a durable topic exchange.
func NewPublisher(url, exchange, routingKey string, log *slog.Logger) (*Publisher, error) {
	if log == nil {
		log = slog.Default()
	}

	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(
		exchange, "topic", true, false, false, false, nil,
	); err != nil {
		conn.Close()
		return nil, err
	}

	p := &Publisher{
		conn:       conn,
		exchange:   exchange,
		routingKey: routingKey,
		log:        log,
	}
	p.open = func() (channel, error) { return conn.Channel() }

	return p, nil
}

// PublishOrderConfirmed emits an OrderConfirmedType event for order.
func (p *Publisher) PublishOrderConfirmed(ctx context.Context, order domain.Order) error {
	env := NewOrderConfirmed(order, logger.CorrelationIDFromContext(ctx), time.Now())
	return p.publish(ctx, env.Meta, env)
}

func (p *Publisher) publish(ctx context.Context, meta Meta, msg any) error {
	ch, err := p.open()
	if err != nil {
		return err
	}
	defer ch.Close()

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(
		ctx, p.exchange, p.routingKey, false, false,
		amqp091.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp091.Persistent,
			MessageId:     meta.ID,
			CorrelationId: meta.CorrelationID,
			Type:          meta.Type,
			Timestamp:     meta.Time,
			Body:          body,
		},
	)
	if err == nil {
		p.log.Info("published", slog.String("key", p.routingKey), slog.String("exchange", p.exchange), slog.String("event_id", meta.ID))
	}
	return err
}

// Close closes the AMQP connection.
func (p *Publisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Close()
}
