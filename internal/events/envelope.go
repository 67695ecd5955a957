// Package events publishes order events to RabbitMQ for downstream consumers.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/Proton-105/wasawasa-bot/internal/domain"
)

const (
	// OrderConfirmedType names the event emitted once per confirmed order.
	OrderConfirmedType = "order.confirmed.v1"
	producer           = "wasawasa-bot"
)

type Meta struct {
	// Trace / request correlation ID
	CorrelationID string `json:"correlation_id,omitempty"`
	// Unique event ID
	ID       string    `json:"id"`
	Producer string    `json:"producer"`
	Time     time.Time `json:"time"`
	Type     string    `json:"type"`
}

type Envelope[T any] struct {
	Meta Meta `json:"meta"`
	Data T    `json:"data"`
}

// OrderConfirmed is the payload of OrderConfirmedType.
type OrderConfirmed struct {
	CustomerID   string    `json:"customer_id"`
	CustomerName string    `json:"customer_name"`
	Dish         string    `json:"dish"`
	Price        string    `json:"price"`
	Currency     string    `json:"currency"`
	Location     string    `json:"location"`
	ConfirmedAt  time.Time `json:"confirmed_at"`
}

// NewOrderConfirmed wraps order in an envelope with a fresh event ID.
func NewOrderConfirmed(order domain.Order, correlationID string, now time.Time) Envelope[OrderConfirmed] {
	return Envelope[OrderConfirmed]{
		Meta: Meta{
			CorrelationID: correlationID,
			ID:            uuid.NewString(),
			Producer:      producer,
			Time:          now.UTC(),
			Type:          OrderConfirmedType,
		},
		Data: OrderConfirmed{
			CustomerID:   order.CustomerID,
			CustomerName: order.CustomerName,
			Dish:         domain.DishName,
			Price:        order.Price,
			Currency:     domain.Currency,
			Location:     order.Location,
			ConfirmedAt:  order.ConfirmedAt,
		},
	}
}
