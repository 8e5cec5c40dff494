// Package broker publishes order lifecycle events to RabbitMQ so downstream
// consumers (notifications, reporting) can react without coupling to the core.
package broker

import (
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// OrderEvent is the wire format for order lifecycle notifications.
type OrderEvent struct {
	OrderID    int64     `json:"order_id"`
	CustomerID int64     `json:"customer_id"`
	Type       string    `json:"type"` // created, selected, delivered, cancelled
	Status     string    `json:"status"`
	Total      float64   `json:"total"`
	Occurred   time.Time `json:"occurred"`
}

// Publisher is the port used by the order services. Implementations must be
// safe for concurrent use.
type Publisher interface {
	PublishOrderEvent(event OrderEvent) error
	Close() error
}

// RabbitMQ wraps a connection/channel pair against a single direct exchange.
type RabbitMQ struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewRabbitMQ dials the broker and declares a durable direct exchange for
// order events.
func NewRabbitMQ(url, exchange string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if err := ch.ExchangeDeclare(
		exchange,
		"direct",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	return &RabbitMQ{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
	}, nil
}

// PublishOrderEvent sends a persistent JSON message with the event type as
// the routing key. Cancellations get a higher priority so consumers can act
// on them first.
func (r *RabbitMQ) PublishOrderEvent(event OrderEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	priority := uint8(5)
	if event.Type == "cancelled" {
		priority = 8
	}

	msg := amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.Occurred,
		ContentType:  "application/json",
		Body:         body,
		Priority:     priority,
	}

	return r.channel.Publish(
		r.exchange,
		event.Type,
		false, // mandatory
		false, // immediate
		msg,
	)
}

func (r *RabbitMQ) Close() error {
	if err := r.channel.Close(); err != nil {
		_ = r.conn.Close()
		return err
	}
	return r.conn.Close()
}
