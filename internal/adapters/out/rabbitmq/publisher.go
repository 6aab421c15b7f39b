// Package rabbitmq publishes activity feed entries to a topic exchange.
// Routing keys have the form "route.<status>".
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dispatch/internal/adapters/out/activitylog"
	"dispatch/internal/core/domain/model/activity"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// Channel is the part of *amqp.Channel the publisher uses.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher is a ports.ActivityLog backed by a RabbitMQ exchange.
type Publisher struct {
	ch       Channel
	exchange string
	close    func() error
}

func NewPublisher(ch Channel, exchange string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange}
}

// Connect dials the broker, opens a channel and declares a durable topic exchange.
func Connect(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err = ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	p := NewPublisher(ch, exchange)
	p.close = func() error {
		return errors.Join(ch.Close(), conn.Close())
	}
	return p, nil
}

// Append publishes the entry as a persistent JSON message.
func (p *Publisher) Append(ctx context.Context, entry activity.Entry) error {
	body, err := json.Marshal(activitylog.NewEvent(entry))
	if err != nil {
		return fmt.Errorf("marshal activity event: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.ch.PublishWithContext(publishCtx, p.exchange, RoutingKey(entry), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    entry.ID().String(),
		Timestamp:    entry.ActionTime(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish activity event: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	if p.close == nil {
		return nil
	}
	return p.close()
}

func RoutingKey(entry activity.Entry) string {
	return "route." + entry.Status().String()
}
