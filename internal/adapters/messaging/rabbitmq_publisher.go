package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hos-trip-service/internal/domain"
	"hos-trip-service/internal/platform/obs"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const RoutingKeyTripScheduled = "trip.scheduled"

// amqpChannel is the subset of *amqp.Channel the publisher uses.
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQPublisher publishes trip events as persistent JSON messages on a topic exchange.
type RabbitMQPublisher struct {
	ch       amqpChannel
	conn     *amqp.Connection
	exchange string
}

// DialRabbitMQ connects to url and declares a durable topic exchange.
func DialRabbitMQ(url, exchange string) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	p, err := NewRabbitMQPublisher(ch, exchange)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn

	return p, nil
}

// NewRabbitMQPublisher declares the exchange on an open channel.
func NewRabbitMQPublisher(ch amqpChannel, exchange string) (*RabbitMQPublisher, error) {
	if ch == nil {
		return nil, errors.New("rabbitmq publisher: channel is nil")
	}
	if exchange == "" {
		return nil, errors.New("rabbitmq publisher: exchange name is empty")
	}

	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %q: %w", exchange, err)
	}

	return &RabbitMQPublisher{ch: ch, exchange: exchange}, nil
}

func (p *RabbitMQPublisher) PublishTripScheduled(ctx context.Context, event domain.TripScheduledEvent) (err error) {
	defer obs.Time(ctx, "rabbitmq.PublishTripScheduled")(&err)

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode trip event: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.ch.PublishWithContext(
		publishCtx,
		p.exchange,
		RoutingKeyTripScheduled,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    time.Now().UTC(),
			Type:         RoutingKeyTripScheduled,
		},
	)
	if err != nil {
		return fmt.Errorf("publish trip %s: %w", event.TripID, err)
	}

	return nil
}

// Close closes the channel and, when the publisher dialed it, the connection.
func (p *RabbitMQPublisher) Close() error {
	err := p.ch.Close()
	if p.conn != nil {
		err = errors.Join(err, p.conn.Close())
	}
	return err
}
