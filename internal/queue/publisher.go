package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher delivers events.  Callers treat failures as non-fatal: the
// request that produced an event has already been committed.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// DefaultDialTimeout bounds the TCP connect and AMQP handshake of a publish.
const DefaultDialTimeout = 2 * time.Second

// AMQPPublisher dials the broker for every publish.  Account events are rare
// enough that a long-lived connection with reconnect handling is not worth it.
// Publishing runs inside the request, so the dial is bounded by DialTimeout
// and by the deadline of ctx, whichever is sooner.
type AMQPPublisher struct {
	URL         string
	DialTimeout time.Duration
	Log         *zap.Logger
}

func NewAMQPPublisher(url string, log *zap.Logger) *AMQPPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &AMQPPublisher{URL: url, DialTimeout: DefaultDialTimeout, Log: log}
}

// dialTimeout returns the time left for connecting, or an error when ctx is
// already done.
func (p *AMQPPublisher) dialTimeout(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	timeout := p.DialTimeout
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		return 0, context.DeadlineExceeded
	}
	return timeout, nil
}

// Publish declares the event's durable queue and sends the JSON-encoded event
// as a persistent message on the default exchange.
func (p *AMQPPublisher) Publish(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", ev.QueueName(), err)
	}

	timeout, err := p.dialTimeout(ctx)
	if err != nil {
		return err
	}
	// DefaultDial also holds the deadline over the AMQP handshake, so a
	// broker that accepts TCP but never answers cannot stall the caller.
	conn, err := amqp.DialConfig(p.URL, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
	if err != nil {
		p.Log.Warn("rabbitmq dial failed", zap.String("queue", ev.QueueName()), zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.Log.Warn("rabbitmq channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		ev.QueueName(), // name
		true,           // durable
		false,          // autoDelete
		false,          // exclusive
		false,          // noWait
		nil,            // args
	); err != nil {
		p.Log.Warn("rabbitmq queue declare failed", zap.String("queue", ev.QueueName()), zap.Error(err))
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", ev.QueueName(), false, false, pub); err != nil {
		p.Log.Warn("rabbitmq publish failed", zap.String("queue", ev.QueueName()), zap.Error(err))
		return err
	}
	return nil
}

// NopPublisher drops every event.  Used when no broker URL is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
