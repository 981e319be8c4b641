package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// ExchangeName is the topic exchange all events are published to.
	ExchangeName = "chief.events"

	// DefaultQueueName is the durable queue the worker consumes from.
	DefaultQueueName = "chief.worker"
)

func dialExchange(url, exchange string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("failed to open channel: %w", err)
	}

	// durable, not auto-deleted, not internal, wait for confirmation
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	return conn, ch, nil
}

func closeAMQP(logger *slog.Logger, conn *amqp.Connection, ch *amqp.Channel) error {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Warn("error closing channel", "error", err)
		}
	}
	if conn != nil {
		return conn.Close()
	}
	return nil
}

// RabbitMQPublisher publishes envelopes to the topic exchange.
type RabbitMQPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *slog.Logger
	mu      sync.Mutex
}

var _ Publisher = (*RabbitMQPublisher)(nil)

// NewRabbitMQPublisher dials url and declares the exchange.
func NewRabbitMQPublisher(url string, logger *slog.Logger) (*RabbitMQPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, ch, err := dialExchange(url, ExchangeName)
	if err != nil {
		return nil, err
	}

	logger.Info("RabbitMQ publisher connected", "exchange", ExchangeName)
	return &RabbitMQPublisher{conn: conn, channel: ch, logger: logger}, nil
}

func (p *RabbitMQPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.channel.PublishWithContext(ctx, ExchangeName, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         payload,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	return nil
}

func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return closeAMQP(p.logger, p.conn, p.channel)
}

// RabbitMQConsumer binds a durable queue to the exchange for every
// registered routing key and dispatches deliveries through the registry.
type RabbitMQConsumer struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	queue    string
	registry *ConsumerRegistry
	logger   *slog.Logger
	mu       sync.Mutex
	running  bool
}

var _ Consumer = (*RabbitMQConsumer)(nil)

// NewRabbitMQConsumer dials url and declares queue (DefaultQueueName when empty).
func NewRabbitMQConsumer(url, queue string, logger *slog.Logger) (*RabbitMQConsumer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if queue == "" {
		queue = DefaultQueueName
	}

	conn, ch, err := dialExchange(url, ExchangeName)
	if err != nil {
		return nil, err
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = closeAMQP(logger, conn, ch)
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	logger.Info("RabbitMQ consumer connected", "queue", queue, "exchange", ExchangeName)
	return &RabbitMQConsumer{
		conn:     conn,
		channel:  ch,
		queue:    queue,
		registry: NewConsumerRegistry(logger),
		logger:   logger,
	}, nil
}

// RegisterConsumer registers consumer and binds its routing keys.
func (c *RabbitMQConsumer) RegisterConsumer(consumer EventConsumer) {
	c.registry.Register(consumer)

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range consumer.EventTypes() {
		if err := c.channel.QueueBind(c.queue, key, ExchangeName, false, nil); err != nil {
			c.logger.Error("failed to bind queue", "routing_key", key, "error", err)
		}
	}
}

// Start consumes until ctx is cancelled. Undecodable messages are acked
// and dropped; handler failures are nacked for redelivery.
func (c *RabbitMQConsumer) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return errors.New("consumer already running")
	}
	c.running = true
	c.mu.Unlock()

	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	deliveries, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.handle(ctx, msg)
		}
	}
}

func (c *RabbitMQConsumer) handle(ctx context.Context, msg amqp.Delivery) {
	event, err := Decode(msg.Body, msg.RoutingKey)
	if err != nil {
		c.logger.ErrorContext(ctx, "dropping undecodable event", "routing_key", msg.RoutingKey, "error", err)
		_ = msg.Ack(false)
		return
	}

	if err := c.registry.Dispatch(ctx, event); err != nil {
		if nackErr := msg.Nack(false, true); nackErr != nil {
			c.logger.ErrorContext(ctx, "failed to nack message", "error", nackErr)
		}
		return
	}

	if err := msg.Ack(false); err != nil {
		c.logger.ErrorContext(ctx, "failed to ack message", "error", err)
	}
}

func (c *RabbitMQConsumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	return closeAMQP(c.logger, c.conn, c.channel)
}
