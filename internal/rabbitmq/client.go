package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/GoArmGo/UsersAPI/internal/config"
	"github.com/GoArmGo/UsersAPI/internal/messaging/payloads"
)

const publishTimeout = 5 * time.Second

// Client представляет собой клиент RabbitMQ для событий пользователей
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	logger  *slog.Logger
}

// NewClient подключается к RabbitMQ и объявляет durable-очередь событий
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	logger = logger.With("component", "rabbitmq")

	conn, err := amqp.Dial(cfg.RabbitMQ.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	q, err := ch.QueueDeclare(
		cfg.RabbitMQ.RabbitMQQueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %q: %w", cfg.RabbitMQ.RabbitMQQueueName, err)
	}

	logger.Info("connected to RabbitMQ", "queue", q.Name, "messages", q.Messages)

	return &Client{
		conn:    conn,
		channel: ch,
		queue:   q,
		logger:  logger,
	}, nil
}

// Close закрывает канал и соединение
func (c *Client) Close() error {
	var firstErr error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Error("failed to close RabbitMQ channel", "error", err)
			firstErr = err
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.logger.Error("failed to close RabbitMQ connection", "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	c.logger.Info("RabbitMQ connection closed")
	return firstErr
}

// PublishUserEvent реализует ports.UserEventPublisher.
func (c *Client) PublishUserEvent(ctx context.Context, event payloads.UserEventPayload) error {
	body, err := encodeEvent(event)
	if err != nil {
		return err
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = c.channel.PublishWithContext(
		publishCtx,
		"",           // exchange
		c.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID,
			Type:         event.Type,
			Timestamp:    event.OccurredAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s event %s: %w", event.Type, event.ID, err)
	}

	c.logger.Debug("user event published", "event_id", event.ID, "type", event.Type, "user_id", event.User.ID)
	return nil
}

// StartConsumingUserEvents реализует ports.UserEventConsumer.
// Сообщения подтверждаются вручную: битое тело отбрасывается,
// ошибка обработчика возвращает сообщение в очередь.
func (c *Client) StartConsumingUserEvents(ctx context.Context, handler func(context.Context, payloads.UserEventPayload) error) error {
	msgs, err := c.channel.Consume(
		c.queue.Name,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer on %q: %w", c.queue.Name, err)
	}

	c.logger.Info("consumer registered, waiting for messages", "queue", c.queue.Name)

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					c.logger.Info("delivery channel closed, stopping consumer")
					return
				}
				c.handleDelivery(ctx, msg, handler)
			case <-ctx.Done():
				c.logger.Info("context cancelled, stopping consumer")
				return
			}
		}
	}()

	return nil
}

// acknowledger — часть amqp.Delivery, нужная для подтверждения
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func (c *Client) handleDelivery(ctx context.Context, msg amqp.Delivery, handler func(context.Context, payloads.UserEventPayload) error) {
	processDelivery(ctx, c.logger, msg.Body, msg, handler)
}

func processDelivery(
	ctx context.Context,
	logger *slog.Logger,
	body []byte,
	ack acknowledger,
	handler func(context.Context, payloads.UserEventPayload) error,
) {
	event, err := decodeEvent(body)
	if err != nil {
		logger.Error("dropping malformed message", "error", err, "body", string(body))
		if err := ack.Nack(false, false); err != nil {
			logger.Error("failed to nack malformed message", "error", err)
		}
		return
	}

	if err := handler(ctx, event); err != nil {
		logger.Error("failed to process user event, requeueing",
			"event_id", event.ID,
			"type", event.Type,
			"error", err,
		)
		if err := ack.Nack(false, true); err != nil {
			logger.Error("failed to nack message", "event_id", event.ID, "error", err)
		}
		return
	}

	if err := ack.Ack(false); err != nil {
		logger.Error("failed to ack message", "event_id", event.ID, "error", err)
		return
	}
	logger.Debug("user event processed", "event_id", event.ID, "type", event.Type)
}

func encodeEvent(event payloads.UserEventPayload) ([]byte, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal user event: %w", err)
	}
	return body, nil
}

func decodeEvent(body []byte) (payloads.UserEventPayload, error) {
	var event payloads.UserEventPayload
	if err := json.Unmarshal(body, &event); err != nil {
		return event, fmt.Errorf("unmarshal user event: %w", err)
	}
	if event.ID == "" || event.Type == "" {
		return event, fmt.Errorf("user event without id or type")
	}
	return event, nil
}
