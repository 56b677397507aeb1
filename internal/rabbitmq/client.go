package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/GoArmGo/gcapi/internal/config"
	"github.com/GoArmGo/gcapi/internal/core/ports"
	"github.com/GoArmGo/gcapi/internal/messaging/payloads"
)

// Client представляет собой клиент RabbitMQ
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	logger  *slog.Logger
}

// NewClient создает и инициализирует новый клиент RabbitMQ
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	client := &Client{logger: logger}

	conn, err := amqp.Dial(cfg.RabbitMQ.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	client.conn = conn

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	client.channel = ch

	// Идемпотентная операция: очередь создается, если ее нет
	q, err := ch.QueueDeclare(
		cfg.RabbitMQ.RabbitMQQueueName, // name
		true,                           // durable
		false,                          // delete when unused
		false,                          // exclusive
		false,                          // no-wait
		nil,                            // arguments
	)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to declare a queue: %w", err)
	}
	client.queue = q

	logger.Info("rabbitmq queue declared", "queue", q.Name, "messages", q.Messages)
	return client, nil
}

// Close закрывает соединение и канал RabbitMQ
func (c *Client) Close() {
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Warn("error closing rabbitmq channel", "error", err)
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.logger.Warn("error closing rabbitmq connection", "error", err)
		}
	}
}

// PublishUserRegistered публикует событие регистрации в очередь.
// Реализует ports.UserRegisteredPublisher.
func (c *Client) PublishUserRegistered(ctx context.Context, payload payloads.UserRegisteredPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload to JSON: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
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
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish a message: %w", err)
	}

	c.logger.Info("user registered event published", "queue", c.queue.Name, "user_id", payload.UserID)
	return nil
}

// StartConsumingUserRegistered начинает потребление событий регистрации.
// Реализует ports.UserRegisteredConsumer.
func (c *Client) StartConsumingUserRegistered(ctx context.Context, handler ports.UserRegisteredHandler) error {
	msgs, err := c.channel.Consume(
		c.queue.Name, // queue
		"",           // consumer
		false,        // auto-ack, подтверждаем вручную
		false,        // exclusive
		false,        // no-local
		false,        // no-wait
		nil,          // args
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	c.logger.Info("consumer registered", "queue", c.queue.Name)

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					c.logger.Info("rabbitmq channel closed, stopping consumer")
					return
				}
				c.dispatch(ctx, msg, handler)
			case <-ctx.Done():
				c.logger.Info("context cancelled, stopping rabbitmq consumer")
				return
			}
		}
	}()

	return nil
}

// dispatch декодирует сообщение и подтверждает его по результату обработки.
func (c *Client) dispatch(ctx context.Context, msg amqp.Delivery, handler ports.UserRegisteredHandler) {
	payload, err := decodeUserRegistered(msg.Body)
	if err != nil {
		c.logger.Error("error unmarshalling message", "error", err, "body", string(msg.Body))
		// плохой формат не вернется в очередь, иначе бесконечный цикл ошибок
		if err := msg.Nack(false, false); err != nil {
			c.logger.Error("error NACKing message after unmarshal failure", "error", err)
		}
		return
	}

	if err := handler(ctx, payload); err != nil {
		c.logger.Error("error processing message", "error", err, "user_id", payload.UserID)
		// повторная доставка только если это не повтор
		if err := msg.Nack(false, !msg.Redelivered); err != nil {
			c.logger.Error("error NACKing message after processing failure", "error", err)
		}
		return
	}

	if err := msg.Ack(false); err != nil {
		c.logger.Error("error ACKing message", "error", err)
		return
	}
	c.logger.Info("message processed and ACKed", "user_id", payload.UserID)
}

func decodeUserRegistered(body []byte) (payloads.UserRegisteredPayload, error) {
	var payload payloads.UserRegisteredPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return payload, err
	}
	if payload.UserID == 0 || payload.Email == "" {
		return payload, fmt.Errorf("incomplete user registered payload")
	}
	return payload, nil
}
