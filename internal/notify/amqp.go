package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bachatlist/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher is the part of *amqp.Channel the sender uses.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPClient owns a RabbitMQ connection and its channel.
type AMQPClient struct {
	conn    *amqp.Connection
	Channel *amqp.Channel
}

// DialAMQP connects to RabbitMQ and declares queue.
func DialAMQP(url, queue string) (*AMQPClient, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	return &AMQPClient{conn: conn, Channel: ch}, nil
}

func (c *AMQPClient) Close() error {
	if err := c.Channel.Close(); err != nil {
		return err
	}
	return c.conn.Close()
}

// Event is the JSON body published for downstream consumers.
type Event struct {
	ChannelID string    `json:"channelId"`
	Subject   string    `json:"subject"`
	Text      string    `json:"text"`
	ParseMode string    `json:"parseMode,omitempty"`
	SentAt    time.Time `json:"sentAt"`
}

// AMQP publishes notifications as JSON events. The channel target names the
// queue, falling back to the default queue.
type AMQP struct {
	ch           Publisher
	defaultQueue string
	now          func() time.Time
}

func NewAMQP(ch Publisher, defaultQueue string) *AMQP {
	return &AMQP{ch: ch, defaultQueue: defaultQueue, now: time.Now}
}

// Send publishes msg as a JSON Event to the channel queue, or the default one.
func (a *AMQP) Send(ctx context.Context, ch models.Channel, msg Message) error {
	const op = "notify.AMQP.Send"

	queue := ch.Target
	if queue == "" {
		queue = a.defaultQueue
	}

	body, err := json.Marshal(Event{
		ChannelID: ch.ID,
		Subject:   msg.Subject,
		Text:      msg.Text,
		ParseMode: msg.ParseMode,
		SentAt:    a.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = a.ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
