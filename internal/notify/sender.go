package notify

import (
	"context"

	"bachatlist/internal/models"
)

// Message is a rendered notification.
type Message struct {
	Subject   string
	Text      string
	ParseMode string
}

// Sender delivers a message to one channel. Implementations make a single
// attempt and never retry.
type Sender interface {
	Send(ctx context.Context, ch models.Channel, msg Message) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, ch models.Channel, msg Message) error

func (f SenderFunc) Send(ctx context.Context, ch models.Channel, msg Message) error {
	return f(ctx, ch, msg)
}
