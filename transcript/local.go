package transcript

import (
	"context"
	"sync"
	"time"

	"github.com/FrostGod/EventDash/internal/broker"
	"github.com/go-openapi/strfmt"
)

// LocalBackend routes transcripts inside one process.
type LocalBackend struct {
	hub *broker.Hub[Message]
}

const (
	localBufferSize   = 8
	localSlowDeadline = time.Second
)

func NewLocal() *LocalBackend {
	hub := broker.NewHub[Message]().
		WithBufferSize(localBufferSize).
		WithSlowSubscriberTimeout(localSlowDeadline)
	return &LocalBackend{hub: hub}
}

func (b *LocalBackend) Name() string { return "local" }

func (b *LocalBackend) Publish(ctx context.Context, conversationID, text string) error {
	return b.hub.Publish(ctx, conversationID, Message{
		ConversationID: conversationID,
		Text:           text,
		ReceivedAt:     strfmt.DateTime(time.Now()),
	})
}

func (b *LocalBackend) Open(context.Context) (Channel, error) {
	return &localChannel{hub: b.hub}, nil
}

// Subscribers reports how many channels follow a conversation.
func (b *LocalBackend) Subscribers(conversationID string) int {
	return b.hub.Subscribers(conversationID)
}

func (b *LocalBackend) Close() error { return nil }

type localChannel struct {
	hub *broker.Hub[Message]

	mu     sync.Mutex
	sub    *broker.Subscription[Message]
	closed bool
}

func (c *localChannel) Subscribe(ctx context.Context, conversationID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrChannelClosed
	}
	if c.sub != nil {
		return ErrAlreadySubscribed
	}
	c.sub = c.hub.Topic(conversationID).Subscribe(context.WithoutCancel(ctx))
	return nil
}

func (c *localChannel) Poll(ctx context.Context) (Message, bool, error) {
	if err := ctx.Err(); err != nil {
		return Message{}, false, err
	}
	c.mu.Lock()
	sub, closed := c.sub, c.closed
	c.mu.Unlock()
	if closed {
		return Message{}, false, ErrChannelClosed
	}
	if sub == nil {
		return Message{}, false, ErrNotSubscribed
	}
	msg, ok := sub.TryReceive()
	return msg, ok, nil
}

func (c *localChannel) Unsubscribe(context.Context, string) error {
	c.mu.Lock()
	sub := c.sub
	c.mu.Unlock()
	if sub != nil {
		sub.Unsubscribe()
	}
	return nil
}

func (c *localChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.sub != nil {
		c.sub.Unsubscribe()
	}
	return nil
}
