package transcript

import (
	"context"
	"errors"
	"fmt"

	"github.com/FrostGod/EventDash/config"
	"github.com/FrostGod/EventDash/types"
	"github.com/go-openapi/strfmt"
)

var (
	// ErrNotSubscribed is returned by Poll before Subscribe succeeded.
	ErrNotSubscribed = errors.New("transcript channel is not subscribed")
	// ErrAlreadySubscribed is returned when a channel is asked to follow a second conversation.
	ErrAlreadySubscribed = errors.New("transcript channel is already subscribed")
	// ErrChannelClosed is returned by operations on a closed channel.
	ErrChannelClosed = errors.New("transcript channel is closed")
)

// Message is one transcript payload as published by the telephony server.
type Message struct {
	ConversationID string          `json:"conversation_id"`
	Text           string          `json:"transcript"`
	ReceivedAt     strfmt.DateTime `json:"received_at"`
}

// Channel follows the transcript of a single conversation.
type Channel interface {
	Subscribe(ctx context.Context, conversationID string) error
	// Poll returns the next pending message, or ok=false when nothing is pending.
	// It does not wait for messages to arrive.
	Poll(ctx context.Context) (msg Message, ok bool, err error)
	Unsubscribe(ctx context.Context, conversationID string) error
	Close() error
}

// Publisher delivers a transcript to whoever follows the conversation.
type Publisher interface {
	Publish(ctx context.Context, conversationID, text string) error
}

// Backend is a connected broker. It hands out Channels that share its connection.
type Backend interface {
	Publisher
	Open(ctx context.Context) (Channel, error)
	Name() string
	Close() error
}

// Opener produces a fresh Channel for each call.
type Opener interface {
	Open(ctx context.Context) (Channel, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context) (Channel, error)

func (f OpenerFunc) Open(ctx context.Context) (Channel, error) { return f(ctx) }

// Connect opens and verifies the configured broker.
func Connect(ctx context.Context, cfg config.Broker) (Backend, error) {
	switch cfg.Backend {
	case config.BrokerRedis:
		return ConnectRedis(ctx, cfg.RedisURL)
	case config.BrokerNATS:
		return ConnectNATS(ctx, cfg.NATSURL)
	case config.BrokerLocal:
		return NewLocal(), nil
	default:
		return nil, &types.ConfigurationError{Component: "broker", Err: fmt.Errorf("unknown backend %q", cfg.Backend)}
	}
}

// Dial connects a dedicated broker connection and returns a Channel that owns it:
// closing the channel closes the connection.
func Dial(ctx context.Context, cfg config.Broker) (Channel, error) {
	backend, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	ch, err := backend.Open(ctx)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	return &owningChannel{Channel: ch, backend: backend}, nil
}

type owningChannel struct {
	Channel
	backend Backend
}

func (c *owningChannel) Close() error {
	return errors.Join(c.Channel.Close(), c.backend.Close())
}
