package transcript

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/FrostGod/EventDash/pkg/natsx"
	"github.com/FrostGod/EventDash/types"
	"github.com/go-openapi/strfmt"
	"github.com/nats-io/nats.go"
)

const natsBufferSize = 64

type NATSBackend struct {
	nc       *nats.Conn
	ownsConn bool
}

// ConnectNATS dials url and checks the connection is live.
func ConnectNATS(ctx context.Context, url string) (*NATSBackend, error) {
	if err := ctx.Err(); err != nil {
		return nil, &types.ChannelUnavailableError{Backend: "nats", Err: err}
	}
	nc, err := natsx.Connect(url)
	if err != nil {
		return nil, &types.ChannelUnavailableError{Backend: "nats", Err: err}
	}
	if !nc.IsConnected() {
		nc.Close()
		return nil, &types.ChannelUnavailableError{Backend: "nats", Err: errors.New("not connected")}
	}
	return &NATSBackend{nc: nc, ownsConn: true}, nil
}

// NewNATSBackend shares an existing connection. Close leaves it open.
func NewNATSBackend(nc *nats.Conn) *NATSBackend {
	return &NATSBackend{nc: nc}
}

func (b *NATSBackend) Name() string { return "nats" }

func (b *NATSBackend) Publish(ctx context.Context, conversationID, text string) error {
	if err := b.nc.Publish(natsx.Subject(conversationID), []byte(text)); err != nil {
		return &types.ChannelUnavailableError{Backend: "nats", Err: err}
	}
	if err := b.nc.FlushWithContext(ctx); err != nil {
		return &types.ChannelUnavailableError{Backend: "nats", Err: err}
	}
	return nil
}

func (b *NATSBackend) Open(context.Context) (Channel, error) {
	return &natsChannel{nc: b.nc}, nil
}

func (b *NATSBackend) Close() error {
	if b.ownsConn {
		b.nc.Close()
	}
	return nil
}

type natsChannel struct {
	nc *nats.Conn

	mu             sync.Mutex
	sub            *nats.Subscription
	msgs           chan *nats.Msg
	conversationID string
	closed         bool
}

func (c *natsChannel) Subscribe(ctx context.Context, conversationID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrChannelClosed
	}
	if c.sub != nil {
		return ErrAlreadySubscribed
	}

	msgs := make(chan *nats.Msg, natsBufferSize)
	sub, err := c.nc.ChanSubscribe(natsx.Subject(conversationID), msgs)
	if err != nil {
		return &types.ChannelUnavailableError{Backend: "nats", Err: err}
	}
	// Flush makes sure the server registered the interest before the call starts.
	if err := c.nc.FlushWithContext(ctx); err != nil {
		_ = sub.Unsubscribe()
		return &types.ChannelUnavailableError{Backend: "nats", Err: err}
	}
	c.sub, c.msgs, c.conversationID = sub, msgs, conversationID
	return nil
}

func (c *natsChannel) Poll(ctx context.Context) (Message, bool, error) {
	if err := ctx.Err(); err != nil {
		return Message{}, false, err
	}
	c.mu.Lock()
	msgs, id, closed := c.msgs, c.conversationID, c.closed
	c.mu.Unlock()
	if closed {
		return Message{}, false, ErrChannelClosed
	}
	if msgs == nil {
		return Message{}, false, ErrNotSubscribed
	}

	select {
	case m := <-msgs:
		return Message{ConversationID: id, Text: string(m.Data), ReceivedAt: strfmt.DateTime(time.Now())}, true, nil
	default:
		if c.nc.IsClosed() {
			return Message{}, false, &types.ChannelUnavailableError{Backend: "nats", Err: nats.ErrConnectionClosed}
		}
		return Message{}, false, nil
	}
}

func (c *natsChannel) Unsubscribe(_ context.Context, _ string) error {
	c.mu.Lock()
	sub := c.sub
	c.mu.Unlock()
	if sub == nil || !sub.IsValid() {
		return nil
	}
	if err := sub.Unsubscribe(); err != nil {
		return &types.ChannelUnavailableError{Backend: "nats", Err: err}
	}
	return nil
}

func (c *natsChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}
