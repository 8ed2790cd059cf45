package transcript

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/FrostGod/EventDash/types"
	"github.com/go-openapi/strfmt"
	"github.com/redis/go-redis/v9"
)

type RedisBackend struct {
	rdb        *redis.Client
	ownsClient bool
}

// ConnectRedis parses url, connects and pings the server.
func ConnectRedis(ctx context.Context, url string) (*RedisBackend, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, &types.ConfigurationError{Component: "broker", Err: fmt.Errorf("invalid REDIS_URL: %w", err)}
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, &types.ChannelUnavailableError{Backend: "redis", Err: err}
	}
	return &RedisBackend{rdb: rdb, ownsClient: true}, nil
}

// NewRedisBackend shares an existing client. Close leaves the client open.
func NewRedisBackend(rdb *redis.Client) *RedisBackend {
	return &RedisBackend{rdb: rdb}
}

func (b *RedisBackend) Name() string { return "redis" }

// Client exposes the underlying connection for stores that share it.
func (b *RedisBackend) Client() *redis.Client { return b.rdb }

func (b *RedisBackend) Publish(ctx context.Context, conversationID, text string) error {
	if err := b.rdb.Publish(ctx, conversationID, text).Err(); err != nil {
		return &types.ChannelUnavailableError{Backend: "redis", Err: err}
	}
	return nil
}

func (b *RedisBackend) Open(context.Context) (Channel, error) {
	return &redisChannel{rdb: b.rdb}, nil
}

func (b *RedisBackend) Close() error {
	if !b.ownsClient {
		return nil
	}
	return b.rdb.Close()
}

type redisChannel struct {
	rdb *redis.Client

	mu     sync.Mutex
	pubsub *redis.PubSub
	msgs   <-chan *redis.Message
	closed bool
}

func (c *redisChannel) Subscribe(ctx context.Context, conversationID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrChannelClosed
	}
	if c.pubsub != nil {
		return ErrAlreadySubscribed
	}

	pubsub := c.rdb.Subscribe(ctx, conversationID)
	// Receive waits for the subscription confirmation so no message published after
	// Subscribe returns can be missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return &types.ChannelUnavailableError{Backend: "redis", Err: err}
	}
	c.pubsub = pubsub
	c.msgs = pubsub.Channel()
	return nil
}

func (c *redisChannel) Poll(ctx context.Context) (Message, bool, error) {
	if err := ctx.Err(); err != nil {
		return Message{}, false, err
	}
	c.mu.Lock()
	msgs, closed := c.msgs, c.closed
	c.mu.Unlock()
	if closed {
		return Message{}, false, ErrChannelClosed
	}
	if msgs == nil {
		return Message{}, false, ErrNotSubscribed
	}

	select {
	case m, ok := <-msgs:
		if !ok {
			return Message{}, false, &types.ChannelUnavailableError{Backend: "redis", Err: ErrChannelClosed}
		}
		return Message{
			ConversationID: m.Channel,
			Text:           m.Payload,
			ReceivedAt:     strfmt.DateTime(time.Now()),
		}, true, nil
	default:
		return Message{}, false, nil
	}
}

func (c *redisChannel) Unsubscribe(ctx context.Context, conversationID string) error {
	c.mu.Lock()
	pubsub := c.pubsub
	c.mu.Unlock()
	if pubsub == nil {
		return nil
	}
	if err := pubsub.Unsubscribe(ctx, conversationID); err != nil {
		return &types.ChannelUnavailableError{Backend: "redis", Err: err}
	}
	// The server confirms the unsubscribe asynchronously; stop local delivery now so a
	// message still in flight never reaches Poll.
	c.mu.Lock()
	c.msgs = nil
	c.mu.Unlock()
	return nil
}

func (c *redisChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.pubsub == nil {
		return nil
	}
	return c.pubsub.Close()
}
