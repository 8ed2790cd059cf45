package transcript

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/FrostGod/EventDash/config"
	"github.com/FrostGod/EventDash/types"
	"github.com/alicebob/miniredis/v2"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backendFactory func(t *testing.T) Backend

func TestBackends(t *testing.T) {
	factories := map[string]backendFactory{
		"local": func(t *testing.T) Backend { return NewLocal() },
		"redis": func(t *testing.T) Backend {
			mr := miniredis.RunT(t)
			b, err := ConnectRedis(context.Background(), "redis://"+mr.Addr()+"/0")
			require.NoError(t, err)
			t.Cleanup(func() { _ = b.Close() })
			return b
		},
		"nats": func(t *testing.T) Backend {
			b, err := ConnectNATS(context.Background(), nats.DefaultURL)
			if err != nil {
				t.Skipf("nats server not reachable: %v", err)
			}
			t.Cleanup(func() { _ = b.Close() })
			return b
		},
	}

	tests := []struct {
		name string
		run  func(t *testing.T, b Backend)
	}{
		{"poll before subscribe", testPollBeforeSubscribe},
		{"poll is non-blocking", testPollNonBlocking},
		{"delivers published transcript", testDelivers},
		{"preserves arrival order", testOrder},
		{"isolates conversations", testIsolation},
		{"no delivery after unsubscribe", testUnsubscribe},
		{"rejects second subscription", testSecondSubscribe},
		{"closed channel", testClosed},
		{"cancelled context", testCancelledPoll},
	}

	for name, factory := range factories {
		for _, tt := range tests {
			t.Run(name+"/"+tt.name, func(t *testing.T) {
				tt.run(t, factory(t))
			})
		}
	}
}

func open(t *testing.T, b Backend) Channel {
	t.Helper()
	ch, err := b.Open(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = ch.Close() })
	return ch
}

func eventually(t *testing.T, ch Channel) Message {
	t.Helper()
	var got Message
	require.Eventually(t, func() bool {
		msg, ok, err := ch.Poll(context.Background())
		require.NoError(t, err)
		if ok {
			got = msg
		}
		return ok
	}, 2*time.Second, 10*time.Millisecond)
	return got
}

func testPollBeforeSubscribe(t *testing.T, b Backend) {
	_, _, err := open(t, b).Poll(context.Background())
	assert.ErrorIs(t, err, ErrNotSubscribed)
}

func testPollNonBlocking(t *testing.T, b Backend) {
	ch := open(t, b)
	require.NoError(t, ch.Subscribe(context.Background(), "quiet"))

	start := time.Now()
	_, ok, err := ch.Poll(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func testDelivers(t *testing.T, b Backend) {
	ctx := context.Background()
	ch := open(t, b)
	require.NoError(t, ch.Subscribe(ctx, "conv-1"))
	require.NoError(t, b.Publish(ctx, "conv-1", "BOT: hello\nHUMAN: hi"))

	msg := eventually(t, ch)
	assert.Equal(t, "conv-1", msg.ConversationID)
	assert.Equal(t, "BOT: hello\nHUMAN: hi", msg.Text)
	assert.False(t, time.Time(msg.ReceivedAt).IsZero())
}

func testOrder(t *testing.T, b Backend) {
	ctx := context.Background()
	ch := open(t, b)
	require.NoError(t, ch.Subscribe(ctx, "ordered"))
	for _, text := range []string{"one", "two", "three"} {
		require.NoError(t, b.Publish(ctx, "ordered", text))
	}

	var got []string
	for range 3 {
		got = append(got, eventually(t, ch).Text)
	}
	assert.Equal(t, []string{"one", "two", "three"}, got)
}

func testIsolation(t *testing.T, b Backend) {
	ctx := context.Background()
	mine := open(t, b)
	other := open(t, b)
	require.NoError(t, mine.Subscribe(ctx, "mine"))
	require.NoError(t, other.Subscribe(ctx, "other"))

	require.NoError(t, b.Publish(ctx, "other", "not yours"))
	assert.Equal(t, "not yours", eventually(t, other).Text)

	_, ok, err := mine.Poll(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func testUnsubscribe(t *testing.T, b Backend) {
	ctx := context.Background()
	ch := open(t, b)
	require.NoError(t, ch.Subscribe(ctx, "gone"))
	require.NoError(t, ch.Unsubscribe(ctx, "gone"))
	require.NoError(t, ch.Unsubscribe(ctx, "gone"), "unsubscribing twice is harmless")

	require.NoError(t, b.Publish(ctx, "gone", "late"))
	time.Sleep(50 * time.Millisecond)
	_, ok, _ := ch.Poll(ctx)
	assert.False(t, ok)
}

func testSecondSubscribe(t *testing.T, b Backend) {
	ctx := context.Background()
	ch := open(t, b)
	require.NoError(t, ch.Subscribe(ctx, "first"))
	assert.ErrorIs(t, ch.Subscribe(ctx, "second"), ErrAlreadySubscribed)
}

func testClosed(t *testing.T, b Backend) {
	ctx := context.Background()
	ch := open(t, b)
	require.NoError(t, ch.Close())
	assert.ErrorIs(t, ch.Subscribe(ctx, "x"), ErrChannelClosed)
	_, _, err := ch.Poll(ctx)
	assert.ErrorIs(t, err, ErrChannelClosed)
	assert.NoError(t, ch.Close())
}

func testCancelledPoll(t *testing.T, b Backend) {
	ch := open(t, b)
	require.NoError(t, ch.Subscribe(context.Background(), "x"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := ch.Poll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDial(t *testing.T) {
	t.Run("local", func(t *testing.T) {
		ch, err := Dial(context.Background(), config.Broker{Backend: config.BrokerLocal})
		require.NoError(t, err)
		assert.NoError(t, ch.Close())
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		ch, err := Dial(context.Background(), config.Broker{Backend: config.BrokerRedis, RedisURL: "redis://" + mr.Addr()})
		require.NoError(t, err)
		require.NoError(t, ch.Subscribe(context.Background(), "c"))
		mr.Publish("c", "hello")
		assert.Equal(t, "hello", eventually(t, ch).Text)
		assert.NoError(t, ch.Close())
	})

	t.Run("unreachable redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		_, err := Dial(context.Background(), config.Broker{Backend: config.BrokerRedis, RedisURL: "redis://" + addr})
		var unavailable *types.ChannelUnavailableError
		require.ErrorAs(t, err, &unavailable)
		assert.Equal(t, "redis", unavailable.Backend)
	})

	t.Run("malformed redis url", func(t *testing.T) {
		_, err := Dial(context.Background(), config.Broker{Backend: config.BrokerRedis, RedisURL: "://nope"})
		assert.True(t, types.IsConfigurationError(err))
	})

	t.Run("unreachable nats", func(t *testing.T) {
		_, err := Dial(context.Background(), config.Broker{Backend: config.BrokerNATS, NATSURL: "nats://127.0.0.1:1"})
		assert.True(t, types.IsChannelUnavailable(err))
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := Dial(context.Background(), config.Broker{Backend: "kafka"})
		assert.True(t, types.IsConfigurationError(err))
	})
}

func TestLocalSubscribers(t *testing.T) {
	b := NewLocal()
	ch := open(t, b)
	require.NoError(t, ch.Subscribe(context.Background(), "c"))
	assert.Equal(t, 1, b.Subscribers("c"))
	require.NoError(t, ch.Unsubscribe(context.Background(), "c"))
	assert.Equal(t, 0, b.Subscribers("c"))
}

func TestLocalPublishWithoutSubscribers(t *testing.T) {
	b := NewLocal()
	for i := range 50 {
		require.NoError(t, b.Publish(context.Background(), fmt.Sprintf("unfollowed-%d", i), "late"))
	}
	assert.Equal(t, 0, b.Subscribers("unfollowed-0"))

	ch := open(t, b)
	require.NoError(t, ch.Subscribe(context.Background(), "unfollowed-0"))
	_, ok, err := ch.Poll(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}
