package telephony

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-openapi/strfmt"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func testConfigStore(t *testing.T, store ConfigStore) {
	ctx := context.Background()
	cfg := AgentConfig{
		ConversationID: "conv-1",
		To:             "+15551234567",
		From:           "+15550000000",
		PromptPreamble: "the assistant asks for the venue price",
		InitialMessage: "hi, is this the venue?",
		CreatedAt:      strfmt.DateTime(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)),
	}

	_, err := store.Load(ctx, "conv-1")
	require.ErrorIs(t, err, ErrConfigNotFound)

	require.NoError(t, store.Save(ctx, cfg))
	got, err := store.Load(ctx, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, cfg.PromptPreamble, got.PromptPreamble)
	assert.Equal(t, cfg.InitialMessage, got.InitialMessage)
	assert.Equal(t, cfg.To, got.To)
	assert.True(t, time.Time(cfg.CreatedAt).Equal(time.Time(got.CreatedAt)))

	require.NoError(t, store.Delete(ctx, "conv-1"))
	_, err = store.Load(ctx, "conv-1")
	require.ErrorIs(t, err, ErrConfigNotFound)

	require.NoError(t, store.Delete(ctx, "conv-1"), "deleting twice is fine")
}

func TestMemoryConfigStore(t *testing.T) {
	testConfigStore(t, NewMemoryConfigStore())
}

func TestRedisConfigStore(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		_, rdb := newRedis(t)
		testConfigStore(t, NewRedisConfigStore(rdb, time.Minute))
	})

	t.Run("applies ttl", func(t *testing.T) {
		mr, rdb := newRedis(t)
		store := NewRedisConfigStore(rdb, 0)
		require.NoError(t, store.Save(context.Background(), AgentConfig{ConversationID: "c"}))
		assert.Equal(t, time.Hour, mr.TTL("callconfig:c"))

		mr.FastForward(2 * time.Hour)
		_, err := store.Load(context.Background(), "c")
		assert.ErrorIs(t, err, ErrConfigNotFound)
	})
}
