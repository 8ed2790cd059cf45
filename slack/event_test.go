package slack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEvent(t *testing.T) {
	t.Run("url verification", func(t *testing.T) {
		ev, err := ParseEvent([]byte(`{"token":"x","challenge":"3eZbrw1aBm2rZgRNFdxV2595E9CY3gmdALWMmHkvFXO7tYXAYM8P","type":"url_verification"}`))
		require.NoError(t, err)
		assert.Equal(t, TypeURLVerification, ev.Type)
		assert.Equal(t, "3eZbrw1aBm2rZgRNFdxV2595E9CY3gmdALWMmHkvFXO7tYXAYM8P", ev.Challenge)
		assert.False(t, ev.IsMention())
	})

	t.Run("app mention", func(t *testing.T) {
		ev, err := ParseEvent([]byte(`{
			"type": "event_callback",
			"event_id": "Ev0LAN670R",
			"event": {
				"type": "app_mention",
				"user": "W021FGA1Z",
				"text": "<@U0LAN0Z89> find a venue for 80 people",
				"ts": "1515449483.000108",
				"channel": "C0LAN2Q65"
			}
		}`))
		require.NoError(t, err)
		assert.True(t, ev.IsMention())
		assert.Equal(t, "Ev0LAN670R", ev.EventID)
		assert.Equal(t, "C0LAN2Q65", ev.Channel)
		assert.Equal(t, "W021FGA1Z", ev.User)
		assert.Equal(t, "1515449483.000108", ev.ReplyThread())
		assert.Equal(t, "find a venue for 80 people", StripMentions(ev.Text))
	})

	t.Run("mention inside a thread", func(t *testing.T) {
		ev, err := ParseEvent([]byte(`{"type":"event_callback","event":{"type":"app_mention","ts":"2.0","thread_ts":"1.0","channel":"C1"}}`))
		require.NoError(t, err)
		assert.Equal(t, "1.0", ev.ReplyThread())
	})

	t.Run("bot messages are not mentions", func(t *testing.T) {
		ev, err := ParseEvent([]byte(`{"type":"event_callback","event":{"type":"app_mention","bot_id":"B1","channel":"C1"}}`))
		require.NoError(t, err)
		assert.False(t, ev.IsMention())
	})

	for name, body := range map[string]string{
		"not json":          `nope`,
		"no type":           `{"event":{}}`,
		"empty challenge":   `{"type":"url_verification"}`,
		"callback no event": `{"type":"event_callback"}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseEvent([]byte(body))
			assert.ErrorIs(t, err, ErrInvalidEvent)
		})
	}
}

func TestStripMentions(t *testing.T) {
	assert.Equal(t, "hello there", StripMentions("<@U123>   hello <@U456|bob> there"))
	assert.Equal(t, "", StripMentions("<@U123>"))
}
