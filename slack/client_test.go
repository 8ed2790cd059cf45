package slack

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/FrostGod/EventDash/config"
	"github.com/FrostGod/EventDash/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(config.Slack{BotToken: "xoxb-test", BaseURL: srv.URL}, WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(config.Slack{})
	assert.True(t, types.IsConfigurationError(err))
}

func TestPostMessage(t *testing.T) {
	t.Run("posts in thread", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/chat.postMessage", r.URL.Path)
			assert.Equal(t, "Bearer xoxb-test", r.Header.Get("Authorization"))
			body, _ := io.ReadAll(r.Body)
			assert.Equal(t, "C123", gjson.GetBytes(body, "channel").String())
			assert.Equal(t, "hello", gjson.GetBytes(body, "text").String())
			assert.Equal(t, "1.0", gjson.GetBytes(body, "thread_ts").String())
			_, _ = w.Write([]byte(`{"ok":true,"ts":"123.456"}`))
		})

		ts, err := c.PostMessage(context.Background(), "C123", "hello", "1.0")
		require.NoError(t, err)
		assert.Equal(t, "123.456", ts)
	})

	t.Run("top level", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			assert.False(t, gjson.GetBytes(body, "thread_ts").Exists())
			_, _ = w.Write([]byte(`{"ok":true,"ts":"9.9"}`))
		})
		_, err := c.PostMessage(context.Background(), "C123", "hello", "")
		require.NoError(t, err)
	})

	errorCases := []struct {
		name string
		body string
		want string
	}{
		{name: "api error", body: `{"ok":false,"error":"channel_not_found"}`, want: "chat.postMessage: channel_not_found"},
		{name: "generic error", body: `{"ok":false}`, want: "chat.postMessage: slack api error"},
		{name: "missing ts", body: `{"ok":true}`, want: "missing slack message ts"},
		{name: "not json", body: `not-json`, want: "slack returned status 200 with an invalid body"},
	}
	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.PostMessage(context.Background(), "C1", "x", "")
			assert.EqualError(t, err, tt.want)
		})
	}

	t.Run("missing channel", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("no request expected")
		})
		_, err := c.PostMessage(context.Background(), "", "x", "")
		assert.Error(t, err)
	})
}
