package slack

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/FrostGod/EventDash/config"
	"github.com/FrostGod/EventDash/pkg/jsonx"
	"github.com/FrostGod/EventDash/types"
	"github.com/fogfish/opts"
	"github.com/tidwall/gjson"
)

type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

var WithHTTPClient = opts.ForName[Client, *http.Client]("httpClient")

func NewClient(cfg config.Slack, options ...opts.Option[Client]) (*Client, error) {
	if cfg.BotToken == "" {
		return nil, &types.ConfigurationError{Component: "slack", Missing: []string{"SLACK_BOT_TOKEN"}}
	}
	c := &Client{
		token:      cfg.BotToken,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	if c.baseURL == "" {
		c.baseURL = "https://slack.com/api"
	}
	if err := opts.Apply(c, options); err != nil {
		return nil, err
	}
	return c, nil
}

// PostMessage posts text to channel, inside threadTS when it is set, and returns the
// timestamp of the new message.
func (c *Client) PostMessage(ctx context.Context, channel, text, threadTS string) (string, error) {
	if channel == "" {
		return "", errors.New("missing slack channel")
	}
	pairs := []any{"channel", channel, "text", text}
	if threadTS != "" {
		pairs = append(pairs, "thread_ts", threadTS)
	}
	payload, err := jsonx.Object(pairs...)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat.postMessage", bytes.NewBufferString(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to post slack message: %w", err)
	}
	defer res.Body.Close()
	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("slack returned status %d with an invalid body", res.StatusCode)
	}
	if !gjson.GetBytes(body, "ok").Bool() {
		msg := gjson.GetBytes(body, "error").String()
		if msg == "" {
			msg = "slack api error"
		}
		return "", fmt.Errorf("chat.postMessage: %s", msg)
	}
	ts := gjson.GetBytes(body, "ts").String()
	if ts == "" {
		return "", errors.New("missing slack message ts")
	}
	return ts, nil
}
