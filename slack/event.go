package slack

import (
	"errors"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	TypeURLVerification = "url_verification"
	TypeEventCallback   = "event_callback"
	EventAppMention     = "app_mention"
)

var ErrInvalidEvent = errors.New("invalid slack event")

// Event is the part of an Events API envelope EventDash acts on.
type Event struct {
	Type      string
	Challenge string
	EventID   string
	EventType string
	Channel   string
	User      string
	Text      string
	TS        string
	ThreadTS  string
	BotID     string
}

// ReplyThread is the thread a reply belongs in: the mention's thread, or a new thread
// started at the mention.
func (e Event) ReplyThread() string {
	if e.ThreadTS != "" {
		return e.ThreadTS
	}
	return e.TS
}

// IsMention reports whether the event is a user mentioning the app.
func (e Event) IsMention() bool {
	return e.Type == TypeEventCallback && e.EventType == EventAppMention && e.BotID == ""
}

func ParseEvent(body []byte) (Event, error) {
	if !gjson.ValidBytes(body) {
		return Event{}, ErrInvalidEvent
	}
	root := gjson.ParseBytes(body)
	ev := Event{
		Type:      root.Get("type").String(),
		Challenge: root.Get("challenge").String(),
		EventID:   root.Get("event_id").String(),
	}
	switch ev.Type {
	case TypeURLVerification:
		if ev.Challenge == "" {
			return Event{}, ErrInvalidEvent
		}
	case TypeEventCallback:
		inner := root.Get("event")
		if !inner.IsObject() {
			return Event{}, ErrInvalidEvent
		}
		ev.EventType = inner.Get("type").String()
		ev.Channel = inner.Get("channel").String()
		ev.User = inner.Get("user").String()
		ev.Text = inner.Get("text").String()
		ev.TS = inner.Get("ts").String()
		ev.ThreadTS = inner.Get("thread_ts").String()
		ev.BotID = inner.Get("bot_id").String()
	case "":
		return Event{}, ErrInvalidEvent
	}
	return ev, nil
}

var mentionPattern = regexp.MustCompile(`<@[A-Z0-9]+(\|[^>]*)?>`)

// StripMentions removes user mentions such as <@U123> from text.
func StripMentions(text string) string {
	return strings.Join(strings.Fields(mentionPattern.ReplaceAllString(text, "")), " ")
}
