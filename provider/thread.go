package provider

import (
	"iter"
	"slices"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Thread is the ordered history of one conversation together with its token usage.
// A Thread is not safe for concurrent use; Fork it to hand a copy to another goroutine.
type Thread struct {
	id       string
	messages []Message
	initLen  int // length at fork time, used by Join
	usage    Usage
}

// NewThread creates an empty thread. An empty id gets a generated one.
func NewThread(id string) *Thread {
	if id == "" {
		id = uuid.Must(uuid.NewV7()).String()
	}
	return &Thread{id: id}
}

func (t *Thread) ID() string {
	return t.id
}

func (t *Thread) Len() int {
	return len(t.messages)
}

// TurnLen returns the number of messages added since the thread was forked.
func (t *Thread) TurnLen() int {
	return len(t.messages) - t.initLen
}

// Messages returns a copy of the history.
func (t *Thread) Messages() []Message {
	return slices.Clone(t.messages)
}

func (t *Thread) All() iter.Seq[Message] {
	return slices.Values(t.messages)
}

func (t *Thread) Add(msgs ...Message) {
	t.messages = append(t.messages, msgs...)
}

func (t *Thread) AddUser(sender, content string) {
	t.Add(UserMessage(sender, content))
}

func (t *Thread) AddAssistant(content string) {
	t.Add(AssistantMessage(content))
}

func (t *Thread) AddToolCalls(calls ...ToolCall) {
	t.Add(ToolCallMessage(calls...))
}

func (t *Thread) AddToolResponse(callID, toolName, content string) {
	t.Add(ToolResponse(callID, toolName, content))
}

func (t *Thread) Usage() Usage {
	return t.usage
}

func (t *Thread) AddUsage(u *Usage) {
	t.usage.AddUsage(u)
}

// Fork creates a thread that starts with a copy of the current messages. Messages added
// to the fork can be merged back with Join.
func (t *Thread) Fork() *Thread {
	return &Thread{
		id:       t.id,
		messages: slices.Clone(t.messages),
		initLen:  len(t.messages),
	}
}

// Join appends the messages b gained since it was forked and adds its usage.
//
//	forked := thread.Fork()     // [1,2], initLen=2
//	thread.Add(msg3)            // [1,2,3]
//	forked.Add(msg4)            // [1,2,4]
//	thread.Join(forked)         // [1,2,3,4]
func (t *Thread) Join(b *Thread) {
	t.messages = append(t.messages, b.messages[b.initLen:]...)
	t.usage.AddUsage(&b.usage)
}

// Window returns a copy holding at most the n most recent messages. Tool results at the
// start of the window whose calls fell outside it are dropped as well, since models reject
// a tool message without its preceding call.
func (t *Thread) Window(n int) *Thread {
	msgs := t.messages
	if n >= 0 && len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	for len(msgs) > 0 && msgs[0].Role == RoleTool {
		msgs = msgs[1:]
	}
	return &Thread{id: t.id, messages: slices.Clone(msgs), usage: t.usage}
}

type threadJSON struct {
	ID       string    `json:"id"`
	Messages []Message `json:"messages"`
	Usage    Usage     `json:"usage"`
}

func (t *Thread) MarshalJSON() ([]byte, error) {
	msgs := t.messages
	if msgs == nil {
		msgs = []Message{}
	}
	return json.Marshal(threadJSON{ID: t.id, Messages: msgs, Usage: t.usage})
}

func (t *Thread) UnmarshalJSON(data []byte) error {
	var v threadJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	t.id = v.ID
	t.messages = v.Messages
	t.usage = v.Usage
	t.initLen = 0
	return nil
}
