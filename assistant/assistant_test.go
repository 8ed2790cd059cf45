package assistant

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/FrostGod/EventDash/provider"
	"github.com/FrostGod/EventDash/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedProvider replies with the queued messages in order and records what it saw.
type scriptedProvider struct {
	mu      sync.Mutex
	replies []provider.Message
	err     error
	seen    []provider.CompletionParams
}

func (p *scriptedProvider) ChatCompletion(_ context.Context, params provider.CompletionParams) (provider.Completion, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen = append(p.seen, params)
	if p.err != nil {
		return provider.Completion{}, p.err
	}
	if len(p.replies) == 0 {
		return provider.Completion{Message: provider.AssistantMessage("done")}, nil
	}
	next := p.replies[0]
	p.replies = p.replies[1:]
	return provider.Completion{Message: next, Usage: provider.Usage{TotalTokens: 1}}, nil
}

type recordingHook struct {
	NopHook
	calls   []string
	results []string
	answers []string
	errs    []error
}

func (h *recordingHook) OnToolCall(_ context.Context, name, input string) {
	h.calls = append(h.calls, name+":"+input)
}

func (h *recordingHook) OnToolResult(_ context.Context, name, output string, err error) {
	if err != nil {
		output = "err=" + err.Error()
	}
	h.results = append(h.results, name+":"+output)
}

func (h *recordingHook) OnAnswer(_ context.Context, answer string) { h.answers = append(h.answers, answer) }
func (h *recordingHook) OnError(_ context.Context, err error)      { h.errs = append(h.errs, err) }

func testRegistry(t *testing.T) *tool.Registry {
	t.Helper()
	upper := tool.Must(func(_ context.Context, in string) (string, error) {
		return strings.ToUpper(in), nil
	}, tool.Name("upper"), tool.Description("upper-cases the input"))
	broken := tool.Must(func(context.Context, string) (string, error) {
		return "", errors.New("venue line busy")
	}, tool.Name("broken"))
	reg, err := tool.NewRegistry(upper, broken)
	require.NoError(t, err)
	return reg
}

func toolCall(id, name, input string) provider.ToolCall {
	return provider.ToolCall{ID: id, Name: name, Arguments: `{"input":"` + input + `"}`}
}

func TestAsk(t *testing.T) {
	t.Run("plain answer", func(t *testing.T) {
		p := &scriptedProvider{replies: []provider.Message{provider.AssistantMessage("Austin has great venues")}}
		hook := &recordingHook{}
		a, err := New(p, testRegistry(t), WithHook(Hook(hook)), WithModel("gpt-4o"))
		require.NoError(t, err)

		thread := provider.NewThread("s1")
		answer, err := a.Ask(context.Background(), thread, "where should I host?")
		require.NoError(t, err)
		assert.Equal(t, "Austin has great venues", answer)
		assert.Equal(t, []string{"Austin has great venues"}, hook.answers)

		require.Len(t, p.seen, 1)
		assert.Equal(t, "gpt-4o", p.seen[0].Model)
		assert.Equal(t, DefaultInstructions, p.seen[0].Instructions)
		assert.Len(t, p.seen[0].Tools, 2)
		assert.Equal(t, 2, thread.Len())
		assert.Equal(t, int64(1), thread.Usage().TotalTokens)
	})

	t.Run("runs tools and feeds results back", func(t *testing.T) {
		p := &scriptedProvider{replies: []provider.Message{
			provider.ToolCallMessage(toolCall("c1", "upper", "hello"), toolCall("c2", "broken", "x")),
			provider.AssistantMessage("HELLO, but the venue was busy"),
		}}
		hook := &recordingHook{}
		a, err := New(p, testRegistry(t), WithHook(Hook(hook)))
		require.NoError(t, err)

		thread := provider.NewThread("s1")
		answer, err := a.Ask(context.Background(), thread, "shout hello")
		require.NoError(t, err)
		assert.Equal(t, "HELLO, but the venue was busy", answer)

		msgs := thread.Messages()
		require.Len(t, msgs, 5)
		assert.Equal(t, provider.RoleTool, msgs[2].Role)
		assert.Equal(t, "c1", msgs[2].ToolCallID)
		assert.Equal(t, "HELLO", msgs[2].Content)
		assert.Equal(t, "c2", msgs[3].ToolCallID)
		assert.Equal(t, "error: venue line busy", msgs[3].Content)

		assert.Equal(t, []string{"upper:hello", "broken:x"}, hook.calls)
		assert.Equal(t, []string{"upper:HELLO", "broken:err=venue line busy"}, hook.results)
		assert.Len(t, p.seen, 2)
	})

	t.Run("unknown tool is reported to the model", func(t *testing.T) {
		p := &scriptedProvider{replies: []provider.Message{
			provider.ToolCallMessage(toolCall("c1", "teleport", "")),
		}}
		a, err := New(p, testRegistry(t))
		require.NoError(t, err)

		thread := provider.NewThread("s1")
		answer, err := a.Ask(context.Background(), thread, "go")
		require.NoError(t, err)
		assert.Equal(t, "done", answer)
		assert.Equal(t, "error: unknown tool: teleport", thread.Messages()[2].Content)
	})

	t.Run("approver can decline", func(t *testing.T) {
		p := &scriptedProvider{replies: []provider.Message{
			provider.ToolCallMessage(toolCall("c1", "upper", "a"), toolCall("c2", "broken", "b")),
		}}
		var asked []string
		approver := ApproverFunc(func(_ context.Context, name, input string) (bool, error) {
			asked = append(asked, name)
			return false, nil
		})
		a, err := New(p, testRegistry(t), WithApprover(OnlyFor(approver, "upper")))
		require.NoError(t, err)

		thread := provider.NewThread("s1")
		_, err = a.Ask(context.Background(), thread, "go")
		require.NoError(t, err)
		assert.Equal(t, []string{"upper"}, asked)
		msgs := thread.Messages()
		assert.Equal(t, "the user declined to run upper", msgs[2].Content)
		assert.Equal(t, "error: venue line busy", msgs[3].Content)
	})

	t.Run("turn limit", func(t *testing.T) {
		loop := make([]provider.Message, 5)
		for i := range loop {
			loop[i] = provider.ToolCallMessage(toolCall("c", "upper", "again"))
		}
		p := &scriptedProvider{replies: loop}
		hook := &recordingHook{}
		a, err := New(p, testRegistry(t), WithMaxTurns(3), WithHook(Hook(hook)))
		require.NoError(t, err)

		_, err = a.Ask(context.Background(), provider.NewThread("s1"), "loop forever")
		assert.ErrorIs(t, err, ErrMaxTurns)
		assert.Len(t, p.seen, 3)
		assert.Equal(t, []error{ErrMaxTurns}, hook.errs)
	})

	t.Run("provider error", func(t *testing.T) {
		boom := errors.New("rate limited")
		a, err := New(&scriptedProvider{err: boom}, nil)
		require.NoError(t, err)
		_, err = a.Ask(context.Background(), provider.NewThread("s1"), "hi")
		assert.ErrorIs(t, err, boom)
	})
}

func TestNew(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)

	_, err = New(&scriptedProvider{}, nil, WithMaxTurns(0))
	assert.Error(t, err)
}

func TestHooks(t *testing.T) {
	a, b := &recordingHook{}, &recordingHook{}
	hs := Hooks{a, b, LogHook{}}
	ctx := context.Background()
	hs.OnToolCall(ctx, "upper", "x")
	hs.OnToolResult(ctx, "upper", "X", nil)
	hs.OnAnswer(ctx, "ok")
	hs.OnError(ctx, errors.New("boom"))

	for _, h := range []*recordingHook{a, b} {
		assert.Equal(t, []string{"upper:x"}, h.calls)
		assert.Equal(t, []string{"upper:X"}, h.results)
		assert.Equal(t, []string{"ok"}, h.answers)
		assert.Len(t, h.errs, 1)
	}
}
