package assistant

import (
	"context"
	"log/slog"

	"github.com/FrostGod/EventDash/pkg/slogx"
)

// Hook observes the assistant loop. Implementations must not block.
type Hook interface {
	OnToolCall(ctx context.Context, toolName, input string)
	OnToolResult(ctx context.Context, toolName, output string, err error)
	OnAnswer(ctx context.Context, answer string)
	OnError(ctx context.Context, err error)
}

type NopHook struct{}

func (NopHook) OnToolCall(context.Context, string, string)          {}
func (NopHook) OnToolResult(context.Context, string, string, error) {}
func (NopHook) OnAnswer(context.Context, string)                    {}
func (NopHook) OnError(context.Context, error)                      {}

// LogHook writes every event to a structured logger.
type LogHook struct {
	Logger *slog.Logger
}

func (h LogHook) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

func (h LogHook) OnToolCall(ctx context.Context, toolName, input string) {
	h.logger().InfoContext(ctx, "calling tool", slogx.Tool(toolName), slogx.Truncate("input", input, 200))
}

func (h LogHook) OnToolResult(ctx context.Context, toolName, output string, err error) {
	if err != nil {
		h.logger().WarnContext(ctx, "tool returned an error", slogx.Tool(toolName), slogx.Error(err))
		return
	}
	h.logger().InfoContext(ctx, "tool returned", slogx.Tool(toolName), slogx.Truncate("output", output, 200))
}

func (h LogHook) OnAnswer(ctx context.Context, answer string) {
	h.logger().DebugContext(ctx, "assistant answered", slogx.Truncate("answer", answer, 200))
}

func (h LogHook) OnError(ctx context.Context, err error) {
	h.logger().ErrorContext(ctx, "assistant failed", slogx.Error(err))
}

// Hooks fans every event out to each hook in order.
type Hooks []Hook

func (hs Hooks) OnToolCall(ctx context.Context, toolName, input string) {
	for _, h := range hs {
		h.OnToolCall(ctx, toolName, input)
	}
}

func (hs Hooks) OnToolResult(ctx context.Context, toolName, output string, err error) {
	for _, h := range hs {
		h.OnToolResult(ctx, toolName, output, err)
	}
}

func (hs Hooks) OnAnswer(ctx context.Context, answer string) {
	for _, h := range hs {
		h.OnAnswer(ctx, answer)
	}
}

func (hs Hooks) OnError(ctx context.Context, err error) {
	for _, h := range hs {
		h.OnError(ctx, err)
	}
}
