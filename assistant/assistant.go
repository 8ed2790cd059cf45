package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/FrostGod/EventDash/pkg/slogx"
	"github.com/FrostGod/EventDash/provider"
	"github.com/FrostGod/EventDash/tool"
	"github.com/fogfish/opts"
)

const DefaultMaxTurns = 8

const DefaultInstructions = `You are EventDash, a helpful assistant that plans events end to end.
You can search for venues and services, look up the user's contacts, send emails,
prepare a budget breakdown and call venues or vendors on the user's behalf.
Before calling anyone, make sure you have an adequate phone number.
Summarise what you learned from each call for the user.`

// ErrMaxTurns is returned when the model keeps calling tools past the turn limit.
var ErrMaxTurns = errors.New("assistant reached the turn limit without an answer")

type Assistant struct {
	provider     provider.Provider
	tools        *tool.Registry
	instructions string
	model        string
	maxTurns     int
	approver     Approver
	hook         Hook
	logger       *slog.Logger
}

var (
	WithInstructions = opts.ForName[Assistant, string]("instructions")
	WithModel        = opts.ForName[Assistant, string]("model")
	WithMaxTurns     = opts.ForName[Assistant, int]("maxTurns")
	WithApprover     = opts.ForName[Assistant, Approver]("approver")
	WithHook         = opts.ForName[Assistant, Hook]("hook")
)

func New(p provider.Provider, tools *tool.Registry, options ...opts.Option[Assistant]) (*Assistant, error) {
	if p == nil {
		return nil, errors.New("provider is required")
	}
	if tools == nil {
		tools, _ = tool.NewRegistry()
	}
	a := &Assistant{
		provider:     p,
		tools:        tools,
		instructions: DefaultInstructions,
		maxTurns:     DefaultMaxTurns,
		logger:       slog.Default().With(slogx.LoggerName("assistant")),
	}
	if err := opts.Apply(a, options); err != nil {
		return nil, err
	}
	if a.maxTurns <= 0 {
		return nil, fmt.Errorf("max turns must be positive, got %d", a.maxTurns)
	}
	if a.hook == nil {
		a.hook = NopHook{}
	}
	return a, nil
}

func (a *Assistant) Tools() *tool.Registry {
	return a.tools
}

// Ask appends prompt to thread and runs the model until it answers. The thread receives
// every message of the exchange, including tool calls and their results, so callers can
// persist it and continue the conversation later.
func (a *Assistant) Ask(ctx context.Context, thread *provider.Thread, prompt string) (string, error) {
	if thread == nil {
		return "", errors.New("thread is required")
	}
	thread.AddUser("", prompt)

	specs, err := provider.ToolSpecs(a.tools.List())
	if err != nil {
		return "", err
	}

	for turn := 0; turn < a.maxTurns; turn++ {
		out, err := a.provider.ChatCompletion(ctx, provider.CompletionParams{
			Model:        a.model,
			Instructions: a.instructions,
			Thread:       thread,
			Tools:        specs,
		})
		if err != nil {
			a.hook.OnError(ctx, err)
			return "", err
		}
		thread.AddUsage(&out.Usage)
		thread.Add(out.Message)

		if !out.Message.HasToolCalls() {
			answer := out.Message.Content
			if answer == "" && out.Message.Refusal != "" {
				answer = out.Message.Refusal
			}
			a.hook.OnAnswer(ctx, answer)
			return answer, nil
		}

		for _, call := range out.Message.ToolCalls {
			thread.AddToolResponse(call.ID, call.Name, a.runTool(ctx, call))
		}
	}

	a.hook.OnError(ctx, ErrMaxTurns)
	return "", ErrMaxTurns
}

func (a *Assistant) runTool(ctx context.Context, call provider.ToolCall) string {
	input := tool.DecodeInput(call.Arguments)
	a.hook.OnToolCall(ctx, call.Name, input)

	if a.approver != nil {
		ok, err := a.approver.Approve(ctx, call.Name, input)
		if err != nil {
			a.hook.OnToolResult(ctx, call.Name, "", err)
			return "error: " + err.Error()
		}
		if !ok {
			out := fmt.Sprintf("the user declined to run %s", call.Name)
			a.hook.OnToolResult(ctx, call.Name, out, nil)
			return out
		}
	}

	out, err := a.tools.Invoke(ctx, call.Name, input)
	a.hook.OnToolResult(ctx, call.Name, out, err)
	if err != nil {
		a.logger.WarnContext(ctx, "tool failed", slogx.Tool(call.Name), slogx.Error(err))
		return "error: " + err.Error()
	}
	return out
}
