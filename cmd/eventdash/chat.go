package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/user"
	"strings"

	"github.com/FrostGod/EventDash/assistant"
	"github.com/FrostGod/EventDash/config"
	"github.com/FrostGod/EventDash/provider"
	"github.com/FrostGod/EventDash/tools/phonecall"
	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
)

func runChat(ctx context.Context, cfg config.Config, args []string) error {
	fs := newFlagSet("chat")
	durable := fs.Bool("temporal", false, "place calls through the Temporal workflow")
	sessionID := fs.String("session", "", "resume a stored session")
	autoApprove := fs.Bool("yes", false, "place calls without asking for confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	in := bufio.NewScanner(os.Stdin)
	console := &consoleHook{w: os.Stdout}
	var approver assistant.Approver = assistant.ApproverFunc(func(context.Context, string, string) (bool, error) { return true, nil })
	if !*autoApprove {
		approver = &promptApprover{in: in, w: os.Stdout}
	}

	asst, err := a.assistant(ctx, *durable,
		assistant.WithHook(console),
		assistant.WithApprover(assistant.OnlyFor(approver, phonecall.Name)),
	)
	if err != nil {
		return err
	}

	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		return err
	}
	return repl(ctx, in, os.Stdout, asst, a.sessions(), *sessionID, renderer)
}

type asker interface {
	Ask(ctx context.Context, thread *provider.Thread, prompt string) (string, error)
}

func repl(ctx context.Context, in *bufio.Scanner, w io.Writer, asst asker, sessions sessionStore, sessionID string, glam *glamour.TermRenderer) error {
	thread := provider.NewThread("")
	if sessionID != "" {
		var err error
		if thread, err = sessions.Load(ctx, sessionID); err != nil {
			return err
		}
	}
	name := "User"
	if u, err := user.Current(); err == nil && u != nil && u.Username != "" {
		name = u.Username
	}
	fmt.Fprintf(w, "session %s, type \"exit\" to quit\n", color.HiBlackString(thread.ID()))

	for {
		fmt.Fprintf(w, "%s: ", color.CyanString(name))
		if !in.Scan() {
			fmt.Fprintln(w, "Exiting...")
			return in.Err()
		}
		input := strings.TrimSpace(in.Text())
		if input == "" {
			continue
		}
		if strings.EqualFold(input, "exit") {
			return nil
		}

		answer, err := asst.Ask(ctx, thread, input)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(w, "%s %v\n", color.RedString("Error:"), err)
			continue
		}
		if err := sessions.Save(ctx, thread); err != nil {
			fmt.Fprintf(w, "%s failed to save session: %v\n", color.RedString("Warning:"), err)
		}

		fmt.Fprint(w, color.MagentaString("EventDash")+": ")
		out, err := glam.Render(answer)
		if err != nil {
			out = answer
		}
		fmt.Fprintln(w, strings.TrimSpace(out))
		fmt.Fprintln(w)
	}
}

type sessionStore interface {
	Load(ctx context.Context, id string) (*provider.Thread, error)
	Save(ctx context.Context, thread *provider.Thread) error
}

// consoleHook prints tool activity while the assistant works.
type consoleHook struct {
	assistant.NopHook
	w io.Writer
}

func (h *consoleHook) OnToolCall(_ context.Context, toolName, input string) {
	fmt.Fprintf(h.w, "%s(%s)\n", color.YellowString(toolName), input)
}

func (h *consoleHook) OnToolResult(_ context.Context, toolName, output string, err error) {
	if err != nil {
		fmt.Fprintf(h.w, "%s: %s %v\n", color.YellowString(toolName), color.RedString("error"), err)
		return
	}
	fmt.Fprintf(h.w, "%s: %s\n", color.YellowString(toolName), firstLine(output, 120))
}

func firstLine(s string, n int) string {
	s, _, _ = strings.Cut(strings.TrimSpace(s), "\n")
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}

// promptApprover asks on the terminal before a guarded tool runs.
type promptApprover struct {
	in *bufio.Scanner
	w  io.Writer
}

func (p *promptApprover) Approve(_ context.Context, toolName, input string) (bool, error) {
	fmt.Fprintf(p.w, "%s wants to run %s with %q. Proceed? [y/N] ", color.MagentaString("EventDash"), color.YellowString(toolName), input)
	if !p.in.Scan() {
		return false, p.in.Err()
	}
	switch strings.ToLower(strings.TrimSpace(p.in.Text())) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
