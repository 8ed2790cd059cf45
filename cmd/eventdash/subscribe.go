package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/FrostGod/EventDash/config"
	"github.com/fatih/color"
)

// runSubscribe follows one conversation and prints each transcript as it is published.
func runSubscribe(ctx context.Context, cfg config.Config, args []string) error {
	fs := newFlagSet("subscribe")
	once := fs.Bool("once", false, "exit after the first transcript")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: eventdash subscribe [-once] CONVERSATION_ID")
	}
	conversationID := fs.Arg(0)

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ch, err := a.backend.Open(ctx)
	if err != nil {
		return err
	}
	defer ch.Close()
	if err := ch.Subscribe(ctx, conversationID); err != nil {
		return err
	}
	defer ch.Unsubscribe(context.WithoutCancel(ctx), conversationID)

	fmt.Fprintf(os.Stderr, "waiting for transcripts on %s\n", color.CyanString(conversationID))
	interval := cfg.Transcript.PollInterval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		msg, ok, err := ch.Poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if ok {
			fmt.Fprintf(os.Stdout, "%s %s\n%s\n", color.HiBlackString(msg.ReceivedAt.String()), color.CyanString(msg.ConversationID), msg.Text)
			if *once {
				return nil
			}
			continue
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
