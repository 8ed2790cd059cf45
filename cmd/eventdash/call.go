package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/FrostGod/EventDash/call"
	"github.com/FrostGod/EventDash/config"
	"github.com/FrostGod/EventDash/telephony"
	"github.com/FrostGod/EventDash/types"
	"github.com/fatih/color"
	"github.com/k0kubun/pp/v3"
)

func runCall(ctx context.Context, cfg config.Config, args []string) error {
	fs := newFlagSet("call")
	durable := fs.Bool("temporal", false, "place the call through the Temporal workflow")
	timeout := fs.Duration("timeout", 0, "override the transcript wait bound (0 keeps the configured value)")
	asJSON := fs.Bool("json", false, "print the full result")
	if err := fs.Parse(args); err != nil {
		return err
	}
	input := strings.Join(fs.Args(), " ")
	if strings.TrimSpace(input) == "" {
		return errors.New(`usage: eventdash call [-temporal] "destination|prompt|opening"`)
	}
	if *timeout > 0 {
		cfg.Transcript.WaitTimeout = *timeout
	}

	req, err := telephony.ParseCallRequest(input, cfg.Telephony.CallerNumber)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	placer, err := a.placer(*durable)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "%s %s\n", color.CyanString("calling"), req.To)
	res, err := placer.Place(ctx, req)
	if *asJSON {
		pp.Println(res)
	}
	return printResult(res, err)
}

func printResult(res call.Result, err error) error {
	state := color.GreenString(res.State.String())
	if res.State != call.Completed {
		state = color.RedString(res.State.String())
	}
	fmt.Fprintf(os.Stdout, "%s %s after %s\n", color.CyanString(res.ConversationID), state, res.Duration.Round(time.Second))

	switch {
	case err == nil:
		fmt.Fprintln(os.Stdout, res.Transcript)
		return nil
	case errors.Is(err, types.ErrTranscriptTimeout):
		fmt.Fprintln(os.Stdout, "no transcript arrived before the wait bound")
		return err
	default:
		return err
	}
}
