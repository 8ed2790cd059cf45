// Command eventdash runs the EventDash assistant and its supporting services.
//
//	eventdash chat                      interactive assistant in the terminal
//	eventdash call [-temporal] INPUT    place one call from "destination|prompt|opening"
//	eventdash subscribe ID              print transcripts published for a conversation
//	eventdash serve                     HTTP, Slack and websocket server
//	eventdash worker                    Temporal worker for durable calls
//	eventdash tools [NAME INPUT]        list the tools or invoke one
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	// Ensure API keys are loaded
	_ "github.com/joho/godotenv/autoload"

	"github.com/FrostGod/EventDash/config"
	"github.com/FrostGod/EventDash/pkg/slogx"
	"github.com/FrostGod/EventDash/types"
	"github.com/phsym/zeroslog"
	"github.com/rs/zerolog"
)

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, cfg config.Config, args []string) error
}

var commands = []command{
	{name: "chat", summary: "chat with the assistant in the terminal", run: runChat},
	{name: "call", summary: "place one call and print its transcript", run: runCall},
	{name: "subscribe", summary: "print transcripts published for a conversation", run: runSubscribe},
	{name: "serve", summary: "run the HTTP, Slack and websocket server", run: runServe},
	{name: "worker", summary: "run the Temporal worker for durable calls", run: runWorker},
	{name: "tools", summary: "list the available tools or invoke one", run: runTools},
}

func main() {
	if err := mainE(os.Args[1:]); err != nil {
		var cfgErr *types.ConfigurationError
		if errors.As(err, &cfgErr) {
			slog.Error("eventdash is not configured", slogx.Error(err))
			os.Exit(2)
		}
		slog.Error("eventdash failed", slogx.Error(err))
		os.Exit(1)
	}
}

func mainE(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		setupLogging("info")
		return err
	}
	setupLogging(cfg.LogLevel)

	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		usage(os.Stderr)
		return nil
	}

	for _, c := range commands {
		if c.name == args[0] {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.run(ctx, cfg, args[1:])
		}
	}
	usage(os.Stderr)
	return fmt.Errorf("unknown command %q", args[0])
}

func usage(w *os.File) {
	fmt.Fprintln(w, "usage: eventdash <command> [flags]")
	fmt.Fprintln(w)
	for _, c := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", c.name, c.summary)
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lvl = slog.LevelInfo
	}
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Stamp}
	log := zerolog.New(output).With().Timestamp().Logger()
	slog.SetDefault(slog.New(
		zeroslog.NewHandler(log, &zeroslog.HandlerOptions{Level: lvl}),
	))
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("eventdash "+name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}
