package main

import (
	"context"
	"log/slog"

	"github.com/FrostGod/EventDash/assistant"
	"github.com/FrostGod/EventDash/config"
	"github.com/FrostGod/EventDash/pkg/slogx"
	"github.com/FrostGod/EventDash/server"
	"github.com/FrostGod/EventDash/slack"
	"github.com/FrostGod/EventDash/types"
	"github.com/fogfish/opts"
)

func runServe(ctx context.Context, cfg config.Config, args []string) error {
	fs := newFlagSet("serve")
	addr := fs.String("addr", cfg.Server.Addr, "listen address")
	durable := fs.Bool("temporal", false, "place calls through the Temporal workflow")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	options := []opts.Option[server.Server]{
		server.WithPublisher(a.backend),
		server.WithTranscriptStore(a.transcriptStore()),
		server.WithSessions(a.sessions()),
		server.WithSigningSecret(cfg.Slack.SigningSecret),
	}

	asst, err := a.assistant(ctx, *durable, assistant.WithHook(assistant.LogHook{Logger: slog.Default()}))
	switch {
	case err == nil:
		options = append(options, server.WithAsker(asst), server.WithTools(asst.Tools()))
	case types.IsConfigurationError(err):
		a.logger.WarnContext(ctx, "assistant is disabled", slogx.Error(err))
	default:
		return err
	}

	sc, err := slack.NewClient(cfg.Slack)
	switch {
	case err == nil:
		options = append(options, server.WithSlack(sc))
	case types.IsConfigurationError(err):
		a.logger.WarnContext(ctx, "slack replies are disabled", slogx.Error(err))
	default:
		return err
	}

	srv, err := server.New(cfg.Server, options...)
	if err != nil {
		return err
	}
	defer srv.Close()
	return srv.ListenAndServe(ctx, *addr)
}
