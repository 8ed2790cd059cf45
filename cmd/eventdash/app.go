package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/FrostGod/EventDash/assistant"
	"github.com/FrostGod/EventDash/call"
	"github.com/FrostGod/EventDash/config"
	"github.com/FrostGod/EventDash/pkg/slogx"
	"github.com/FrostGod/EventDash/pkg/tprl"
	"github.com/FrostGod/EventDash/provider/openai"
	"github.com/FrostGod/EventDash/session"
	"github.com/FrostGod/EventDash/telephony"
	"github.com/FrostGod/EventDash/tool"
	"github.com/FrostGod/EventDash/tools"
	"github.com/FrostGod/EventDash/transcript"
	"github.com/FrostGod/EventDash/types"
	"github.com/FrostGod/EventDash/workflow"
	"github.com/fogfish/opts"
	"github.com/redis/go-redis/v9"
	"go.temporal.io/sdk/client"
)

const storeTTL = 24 * time.Hour

// app owns the process-wide connections. Components are built on demand so a command
// only needs the configuration it actually uses.
type app struct {
	cfg     config.Config
	backend transcript.Backend
	rdb     *redis.Client

	temporal client.Client
	logger   *slog.Logger
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	backend, err := transcript.Connect(ctx, cfg.Broker)
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:     cfg,
		backend: backend,
		logger:  slog.Default().With(slogx.LoggerName("eventdash")),
	}
	if rb, ok := backend.(*transcript.RedisBackend); ok {
		a.rdb = rb.Client()
	}
	a.logger.DebugContext(ctx, "transcript broker connected", slog.String("backend", backend.Name()))
	return a, nil
}

func (a *app) Close() error {
	if a.temporal != nil {
		a.temporal.Close()
	}
	return a.backend.Close()
}

func (a *app) transcriptStore() transcript.Store {
	if a.rdb != nil {
		return transcript.NewRedisStore(a.rdb, storeTTL)
	}
	return transcript.NewFileStore(a.cfg.Transcript.Dir)
}

func (a *app) callConfigs() telephony.ConfigStore {
	if a.rdb != nil {
		return telephony.NewRedisConfigStore(a.rdb, storeTTL)
	}
	return telephony.NewMemoryConfigStore()
}

func (a *app) sessions() session.Store {
	if a.rdb != nil {
		return session.NewRedisStore(a.rdb, session.DefaultTTL, session.DefaultMaxMessages)
	}
	return session.NewMemoryStore(session.DefaultMaxMessages)
}

// orchestrator places calls directly from this process.
func (a *app) orchestrator() (*call.Orchestrator, error) {
	twilio, err := telephony.NewTwilio(a.cfg.Telephony)
	if err != nil {
		return nil, err
	}
	initiator, err := telephony.NewInitiator(a.cfg.Telephony, twilio, a.callConfigs())
	if err != nil {
		return nil, err
	}
	return call.New(initiator, a.backend,
		call.WithTranscriptConfig(a.cfg.Transcript),
		call.WithStore(a.transcriptStore()),
		call.WithStateHook(func(ctx context.Context, id string, from, to call.State) {
			a.logger.DebugContext(ctx, "call state changed", slogx.ConversationID(id), slog.String("from", from.String()), slogx.State(to))
		}),
	)
}

func (a *app) temporalClient() (client.Client, error) {
	if a.temporal != nil {
		return a.temporal, nil
	}
	c, err := tprl.NewClient(a.cfg.Temporal)
	if err != nil {
		return nil, err
	}
	a.temporal = c
	return c, nil
}

// placer returns the Temporal-backed placer when durable is set, otherwise the in-process
// orchestrator.
func (a *app) placer(durable bool) (call.Placer, error) {
	if durable {
		c, err := a.temporalClient()
		if err != nil {
			return nil, err
		}
		return workflow.NewClient(c, a.cfg.Temporal, a.cfg.Transcript), nil
	}
	return a.orchestrator()
}

// tools builds the registry. Calling is left out, with a log line, when telephony is not
// configured.
func (a *app) tools(ctx context.Context, durable bool) (*tool.Registry, error) {
	placer, err := a.placer(durable)
	if err != nil {
		if !types.IsConfigurationError(err) {
			return nil, err
		}
		a.logger.WarnContext(ctx, "phone calls are disabled", slogx.Error(err))
		placer = nil
	}
	return tools.Default(ctx, a.cfg, placer)
}

func (a *app) assistant(ctx context.Context, durable bool, options ...opts.Option[assistant.Assistant]) (*assistant.Assistant, error) {
	reg, err := a.tools(ctx, durable)
	if err != nil {
		return nil, err
	}
	p, err := openai.New(a.cfg.OpenAI)
	if err != nil {
		return nil, err
	}
	options = append([]opts.Option[assistant.Assistant]{assistant.WithModel(p.Model())}, options...)
	asst, err := assistant.New(p, reg, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create assistant: %w", err)
	}
	return asst, nil
}
