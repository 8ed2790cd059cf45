// Package tools assembles the built-in event-planning tools into a registry.
//
// Tools whose backing service is not configured are left out instead of failing, so a
// deployment without Mailgun still gets search, contacts, budgeting and calling.
package tools

import (
	"context"
	"log/slog"

	"github.com/FrostGod/EventDash/call"
	"github.com/FrostGod/EventDash/config"
	"github.com/FrostGod/EventDash/pkg/slogx"
	"github.com/FrostGod/EventDash/tool"
	"github.com/FrostGod/EventDash/tools/budget"
	"github.com/FrostGod/EventDash/tools/contacts"
	"github.com/FrostGod/EventDash/tools/mail"
	"github.com/FrostGod/EventDash/tools/phonecall"
	"github.com/FrostGod/EventDash/tools/search"
	"github.com/FrostGod/EventDash/types"
	"github.com/fogfish/opts"
)

// Default builds the registry for cfg. placer may be nil, in which case the phone call
// tool is not offered.
func Default(ctx context.Context, cfg config.Config, placer call.Placer) (*tool.Registry, error) {
	logger := slog.Default().With(slogx.LoggerName("tools"))
	skip := func(name string, err error) {
		logger.InfoContext(ctx, "tool disabled", slogx.Tool(name), slogx.Error(err))
	}

	reg, err := tool.NewRegistry(
		contacts.New(cfg.Contacts),
		budget.New(),
	)
	if err != nil {
		return nil, err
	}

	var ddgOpts []opts.Option[search.DuckDuckGo]
	if cfg.Search.DuckDuckGoURL != "" {
		ddgOpts = append(ddgOpts, search.WithDuckDuckGoURL(cfg.Search.DuckDuckGoURL))
	}
	ddg, err := search.NewDuckDuckGo(ddgOpts...)
	if err != nil {
		return nil, err
	}
	if err := reg.Register(ddg.Tool()); err != nil {
		return nil, err
	}

	if you, err := search.NewYou(cfg.Search); err == nil {
		if err := reg.Register(you.ServicesTool()); err != nil {
			return nil, err
		}
	} else if types.IsConfigurationError(err) {
		skip(search.ServicesName, err)
	} else {
		return nil, err
	}

	if mg, err := mail.NewMailgun(cfg.Mail); err == nil {
		if err := reg.Register(mg.Tool()); err != nil {
			return nil, err
		}
	} else if types.IsConfigurationError(err) {
		skip(mail.Name, err)
	} else {
		return nil, err
	}

	if placer != nil {
		if err := reg.Register(phonecall.New(placer, cfg.Telephony.CallerNumber)); err != nil {
			return nil, err
		}
	} else {
		skip(phonecall.Name, nil)
	}
	return reg, nil
}
