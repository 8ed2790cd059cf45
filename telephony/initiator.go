package telephony

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/FrostGod/EventDash/config"
	"github.com/FrostGod/EventDash/pkg/slogx"
	"github.com/go-openapi/strfmt"
)

// Initiator places and ends calls on behalf of the orchestrator.
type Initiator struct {
	provider     Provider
	configs      ConfigStore
	baseURL      string
	callerNumber string
	now          func() time.Time
	logger       *slog.Logger
}

// NewInitiator validates the telephony settings up front so a misconfigured deployment
// fails before any call is attempted.
func NewInitiator(cfg config.Telephony, provider Provider, configs ConfigStore) (*Initiator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Initiator{
		provider:     provider,
		configs:      configs,
		baseURL:      hostOnly(cfg.BaseURL),
		callerNumber: cfg.CallerNumber,
		now:          time.Now,
		logger:       slog.Default().With(slogx.LoggerName("eventdash.telephony")),
	}, nil
}

// CallerNumber is the number calls are placed from unless a request names one.
func (i *Initiator) CallerNumber() string {
	return i.callerNumber
}

// WebhookURL is where the provider fetches call instructions for a conversation.
func (i *Initiator) WebhookURL(conversationID string) string {
	return fmt.Sprintf("https://%s/twiml/initiate_call/%s", i.baseURL, conversationID)
}

func (i *Initiator) statusCallbackURL(conversationID string) string {
	return fmt.Sprintf("https://%s/events/call_status/%s", i.baseURL, conversationID)
}

// Start stores the agent configuration and dials the destination.
func (i *Initiator) Start(ctx context.Context, conversationID string, req CallRequest) (Call, error) {
	from := req.From
	if from == "" {
		from = i.callerNumber
	}

	agentCfg := AgentConfig{
		ConversationID: conversationID,
		To:             req.To,
		From:           from,
		PromptPreamble: req.Prompt,
		InitialMessage: req.InitialMessage,
		CreatedAt:      strfmt.DateTime(i.now()),
	}
	if err := i.configs.Save(ctx, agentCfg); err != nil {
		return Call{}, fmt.Errorf("failed to store call configuration: %w", err)
	}

	sid, err := i.provider.CreateCall(ctx, CreateCallParams{
		To:                req.To,
		From:              from,
		WebhookURL:        i.WebhookURL(conversationID),
		StatusCallbackURL: i.statusCallbackURL(conversationID),
	})
	if err != nil {
		if derr := i.configs.Delete(context.WithoutCancel(ctx), conversationID); derr != nil {
			i.logger.Warn("failed to remove call configuration", slogx.ConversationID(conversationID), slogx.Error(derr))
		}
		return Call{}, err
	}

	i.logger.Info("call started", slogx.ConversationID(conversationID), slog.String("sid", sid), slog.String("to", req.To))
	return Call{ConversationID: conversationID, SID: sid, StartedAt: strfmt.DateTime(i.now())}, nil
}

// End hangs up and drops the stored configuration. Both steps are attempted; their
// errors are joined.
func (i *Initiator) End(ctx context.Context, call Call) error {
	var errs []error
	if call.SID != "" {
		if err := i.provider.HangUp(ctx, call.SID); err != nil {
			errs = append(errs, err)
		}
	}
	if call.ConversationID != "" {
		if err := i.configs.Delete(ctx, call.ConversationID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func hostOnly(base string) string {
	base = strings.TrimSpace(base)
	base = strings.TrimPrefix(base, "https://")
	base = strings.TrimPrefix(base, "http://")
	return strings.TrimRight(base, "/")
}
