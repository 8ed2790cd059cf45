// Package call places an outbound call and waits for its transcript.
//
// Place drives one call through
//
//	PENDING → INITIATED → AWAITING_TRANSCRIPT → COMPLETED | TIMED_OUT | FAILED
//
// The transcript channel is subscribed before the call is dialed, so a transcript the
// telephony server publishes early is never lost. Whatever the outcome, the subscription is
// released and the call ended exactly once.
package call

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/FrostGod/EventDash/config"
	"github.com/FrostGod/EventDash/pkg/slogx"
	"github.com/FrostGod/EventDash/telephony"
	"github.com/FrostGod/EventDash/transcript"
	"github.com/FrostGod/EventDash/types"
	"github.com/fogfish/opts"
)

const (
	DefaultPollInterval = time.Second
	DefaultWaitTimeout  = 10 * time.Minute
	cleanupTimeout      = 10 * time.Second
)

// Starter begins and ends calls. *telephony.Initiator satisfies it.
type Starter interface {
	Start(ctx context.Context, conversationID string, req telephony.CallRequest) (telephony.Call, error)
	End(ctx context.Context, call telephony.Call) error
}

// Placer places a call and returns once its outcome is known.
type Placer interface {
	Place(ctx context.Context, req telephony.CallRequest) (Result, error)
}

// StateHook observes transitions. It runs synchronously on the placing goroutine.
type StateHook func(ctx context.Context, conversationID string, from, to State)

type Result struct {
	ConversationID string        `json:"conversation_id"`
	SID            string        `json:"sid,omitempty"`
	Transcript     string        `json:"transcript,omitempty"`
	State          State         `json:"state"`
	Duration       time.Duration `json:"duration"`
	// CleanupErr holds failures while unsubscribing or ending the call. It never changes State.
	CleanupErr error `json:"-"`
}

type Orchestrator struct {
	starter      Starter
	channels     transcript.Opener
	store        transcript.Store
	pollInterval time.Duration
	waitTimeout  time.Duration
	onState      StateHook
	newID        func() string
	logger       *slog.Logger
}

var (
	WithPollInterval = opts.ForName[Orchestrator, time.Duration]("pollInterval")
	// WithWaitTimeout bounds the wait for a transcript. Zero waits until the context ends.
	WithWaitTimeout = opts.ForName[Orchestrator, time.Duration]("waitTimeout")
	WithStore       = opts.ForName[Orchestrator, transcript.Store]("store")
	WithStateHook   = opts.ForName[Orchestrator, StateHook]("onState")
	withIDSource    = opts.ForName[Orchestrator, func() string]("newID")
)

type waitKey struct{}

// ContextWithWaitTimeout overrides the orchestrator's wait bound for calls placed with ctx.
// Zero waits until the context ends.
func ContextWithWaitTimeout(ctx context.Context, d time.Duration) context.Context {
	return context.WithValue(ctx, waitKey{}, d)
}

// WaitTimeoutFromContext reports the wait bound set by ContextWithWaitTimeout.
func WaitTimeoutFromContext(ctx context.Context) (time.Duration, bool) {
	d, ok := ctx.Value(waitKey{}).(time.Duration)
	return d, ok
}

// WithTranscriptConfig applies the poll interval and wait bound from configuration.
func WithTranscriptConfig(cfg config.Transcript) opts.Option[Orchestrator] {
	return opts.Type[Orchestrator](func(o *Orchestrator) error {
		if cfg.PollInterval > 0 {
			o.pollInterval = cfg.PollInterval
		}
		o.waitTimeout = cfg.WaitTimeout
		return nil
	})
}

func New(starter Starter, channels transcript.Opener, options ...opts.Option[Orchestrator]) (*Orchestrator, error) {
	if starter == nil || channels == nil {
		return nil, errors.New("call: starter and transcript channels are required")
	}
	o := &Orchestrator{
		starter:      starter,
		channels:     channels,
		pollInterval: DefaultPollInterval,
		waitTimeout:  DefaultWaitTimeout,
		newID:        telephony.NewConversationID,
		logger:       slog.Default().With(slogx.LoggerName("eventdash.call")),
	}
	if err := opts.Apply(o, options); err != nil {
		return nil, err
	}
	if o.pollInterval <= 0 {
		return nil, fmt.Errorf("call: poll interval must be positive, got %s", o.pollInterval)
	}
	if o.waitTimeout < 0 {
		return nil, fmt.Errorf("call: wait timeout must not be negative, got %s", o.waitTimeout)
	}
	return o, nil
}

// run tracks the state of one Place invocation.
type run struct {
	o     *Orchestrator
	id    string
	state State
	start time.Time
	wait  time.Duration
}

func (r *run) transition(ctx context.Context, to State) {
	from := r.state
	r.state = to
	r.o.logger.Debug("call state", slogx.ConversationID(r.id), slog.String("from", from.String()), slogx.State(to))
	if r.o.onState != nil {
		r.o.onState(ctx, r.id, from, to)
	}
}

func (r *run) fail(ctx context.Context, res Result, err error) (Result, error) {
	r.transition(ctx, Failed)
	res.State = Failed
	res.Duration = time.Since(r.start)
	r.o.logger.Error("call failed", slogx.ConversationID(r.id), slogx.Error(err))
	return res, err
}

// Place dials req.To and waits for the transcript of the call.
func (o *Orchestrator) Place(ctx context.Context, req telephony.CallRequest) (res Result, err error) {
	r := &run{o: o, id: o.newID(), state: Pending, start: time.Now(), wait: o.waitTimeout}
	if d, ok := WaitTimeoutFromContext(ctx); ok && d >= 0 {
		r.wait = d
	}
	res.ConversationID = r.id

	ch, err := o.channels.Open(ctx)
	if err != nil {
		return r.fail(ctx, res, err)
	}

	call := telephony.Call{ConversationID: r.id}
	defer func() {
		res.CleanupErr = o.cleanup(ctx, ch, call)
	}()

	if err := ch.Subscribe(ctx, r.id); err != nil {
		return r.fail(ctx, res, err)
	}

	started, err := o.starter.Start(ctx, r.id, req)
	if err != nil {
		return r.fail(ctx, res, err)
	}
	call = started
	res.SID = call.SID
	r.transition(ctx, Initiated)

	text, err := o.await(ctx, r, ch)
	res.Duration = time.Since(r.start)
	switch {
	case err == nil:
		if _, derr := o.deleteTranscript(ctx, r.id); derr != nil {
			o.logger.Warn("failed to delete persisted transcript", slogx.ConversationID(r.id), slogx.Error(derr))
		}
		r.transition(ctx, Completed)
		res.State = Completed
		res.Transcript = text
		o.logger.Info("call completed", slogx.ConversationID(r.id), slogx.Elapsed(r.start))
		return res, nil
	case errors.Is(err, types.ErrTranscriptTimeout):
		r.transition(ctx, TimedOut)
		res.State = TimedOut
		o.logger.Warn("no transcript before deadline", slogx.ConversationID(r.id), slog.Duration("timeout", r.wait))
		return res, err
	default:
		return r.fail(ctx, res, err)
	}
}

// await polls until a message arrives. Between polls it yields on a ticker so the goroutine
// is parked rather than spinning.
func (o *Orchestrator) await(ctx context.Context, r *run, ch transcript.Channel) (string, error) {
	r.transition(ctx, AwaitingTranscript)

	waitCtx := ctx
	if r.wait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, r.wait)
		defer cancel()
	}

	ticker := time.NewTicker(o.pollInterval)
	defer ticker.Stop()

	for {
		msg, ok, err := ch.Poll(waitCtx)
		if err != nil {
			return "", r.waitErr(ctx, waitCtx, err)
		}
		if ok {
			return msg.Text, nil
		}

		select {
		case <-waitCtx.Done():
			return "", r.waitErr(ctx, waitCtx, waitCtx.Err())
		case <-ticker.C:
		}
	}
}

// waitErr tells the wait bound expiring apart from the caller giving up.
func (r *run) waitErr(ctx, waitCtx context.Context, err error) error {
	if ctx.Err() == nil && errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", types.ErrTranscriptTimeout, r.wait)
	}
	return err
}

func (o *Orchestrator) deleteTranscript(ctx context.Context, id string) (bool, error) {
	if o.store == nil {
		return false, nil
	}
	return o.store.Delete(ctx, id)
}

// cleanup releases the subscription, ends the call and closes the channel, each exactly once.
// It runs detached from ctx cancellation so an abandoned wait still hangs up.
func (o *Orchestrator) cleanup(ctx context.Context, ch transcript.Channel, call telephony.Call) error {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	var errs []error
	if err := ch.Unsubscribe(cctx, call.ConversationID); err != nil {
		errs = append(errs, fmt.Errorf("unsubscribe: %w", err))
	}
	if err := o.starter.End(cctx, call); err != nil {
		errs = append(errs, fmt.Errorf("end call: %w", err))
	}
	if err := ch.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close channel: %w", err))
	}

	err := errors.Join(errs...)
	if err != nil {
		o.logger.Warn("call cleanup incomplete", slogx.ConversationID(call.ConversationID), slogx.Error(err))
	}
	return err
}
