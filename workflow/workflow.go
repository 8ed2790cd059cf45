package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/FrostGod/EventDash/call"
	"github.com/FrostGod/EventDash/telephony"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	WorkflowName = "PlaceCall"
	ActivityName = "PlaceCallActivity"

	// activityMargin is added to the transcript wait bound to cover dialing and cleanup.
	activityMargin = 2 * time.Minute
	// unboundedActivityTimeout caps calls placed without a wait bound.
	unboundedActivityTimeout = 24 * time.Hour

	heartbeatTimeout  = time.Minute
	heartbeatInterval = 15 * time.Second
)

// PlaceCallInput is the workflow argument.
type PlaceCallInput struct {
	Request     telephony.CallRequest `json:"request"`
	WaitTimeout time.Duration         `json:"wait_timeout"`
}

func activityTimeout(wait time.Duration) time.Duration {
	if wait <= 0 {
		return unboundedActivityTimeout
	}
	return wait + activityMargin
}

// PlaceCall is the workflow definition.
func PlaceCall(ctx workflow.Context, in PlaceCallInput) (call.Result, error) {
	log := workflow.GetLogger(ctx)
	log.Info("placing call", "to", in.Request.To)

	actx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout:    activityTimeout(in.WaitTimeout),
		ScheduleToStartTimeout: time.Minute,
		HeartbeatTimeout:       heartbeatTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	})

	var res call.Result
	if err := workflow.ExecuteActivity(actx, ActivityName, in).Get(ctx, &res); err != nil {
		return call.Result{}, err
	}
	log.Info("call finished", "conversation_id", res.ConversationID, "state", res.State.String())
	return res, nil
}

// Activities holds the worker-side dependencies of the workflow.
type Activities struct {
	placer call.Placer
}

func NewActivities(placer call.Placer) *Activities {
	return &Activities{placer: placer}
}

// PlaceCall runs the orchestrator with the caller's wait bound, so the transcript wait
// always ends before the activity's own timeout. It heartbeats while the call is in
// progress so a lost worker is noticed within heartbeatTimeout. A failed call is reported
// as a non-retryable application error whose type is the terminal state and whose details
// are the result.
func (a *Activities) PlaceCall(ctx context.Context, in PlaceCallInput) (call.Result, error) {
	log := activity.GetLogger(ctx)

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				activity.RecordHeartbeat(ctx)
			}
		}
	}()

	res, err := a.placer.Place(call.ContextWithWaitTimeout(ctx, in.WaitTimeout), in.Request)
	if err != nil {
		log.Warn("call did not complete", "state", res.State.String(), "error", err)
		return call.Result{}, temporal.NewNonRetryableApplicationError(err.Error(), res.State.String(), err, res)
	}
	return res, nil
}

// resultFromError recovers the call result carried by a failed activity.
func resultFromError(err error) (call.Result, bool) {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) || !appErr.HasDetails() {
		return call.Result{}, false
	}
	var res call.Result
	if derr := appErr.Details(&res); derr != nil {
		return call.Result{}, false
	}
	return res, true
}
