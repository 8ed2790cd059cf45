package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/FrostGod/EventDash/call"
	"github.com/FrostGod/EventDash/config"
	"github.com/FrostGod/EventDash/pkg/slogx"
	"github.com/FrostGod/EventDash/telephony"
	"github.com/FrostGod/EventDash/types"
	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
)

var _ call.Placer = (*Client)(nil)

// Client places calls by starting the PlaceCall workflow and waiting for it.
type Client struct {
	temporal    client.Client
	taskQueue   string
	waitTimeout time.Duration
	logger      *slog.Logger
}

func NewClient(c client.Client, cfg config.Temporal, transcripts config.Transcript) *Client {
	taskQueue := cfg.TaskQueue
	if taskQueue == "" {
		taskQueue = "eventdash-calls"
	}
	return &Client{
		temporal:    c,
		taskQueue:   taskQueue,
		waitTimeout: transcripts.WaitTimeout,
		logger:      slog.Default().With(slogx.LoggerName("eventdash.workflow")),
	}
}

func (c *Client) Place(ctx context.Context, req telephony.CallRequest) (call.Result, error) {
	run, err := c.temporal.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        "call-" + uuid.Must(uuid.NewV7()).String(),
		TaskQueue: c.taskQueue,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}, WorkflowName, PlaceCallInput{Request: req, WaitTimeout: c.waitTimeout})
	if err != nil {
		return call.Result{State: call.Failed}, fmt.Errorf("failed to start call workflow: %w", err)
	}
	c.logger.InfoContext(ctx, "call workflow started", slog.String("workflow_id", run.GetID()), slog.String("run_id", run.GetRunID()))

	var res call.Result
	if err := run.Get(ctx, &res); err != nil {
		failed, ok := resultFromError(err)
		if !ok {
			failed = call.Result{State: call.Failed}
		}
		if failed.State == call.TimedOut {
			return failed, fmt.Errorf("call workflow %s: %w", run.GetID(), types.ErrTranscriptTimeout)
		}
		return failed, fmt.Errorf("call workflow %s: %w", run.GetID(), err)
	}
	return res, nil
}

// NewWorker registers the workflow and its activity on the task queue.
func NewWorker(c client.Client, cfg config.Temporal, acts *Activities) worker.Worker {
	taskQueue := cfg.TaskQueue
	if taskQueue == "" {
		taskQueue = "eventdash-calls"
	}
	w := worker.New(c, taskQueue, worker.Options{})
	Register(w, acts)
	return w
}

// Register adds the workflow and activity to any registry, including test environments.
func Register(r interface {
	RegisterWorkflowWithOptions(w interface{}, options workflow.RegisterOptions)
	RegisterActivityWithOptions(a interface{}, options activity.RegisterOptions)
}, acts *Activities) {
	r.RegisterWorkflowWithOptions(PlaceCall, workflow.RegisterOptions{Name: WorkflowName})
	r.RegisterActivityWithOptions(acts.PlaceCall, activity.RegisterOptions{Name: ActivityName})
}
