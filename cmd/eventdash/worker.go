package main

import (
	"context"
	"log/slog"

	"github.com/FrostGod/EventDash/config"
	"github.com/FrostGod/EventDash/workflow"
)

// runWorker hosts the PlaceCall workflow. Activities place calls with the in-process
// orchestrator, so the worker needs the telephony and broker settings.
func runWorker(ctx context.Context, cfg config.Config, args []string) error {
	fs := newFlagSet("worker")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	orch, err := a.orchestrator()
	if err != nil {
		return err
	}
	c, err := a.temporalClient()
	if err != nil {
		return err
	}

	w := workflow.NewWorker(c, cfg.Temporal, workflow.NewActivities(orch))
	a.logger.InfoContext(ctx, "starting worker", slog.String("task_queue", cfg.Temporal.TaskQueue))

	interrupt := make(chan any)
	go func() {
		<-ctx.Done()
		close(interrupt)
	}()
	return w.Run(interrupt)
}
