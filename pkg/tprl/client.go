// Package tprl builds Temporal clients wired to the process logger.
package tprl

import (
	"fmt"
	"log/slog"

	"github.com/FrostGod/EventDash/config"
	"github.com/FrostGod/EventDash/pkg/slogx"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/log"
)

// NewClient returns a lazily connecting Temporal client. The connection is only
// established on first use, so a missing server surfaces when a workflow starts.
func NewClient(cfg config.Temporal) (client.Client, error) {
	lg := slog.Default().With(slogx.LoggerName("eventdash.temporal"))

	hostPort := cfg.Address
	if hostPort == "" {
		hostPort = client.DefaultHostPort
	}
	cl, err := client.NewLazyClient(client.Options{
		HostPort:  hostPort,
		Namespace: cfg.Namespace,
		Logger:    log.NewStructuredLogger(lg),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create temporal client: %w", err)
	}
	return cl, nil
}
