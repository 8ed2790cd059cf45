// Package natsx connects to NATS with the options EventDash uses everywhere.
package natsx

import (
	"fmt"

	"github.com/nats-io/nats.go"
)

// Connect dials url. Without explicit options the connection is named "eventdash",
// compresses traffic and keeps reconnecting.
func Connect(url string, opts ...nats.Option) (*nats.Conn, error) {
	if len(opts) == 0 {
		opts = append(opts, nats.Name("eventdash"), nats.Compression(true), nats.MaxReconnects(-1))
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to nats at %s: %w", url, err)
	}
	return nc, nil
}

// Subject returns the subject transcripts for a conversation are published on.
func Subject(conversationID string) string {
	return "transcripts." + conversationID
}
