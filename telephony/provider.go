package telephony

import "context"

// CreateCallParams are the provider-neutral inputs for dialing a number.
type CreateCallParams struct {
	To                string
	From              string
	WebhookURL        string
	StatusCallbackURL string
}

// Provider is the external service that places phone calls.
type Provider interface {
	// CreateCall dials the destination and returns the provider call id.
	CreateCall(ctx context.Context, params CreateCallParams) (string, error)
	// HangUp terminates a call. Calls that already finished are not an error.
	HangUp(ctx context.Context, sid string) error
}
