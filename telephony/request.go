package telephony

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
)

// ErrInvalidCallRequest is returned for call input that cannot be turned into a CallRequest.
var ErrInvalidCallRequest = errors.New("invalid call request")

// CallRequest describes one outbound call. Prompt instructs the voice agent in the third
// person; InitialMessage is the first thing it says.
type CallRequest struct {
	To             string `json:"to"`
	From           string `json:"from"`
	Prompt         string `json:"prompt"`
	InitialMessage string `json:"initial_message"`
}

// Call is the provider-side handle of a started call.
type Call struct {
	ConversationID string          `json:"conversation_id"`
	SID            string          `json:"sid"`
	StartedAt      strfmt.DateTime `json:"started_at"`
}

// ParseCallRequest reads "destination|prompt|opening". Only the first two pipes separate
// fields, so the opening utterance may itself contain pipes.
func ParseCallRequest(input, from string) (CallRequest, error) {
	parts := strings.SplitN(input, "|", 3)
	if len(parts) < 3 {
		return CallRequest{}, fmt.Errorf("%w: expected destination|prompt|opening, got %d field(s)", ErrInvalidCallRequest, len(parts))
	}
	req := CallRequest{
		To:             strings.TrimSpace(parts[0]),
		From:           from,
		Prompt:         strings.TrimSpace(parts[1]),
		InitialMessage: strings.TrimSpace(parts[2]),
	}
	if req.To == "" {
		return CallRequest{}, fmt.Errorf("%w: destination is empty", ErrInvalidCallRequest)
	}
	return req, nil
}

// NewConversationID returns a fresh time-ordered conversation id.
func NewConversationID() string {
	return uuid.Must(uuid.NewV7()).String()
}
