// Package phonecall exposes outbound calling as an assistant tool.
package phonecall

import (
	"context"
	"fmt"

	"github.com/FrostGod/EventDash/call"
	"github.com/FrostGod/EventDash/telephony"
	"github.com/FrostGod/EventDash/tool"
)

const Name = "call_phone_number"

const description = `calls a phone number as a bot and returns a transcript of the conversation.
the input to this tool is a pipe separated list of a phone number, a prompt, and the first thing the bot should say.
The prompt should instruct the bot with what to do on the call and be in the 3rd person,
like 'the assistant is performing this task' instead of 'perform this task'.

should only use this tool once it has found an adequate phone number to call.

for example, '+15555555555|the assistant is asking about availability on June 3rd|hi, I'm calling about booking your venue'
will call +15555555555, say the opening line, and instruct the assistant to ask about availability.`

// New returns the tool. from is the caller number used for every call.
func New(placer call.Placer, from string) tool.Definition {
	return tool.Must(func(ctx context.Context, input string) (string, error) {
		req, err := telephony.ParseCallRequest(input, from)
		if err != nil {
			return "", err
		}
		res, err := placer.Place(ctx, req)
		if err != nil {
			return "", fmt.Errorf("call to %s ended %s: %w", req.To, res.State, err)
		}
		return res.Transcript, nil
	},
		tool.Name(Name),
		tool.Description(description),
		tool.InputDescription("destination|prompt|opening, for example +15555555555|the assistant is booking a table|hello"),
	)
}
