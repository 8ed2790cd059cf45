/*
Package eventdash is an event-planning assistant that can pick up the phone.

A user describes an event in chat, Slack or over a websocket. The assistant searches for
venues and services, drafts budgets, sends email and, when it has a number, places an
outbound call through a voice agent. The call's transcript comes back over a broker and is
handed to the model as the tool result.

# Placing a call

The phone call tool takes a single pipe separated string:

	+15551234567|You are calling on behalf of Dana to book a hall for 80 people|Hi, is this the venue?

Only the first two pipes separate fields, so the opening line may contain more pipes. The
orchestrator in package call drives each call through

	PENDING -> INITIATED -> AWAITING_TRANSCRIPT -> COMPLETED | TIMED_OUT | FAILED

It subscribes to the transcript channel before the call is started so an early transcript is
never lost, polls until the transcript arrives or the wait bound passes, and always
unsubscribes and ends the call on the way out.

# Architecture

1. Calling (call, telephony, transcript)
  - telephony.Initiator stores the voice agent's prompt and asks Twilio to dial
  - transcript backends deliver transcripts over Redis pub/sub, NATS or in process
  - call.Orchestrator ties both together and reports a call.Result

2. Assistant (assistant, provider, tool, tools)
  - provider/openai speaks the chat completions API
  - assistant.Assistant runs the tool calling loop with approval and hooks
  - tools.Default assembles the built-in tools from configuration

3. Surfaces (server, slack, session, cmd/eventdash)
  - server exposes the transcript relay, Slack events, action-group dispatch and websocket chat
  - session keeps conversation threads in memory or Redis

4. Durability (workflow)
  - the PlaceCall Temporal workflow wraps the orchestrator so a call survives restarts

# Errors

Failures that cross package boundaries use the types in package types:
ConfigurationError for missing settings, ChannelUnavailableError when the broker cannot be
reached and CallProviderError when Twilio rejects a request.
*/
package eventdash
