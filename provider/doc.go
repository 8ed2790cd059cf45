// Package provider is the boundary between the assistant loop and a chat model.
//
// A Provider receives the system instructions, the conversation so far and the tools the
// model may call, and answers with a single assistant message. That message either carries
// text for the user or a set of tool calls the caller is expected to execute and feed back
// as tool messages before asking again.
//
// Thread is the ordered history shared by these turns. It can be forked for a speculative
// turn and joined back, and it can be windowed to the most recent messages before it is
// persisted, without ever leaving a tool result whose call was cut off.
//
//	thread := provider.NewThread("session-1")
//	thread.AddUser("alice", "find me a venue in Austin")
//	out, err := p.ChatCompletion(ctx, provider.CompletionParams{
//	    Model:        "gpt-4o-mini",
//	    Instructions: "You are an event planner",
//	    Thread:       thread,
//	    Tools:        specs,
//	})
package provider
