/*
Package openai implements provider.Provider for OpenAI chat models through the official
openai-go SDK.

Every registered tool is offered as a function tool whose parameters are the tool's JSON
schema. The conversation thread is converted message by message: user prompts become user
messages, assistant tool calls become assistant messages carrying tool_calls, and tool
results become tool messages keyed by the call id.

	p, err := openai.New(cfg.OpenAI)
	if err != nil {
	    return err
	}
	out, err := p.ChatCompletion(ctx, provider.CompletionParams{
	    Instructions: "You are an event planner",
	    Thread:       thread,
	    Tools:        specs,
	})

A missing API key is reported as a types.ConfigurationError when the provider is built,
not on the first request.
*/
package openai
