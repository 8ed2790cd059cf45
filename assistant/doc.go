// Package assistant runs the event-planning conversation loop.
//
// Ask appends the user's prompt to a thread and asks the model for a reply, offering every
// tool in the registry. When the model answers with tool calls, each call is executed
// through the registry and its output is appended as a tool message before the model is
// asked again. The loop stops at the first plain answer or after MaxTurns model calls.
//
// Tool failures never abort the loop: the error text is handed to the model as the tool
// output so it can recover, for example by asking the user for a better phone number.
// An Approver can veto individual calls, which is how the chat REPL asks before placing a
// billable phone call.
package assistant
