// Package telephony starts and ends outbound phone calls.
//
// An Initiator turns a CallRequest into a live call: it stores the agent configuration the
// telephony server needs under the conversation id, then asks the Provider (Twilio in
// production) to dial the destination with a webhook pointing back at the telephony server.
//
//	req, err := telephony.ParseCallRequest("+15551234567|the assistant is booking a table|hi there", from)
//	id := telephony.NewConversationID()
//	call, err := initiator.Start(ctx, id, req)
//	defer initiator.End(ctx, call)
package telephony
