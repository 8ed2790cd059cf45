// Package slack lets the assistant answer mentions in Slack.
//
// Incoming Events API requests are authenticated with VerifySignature and decoded with
// ParseEvent; replies go back through Client.PostMessage in the thread of the mention.
package slack
