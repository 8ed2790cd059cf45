// Package workflow places calls through Temporal so a call survives the process that
// asked for it.
//
// The PlaceCall workflow runs a single activity that drives the call orchestrator. The
// activity is never retried: a retry would dial the venue a second time. Failures carry the
// final call.Result as error details so the caller still learns the terminal state.
package workflow
