// Package types provides the error taxonomy shared by the EventDash packages.
//
// Three failure classes cross package boundaries:
//
//   - ConfigurationError: required environment configuration is missing. Fatal, never retried.
//   - ChannelUnavailableError: the transcript broker could not be reached.
//   - CallProviderError: the external telephony provider rejected a request or was unreachable.
//
// Callers match them with errors.As:
//
//	var cfgErr *types.ConfigurationError
//	if errors.As(err, &cfgErr) {
//	    // report cfgErr.Missing
//	}
package types

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTranscriptNotFound is returned when no transcript is persisted for a conversation.
	ErrTranscriptNotFound = errors.New("transcript not found")

	// ErrTranscriptTimeout is returned when a call produced no transcript within the wait bound.
	ErrTranscriptTimeout = errors.New("timed out waiting for transcript")

	// ErrUnknownTool is returned when a tool name is not registered.
	ErrUnknownTool = errors.New("unknown tool")
)

// ConfigurationError reports required configuration that is absent or invalid.
type ConfigurationError struct {
	Component string
	Missing   []string
	Err       error
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString("configuration error")
	if e.Component != "" {
		b.WriteString(" (")
		b.WriteString(e.Component)
		b.WriteString(")")
	}
	if len(e.Missing) > 0 {
		b.WriteString(": missing ")
		b.WriteString(strings.Join(e.Missing, ", "))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ChannelUnavailableError reports a transcript broker that could not be reached.
type ChannelUnavailableError struct {
	Backend string
	Err     error
}

func (e *ChannelUnavailableError) Error() string {
	return fmt.Sprintf("transcript channel %s unavailable: %v", e.Backend, e.Err)
}

func (e *ChannelUnavailableError) Unwrap() error {
	return e.Err
}

// CallProviderError reports a failure of the external telephony provider.
// StatusCode is zero when the provider could not be reached at all. Code carries the
// provider's own error number when it sent one.
type CallProviderError struct {
	Op         string
	StatusCode int
	Code       int64
	Message    string
	Err        error
}

func (e *CallProviderError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "call provider %s failed", e.Op)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " with status %d", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *CallProviderError) Unwrap() error {
	return e.Err
}

// IsConfigurationError reports whether err wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsChannelUnavailable reports whether err wraps a ChannelUnavailableError.
func IsChannelUnavailable(err error) bool {
	var target *ChannelUnavailableError
	return errors.As(err, &target)
}

// IsCallProviderError reports whether err wraps a CallProviderError.
func IsCallProviderError(err error) bool {
	var target *CallProviderError
	return errors.As(err, &target)
}
