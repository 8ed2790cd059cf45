// Package slogx provides slog attribute helpers with the keys EventDash logs under.
package slogx

import (
	"fmt"
	"log/slog"
	"time"
)

const (
	KeyLoggerName     = "logger"
	KeyConversationID = "conversation_id"
	KeyState          = "state"
	KeyTool           = "tool"
	KeyError          = "error"
)

// Error returns an "error" attribute holding err's message. A nil error yields an empty value.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

// LoggerName names the component producing a log line.
func LoggerName(name string) slog.Attr {
	return slog.String(KeyLoggerName, name)
}

func ConversationID(id string) slog.Attr {
	return slog.String(KeyConversationID, id)
}

// State records a call state transition target.
func State(state fmt.Stringer) slog.Attr {
	return slog.String(KeyState, state.String())
}

func Tool(name string) slog.Attr {
	return slog.String(KeyTool, name)
}

// Elapsed records the time since start, rounded to milliseconds.
func Elapsed(start time.Time) slog.Attr {
	return slog.Duration("elapsed", time.Since(start).Round(time.Millisecond))
}

// ByteString logs a byte slice as text.
func ByteString(key string, value []byte) slog.Attr {
	return slog.String(key, string(value))
}

// Truncate logs at most n runes of value, marking the cut with an ellipsis.
func Truncate(key, value string, n int) slog.Attr {
	r := []rune(value)
	if len(r) <= n {
		return slog.String(key, value)
	}
	return slog.String(key, string(r[:n])+"…")
}
