package provider

import (
	"time"

	"github.com/go-openapi/strfmt"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a single function call requested by the model.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Message is one entry of a conversation. Assistant messages carry either Content or
// ToolCalls; tool messages answer the call named by ToolCallID.
type Message struct {
	Role       Role            `json:"role"`
	Content    string          `json:"content,omitempty"`
	Refusal    string          `json:"refusal,omitempty"`
	ToolCalls  []ToolCall      `json:"tool_calls,omitempty"`
	ToolCallID string          `json:"tool_call_id,omitempty"`
	ToolName   string          `json:"tool_name,omitempty"`
	Sender     string          `json:"sender,omitempty"`
	Timestamp  strfmt.DateTime `json:"timestamp"`
}

func UserMessage(sender, content string) Message {
	return Message{Role: RoleUser, Sender: sender, Content: content, Timestamp: now()}
}

func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content, Timestamp: now()}
}

func ToolCallMessage(calls ...ToolCall) Message {
	return Message{Role: RoleAssistant, ToolCalls: calls, Timestamp: now()}
}

func ToolResponse(callID, toolName, content string) Message {
	return Message{Role: RoleTool, ToolCallID: callID, ToolName: toolName, Content: content, Timestamp: now()}
}

// HasToolCalls reports whether the model asked for tools instead of answering.
func (m Message) HasToolCalls() bool {
	return m.Role == RoleAssistant && len(m.ToolCalls) > 0
}

func now() strfmt.DateTime {
	return strfmt.DateTime(time.Now().UTC())
}

// Usage counts tokens consumed by completions.
type Usage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

func (u *Usage) AddUsage(other *Usage) {
	if other == nil {
		return
	}
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}
