package provider

import (
	"context"
	"fmt"

	"github.com/FrostGod/EventDash/tool"
)

// Provider defines the interface for chat model providers.
type Provider interface {
	ChatCompletion(context.Context, CompletionParams) (Completion, error)
}

// CompletionParams encapsulates everything needed for one chat completion request.
type CompletionParams struct {
	// Model names the model to use. Providers fall back to their default when empty.
	Model string

	// Instructions is the system prompt.
	Instructions string

	// Thread contains the conversation history.
	Thread *Thread

	// Tools the model may call.
	Tools []ToolSpec

	// Prevents unkeyed literals
	_ struct{}
}

// Completion is the model's reply to one request.
type Completion struct {
	Message Message
	Usage   Usage
}

// ToolSpec describes a callable tool in the form chat models expect.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolSpecs converts tools into their model-facing descriptions.
func ToolSpecs(tools []tool.Tool) ([]ToolSpec, error) {
	specs := make([]ToolSpec, 0, len(tools))
	for _, t := range tools {
		params, err := tool.Parameters(t)
		if err != nil {
			return nil, fmt.Errorf("failed to convert tool %s to schema: %w", t.Name(), err)
		}
		specs = append(specs, ToolSpec{Name: t.Name(), Description: t.Description(), Parameters: params})
	}
	return specs, nil
}
