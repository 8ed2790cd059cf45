package openai

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/FrostGod/EventDash/config"
	"github.com/FrostGod/EventDash/provider"
	"github.com/FrostGod/EventDash/types"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

var _ provider.Provider = (*Provider)(nil)

type Provider struct {
	client *openai.Client
	model  string
}

// New builds a provider from cfg. Extra request options are applied after the ones
// derived from cfg.
func New(cfg config.OpenAI, options ...option.RequestOption) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, &types.ConfigurationError{Component: "openai", Missing: []string{"OPENAI_API_KEY"}}
	}
	reqOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	reqOpts = append(reqOpts, options...)

	model := cfg.Model
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}
	return &Provider{
		client: openai.NewClient(reqOpts...),
		model:  model,
	}, nil
}

func (p *Provider) Model() string {
	return p.model
}

func (p *Provider) buildRequest(params *provider.CompletionParams) (openai.ChatCompletionNewParams, error) {
	if params.Thread == nil {
		return openai.ChatCompletionNewParams{}, fmt.Errorf("thread is required")
	}
	result, user := messagesToOpenAI(params.Instructions, params.Thread.All())

	tools := make([]openai.ChatCompletionToolParam, len(params.Tools))
	for i, tool := range params.Tools {
		if strings.TrimSpace(tool.Name) == "" {
			return openai.ChatCompletionNewParams{}, fmt.Errorf("tool %d has no name", i)
		}
		def := openai.FunctionDefinitionParam{
			Name:       openai.String(tool.Name),
			Parameters: openai.F(shared.FunctionParameters(tool.Parameters)),
		}
		if strings.TrimSpace(tool.Description) != "" {
			def.Description = openai.String(tool.Description)
		}
		tools[i] = openai.ChatCompletionToolParam{
			Type:     openai.F(openai.ChatCompletionToolTypeFunction),
			Function: openai.F(def),
		}
	}

	model := params.Model
	if model == "" {
		model = p.model
	}
	oaiParams := openai.ChatCompletionNewParams{
		Messages:    openai.F(result),
		Model:       openai.F(model),
		N:           openai.Int(1),
		Temperature: openai.Float(0.1),
	}
	if len(tools) > 0 {
		oaiParams.Tools = openai.F(tools)
		oaiParams.ParallelToolCalls = openai.Bool(true)
	}
	if strings.TrimSpace(user) != "" {
		oaiParams.User = openai.String(user)
	}
	return oaiParams, nil
}

func (p *Provider) ChatCompletion(ctx context.Context, params provider.CompletionParams) (provider.Completion, error) {
	chatParams, err := p.buildRequest(&params)
	if err != nil {
		return provider.Completion{}, fmt.Errorf("failed to build request: %w", err)
	}
	chat, err := p.client.Chat.Completions.New(ctx, chatParams)
	if err != nil {
		return provider.Completion{}, fmt.Errorf("chat completion: %w", err)
	}
	return completionToMessage(chat)
}

func messagesToOpenAI(instructions string, msgs iter.Seq[provider.Message]) ([]openai.ChatCompletionMessageParamUnion, string) {
	var result []openai.ChatCompletionMessageParamUnion
	if instructions != "" {
		result = append(result, openai.SystemMessage(instructions))
	}
	var user string
	for msg := range msgs {
		switch msg.Role {
		case provider.RoleTool:
			result = append(result, openai.ToolMessage(msg.ToolCallID, msg.Content))
		case provider.RoleUser:
			if msg.Sender != "" {
				user = msg.Sender
			}
			result = append(result, openai.UserMessageParts(openai.TextPart(msg.Content)))
		case provider.RoleAssistant:
			if msg.HasToolCalls() {
				tcd := make([]openai.ChatCompletionMessageToolCallParam, len(msg.ToolCalls))
				for i, tc := range msg.ToolCalls {
					tcd[i] = openai.ChatCompletionMessageToolCallParam{
						ID:   openai.String(tc.ID),
						Type: openai.F(openai.ChatCompletionMessageToolCallTypeFunction),
						Function: openai.F(openai.ChatCompletionMessageToolCallFunctionParam{
							Name:      openai.String(tc.Name),
							Arguments: openai.String(tc.Arguments),
						}),
					}
				}
				result = append(result, openai.ChatCompletionMessageParam{
					Role:      openai.F(openai.ChatCompletionMessageParamRoleAssistant),
					ToolCalls: openai.F[any](tcd),
				})
				continue
			}
			am := openai.ChatCompletionAssistantMessageParam{
				Role: openai.F(openai.ChatCompletionAssistantMessageParamRoleAssistant),
			}
			if msg.Content != "" {
				am.Content.Value = append(am.Content.Value, openai.TextPart(msg.Content))
			}
			if msg.Refusal != "" {
				am.Refusal = openai.String(msg.Refusal)
			}
			result = append(result, am)
		}
	}
	return result, user
}

func completionToMessage(chat *openai.ChatCompletion) (provider.Completion, error) {
	if chat == nil || len(chat.Choices) == 0 {
		return provider.Completion{}, fmt.Errorf("chat completion returned no choices")
	}
	usage := provider.Usage{
		PromptTokens:     chat.Usage.PromptTokens,
		CompletionTokens: chat.Usage.CompletionTokens,
		TotalTokens:      chat.Usage.TotalTokens,
	}

	choice := chat.Choices[0].Message
	if len(choice.ToolCalls) > 0 {
		calls := make([]provider.ToolCall, len(choice.ToolCalls))
		for i, tc := range choice.ToolCalls {
			calls[i] = provider.ToolCall{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			}
		}
		return provider.Completion{Message: provider.ToolCallMessage(calls...), Usage: usage}, nil
	}

	msg := provider.AssistantMessage(choice.Content)
	msg.Refusal = choice.Refusal
	return provider.Completion{Message: msg, Usage: usage}, nil
}
