//
// Copyright (C) 2025 EnsembleWorks.  All rights reserved.
//
// ensemble is licensed under the Apache License Version 2.0.
//

// Package anthropic provides the Anthropic messages model implementation.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"

	"github.com/ensembleworks/ensemble/model"
	"github.com/ensembleworks/ensemble/tool"
)

const (
	apiKeyEnv        = "ANTHROPIC_API_KEY"
	functionToolType = "function"

	// defaultMaxTokens is used when the request does not set a limit;
	// the messages API requires max_tokens on every call.
	defaultMaxTokens = 4096
)

// Model implements model.Model using the Anthropic messages API.
type Model struct {
	client anthropic.Client
	name   string
}

// New creates an Anthropic model for the given model name, e.g.
// "claude-sonnet-4-5". The API key is taken from the ANTHROPIC_API_KEY
// environment variable unless overridden with WithAPIKey; a missing key is a
// configuration error and no network traffic happens before it is reported.
func New(name string, opts ...Option) (*Model, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.apiKey == "" {
		o.apiKey = os.Getenv(apiKeyEnv)
	}
	if o.apiKey == "" {
		return nil, fmt.Errorf("anthropic: API key not set, export %s or use WithAPIKey", apiKeyEnv)
	}

	clientOpts := []option.RequestOption{option.WithAPIKey(o.apiKey)}
	if o.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(o.baseURL))
	}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, option.WithHTTPClient(o.httpClient))
	}

	return &Model{
		client: anthropic.NewClient(clientOpts...),
		name:   name,
	}, nil
}

// Info returns basic information about the model.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.name, Provider: "anthropic"}
}

// Converse sends the conversation to the messages endpoint. When the first
// response contains tool_use blocks, the tools are executed and their
// results sent back as tool_result blocks in exactly one follow-up call; the
// follow-up response is returned as-is.
func (m *Model) Converse(ctx context.Context, request *model.Request) (*model.Response, error) {
	chatRequest := m.buildChatRequest(request)

	message, err := m.client.Messages.New(ctx, chatRequest)
	if err != nil {
		return nil, fmt.Errorf("anthropic: message request failed: %w", err)
	}
	response := convertResponse(message)
	assistant := response.Choices[0].Message
	if len(assistant.ToolCalls) == 0 {
		return response, nil
	}

	toolMsgs, err := model.ExecuteToolCalls(ctx, request.Tools, assistant.ToolCalls)
	if err != nil {
		return nil, err
	}

	// The assistant turn echoes its tool_use blocks; all results go back
	// in a single user turn so parallel calls stay paired.
	chatRequest.Messages = append(chatRequest.Messages,
		convertAssistantMessage(assistant),
		toolResultsMessage(toolMsgs),
	)
	followMessage, err := m.client.Messages.New(ctx, chatRequest)
	if err != nil {
		return nil, fmt.Errorf("anthropic: follow-up request failed: %w", err)
	}
	followUp := convertResponse(followMessage)
	if followUp.Usage == nil {
		followUp.Usage = &model.Usage{}
	}
	followUp.Usage.Add(response.Usage)
	return followUp, nil
}

// buildChatRequest converts our Request to Anthropic message params.
func (m *Model) buildChatRequest(request *model.Request) anthropic.MessageNewParams {
	messages, systemPrompts := convertMessages(request.Messages)

	chatRequest := anthropic.MessageNewParams{
		Model:    anthropic.Model(m.name),
		Messages: messages,
	}
	if len(systemPrompts) > 0 {
		chatRequest.System = systemPrompts
	}
	// The tools field is omitted entirely when no tools are bound.
	if len(request.Tools) > 0 {
		chatRequest.Tools = convertTools(request.Tools)
	}

	cfg := request.GenerationConfig
	if cfg.MaxTokens != nil {
		chatRequest.MaxTokens = int64(*cfg.MaxTokens)
	}
	if chatRequest.MaxTokens == 0 {
		chatRequest.MaxTokens = defaultMaxTokens
	}
	if cfg.Temperature != nil {
		chatRequest.Temperature = anthropic.Float(*cfg.Temperature)
	}
	if cfg.TopP != nil {
		chatRequest.TopP = anthropic.Float(*cfg.TopP)
	}
	if len(cfg.Stop) > 0 {
		chatRequest.StopSequences = append(chatRequest.StopSequences, cfg.Stop...)
	}
	return chatRequest
}

// convertMessages splits the conversation into Anthropic message params and
// system prompt blocks; the messages API carries system text out of band.
func convertMessages(messages []model.Message) ([]anthropic.MessageParam, []anthropic.TextBlockParam) {
	conversation := make([]anthropic.MessageParam, 0, len(messages))
	systemPrompts := make([]anthropic.TextBlockParam, 0)
	for _, message := range messages {
		switch message.Role {
		case model.RoleSystem:
			systemPrompts = append(systemPrompts, anthropic.TextBlockParam{Text: message.Content})
		case model.RoleAssistant:
			conversation = append(conversation, convertAssistantMessage(message))
		case model.RoleTool:
			conversation = append(conversation, anthropic.NewUserMessage(
				anthropic.NewToolResultBlock(message.ToolID, message.Content, strings.HasPrefix(message.Content, "Error: ")),
			))
		default:
			conversation = append(conversation, anthropic.NewUserMessage(anthropic.NewTextBlock(message.Content)))
		}
	}
	return conversation, systemPrompts
}

func convertAssistantMessage(message model.Message) anthropic.MessageParam {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, 1+len(message.ToolCalls))
	if message.Content != "" {
		blocks = append(blocks, anthropic.NewTextBlock(message.Content))
	}
	for _, toolCall := range message.ToolCalls {
		blocks = append(blocks, anthropic.NewToolUseBlock(
			toolCall.ID,
			decodeToolArguments(toolCall.Function.Arguments),
			toolCall.Function.Name,
		))
	}
	return anthropic.NewAssistantMessage(blocks...)
}

// toolResultsMessage wraps all tool results of one round into a single user
// message of tool_result blocks.
func toolResultsMessage(results []model.Message) anthropic.MessageParam {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(results))
	for _, res := range results {
		blocks = append(blocks, anthropic.NewToolResultBlock(
			res.ToolID,
			res.Content,
			strings.HasPrefix(res.Content, "Error: "),
		))
	}
	return anthropic.NewUserMessage(blocks...)
}

// decodeToolArguments parses JSON bytes into any, returning an empty object
// on failure.
func decodeToolArguments(args []byte) any {
	if len(args) == 0 {
		return map[string]any{}
	}
	var decoded any
	if err := json.Unmarshal(args, &decoded); err != nil {
		return map[string]any{}
	}
	return decoded
}

// convertTools maps our tool declarations to Anthropic tool parameters.
// Tool names are sorted for stable wire ordering.
func convertTools(tools map[string]tool.CallableTool) []anthropic.ToolUnionParam {
	toolNames := make([]string, 0, len(tools))
	for name := range tools {
		toolNames = append(toolNames, name)
	}
	sort.Strings(toolNames)

	result := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, name := range toolNames {
		declaration := tools[name].Declaration()
		param := &anthropic.ToolParam{
			Name:        declaration.Name,
			Description: anthropic.String(declaration.Description),
		}
		if declaration.InputSchema != nil {
			param.InputSchema = anthropic.ToolInputSchemaParam{
				Type:       constant.Object(declaration.InputSchema.Type),
				Properties: declaration.InputSchema.Properties,
				Required:   declaration.InputSchema.Required,
			}
		}
		result = append(result, anthropic.ToolUnionParam{OfTool: param})
	}
	return result
}

// convertResponse flattens Anthropic content blocks into a single assistant
// choice. The returned response always carries exactly one choice.
func convertResponse(message *anthropic.Message) *model.Response {
	var (
		textBuilder strings.Builder
		toolCalls   []model.ToolCall
	)
	for _, content := range message.Content {
		switch block := content.AsAny().(type) {
		case anthropic.TextBlock:
			textBuilder.WriteString(block.Text)
		case anthropic.ToolUseBlock:
			toolCalls = append(toolCalls, model.ToolCall{
				Type: functionToolType,
				ID:   block.ID,
				Function: model.FunctionDefinitionParam{
					Name:      block.Name,
					Arguments: block.Input,
				},
			})
		}
	}

	response := &model.Response{
		ID:    message.ID,
		Model: string(message.Model),
		Choices: []model.Choice{{
			Message: model.Message{
				Role:      model.RoleAssistant,
				Content:   textBuilder.String(),
				ToolCalls: toolCalls,
			},
			FinishReason: strings.TrimSpace(string(message.StopReason)),
		}},
	}
	if message.Usage.InputTokens > 0 || message.Usage.OutputTokens > 0 {
		response.Usage = &model.Usage{
			PromptTokens:     int(message.Usage.InputTokens),
			CompletionTokens: int(message.Usage.OutputTokens),
			TotalTokens:      int(message.Usage.InputTokens + message.Usage.OutputTokens),
		}
	}
	return response
}
