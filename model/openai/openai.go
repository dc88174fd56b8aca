//
// Copyright (C) 2025 EnsembleWorks.  All rights reserved.
//
// ensemble is licensed under the Apache License Version 2.0.
//

// Package openai provides the OpenAI chat completions model implementation.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	openai "github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/ensembleworks/ensemble/log"
	"github.com/ensembleworks/ensemble/model"
	"github.com/ensembleworks/ensemble/tool"
)

const apiKeyEnv = "OPENAI_API_KEY"

// Model implements model.Model using the OpenAI chat completions API.
type Model struct {
	client openai.Client
	name   string
}

// New creates an OpenAI model for the given model name, e.g. "gpt-4o-mini".
// The API key is taken from the OPENAI_API_KEY environment variable unless
// overridden with WithAPIKey; a missing key is a configuration error and no
// network traffic happens before it is reported.
func New(name string, opts ...Option) (*Model, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.apiKey == "" {
		o.apiKey = os.Getenv(apiKeyEnv)
	}
	if o.apiKey == "" {
		return nil, fmt.Errorf("openai: API key not set, export %s or use WithAPIKey", apiKeyEnv)
	}

	clientOpts := []openaiopt.RequestOption{openaiopt.WithAPIKey(o.apiKey)}
	if o.baseURL != "" {
		clientOpts = append(clientOpts, openaiopt.WithBaseURL(o.baseURL))
	}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, openaiopt.WithHTTPClient(o.httpClient))
	}

	return &Model{
		client: openai.NewClient(clientOpts...),
		name:   name,
	}, nil
}

// Info returns basic information about the model.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.name, Provider: "openai"}
}

// Converse sends the conversation to the chat completions endpoint. When the
// first response requests tool calls, the tools are executed and their
// results sent back in exactly one follow-up call; the follow-up response is
// returned as-is.
func (m *Model) Converse(ctx context.Context, request *model.Request) (*model.Response, error) {
	chatRequest := m.buildChatRequest(request)

	response, err := m.call(ctx, chatRequest)
	if err != nil {
		return nil, err
	}
	if len(response.Choices) == 0 || len(response.Choices[0].Message.ToolCalls) == 0 {
		return response, nil
	}

	assistant := response.Choices[0].Message
	toolMsgs, err := model.ExecuteToolCalls(ctx, request.Tools, assistant.ToolCalls)
	if err != nil {
		return nil, err
	}

	chatRequest.Messages = append(chatRequest.Messages, m.convertMessages(append([]model.Message{assistant}, toolMsgs...))...)
	followUp, err := m.call(ctx, chatRequest)
	if err != nil {
		return nil, err
	}
	if followUp.Usage == nil {
		followUp.Usage = &model.Usage{}
	}
	followUp.Usage.Add(response.Usage)
	return followUp, nil
}

func (m *Model) call(ctx context.Context, chatRequest openai.ChatCompletionNewParams) (*model.Response, error) {
	chatCompletion, err := m.client.Chat.Completions.New(ctx, chatRequest)
	if err != nil {
		return nil, fmt.Errorf("openai: chat completion failed: %w", err)
	}
	return convertResponse(chatCompletion), nil
}

// buildChatRequest converts our Request to OpenAI request params.
func (m *Model) buildChatRequest(request *model.Request) openai.ChatCompletionNewParams {
	chatRequest := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(m.name),
		Messages: m.convertMessages(request.Messages),
	}
	// The tools field is omitted entirely when no tools are bound.
	if len(request.Tools) > 0 {
		chatRequest.Tools = m.convertTools(request.Tools)
	}
	if request.StructuredOutput {
		chatRequest.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	cfg := request.GenerationConfig
	if cfg.MaxTokens != nil {
		chatRequest.MaxCompletionTokens = openai.Int(int64(*cfg.MaxTokens))
	}
	if cfg.Temperature != nil {
		chatRequest.Temperature = openai.Float(*cfg.Temperature)
	}
	if cfg.TopP != nil {
		chatRequest.TopP = openai.Float(*cfg.TopP)
	}
	if len(cfg.Stop) > 0 {
		// Use the first stop string for simplicity.
		chatRequest.Stop = openai.ChatCompletionNewParamsStopUnion{
			OfString: openai.String(cfg.Stop[0]),
		}
	}
	return chatRequest
}

func (m *Model) convertMessages(messages []model.Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, len(messages))
	for i, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			result[i] = openai.ChatCompletionMessageParamUnion{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String(msg.Content),
					},
				},
			}
		case model.RoleAssistant:
			result[i] = openai.ChatCompletionMessageParamUnion{
				OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					Content: openai.ChatCompletionAssistantMessageParamContentUnion{
						OfString: openai.String(msg.Content),
					},
					ToolCalls: m.convertToolCalls(msg.ToolCalls),
				},
			}
		case model.RoleTool:
			result[i] = openai.ChatCompletionMessageParamUnion{
				OfTool: &openai.ChatCompletionToolMessageParam{
					Content: openai.ChatCompletionToolMessageParamContentUnion{
						OfString: openai.String(msg.Content),
					},
					ToolCallID: msg.ToolID,
				},
			}
		default:
			result[i] = openai.ChatCompletionMessageParamUnion{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(msg.Content),
					},
				},
			}
		}
	}
	return result
}

func (m *Model) convertToolCalls(toolCalls []model.ToolCall) []openai.ChatCompletionMessageToolCallParam {
	var result []openai.ChatCompletionMessageToolCallParam
	for _, toolCall := range toolCalls {
		result = append(result, openai.ChatCompletionMessageToolCallParam{
			ID: toolCall.ID,
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      toolCall.Function.Name,
				Arguments: string(toolCall.Function.Arguments),
			},
		})
	}
	return result
}

func (m *Model) convertTools(tools map[string]tool.CallableTool) []openai.ChatCompletionToolParam {
	var result []openai.ChatCompletionToolParam
	for _, t := range tools {
		declaration := t.Declaration()
		// Round-trip the schema through JSON to map it onto OpenAI's
		// free-form parameters object.
		schemaBytes, err := json.Marshal(declaration.InputSchema)
		if err != nil {
			log.Errorf("failed to marshal tool schema for %s: %v", declaration.Name, err)
			continue
		}
		var parameters shared.FunctionParameters
		if err := json.Unmarshal(schemaBytes, &parameters); err != nil {
			log.Errorf("failed to unmarshal tool schema for %s: %v", declaration.Name, err)
			continue
		}
		result = append(result, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        declaration.Name,
				Description: openai.String(declaration.Description),
				Parameters:  parameters,
			},
		})
	}
	return result
}

func convertResponse(chatCompletion *openai.ChatCompletion) *model.Response {
	response := &model.Response{
		ID:    chatCompletion.ID,
		Model: chatCompletion.Model,
	}
	response.Choices = make([]model.Choice, len(chatCompletion.Choices))
	for i, choice := range chatCompletion.Choices {
		converted := model.Choice{
			Index: int(choice.Index),
			Message: model.Message{
				Role:    model.RoleAssistant,
				Content: choice.Message.Content,
			},
			FinishReason: choice.FinishReason,
		}
		for j, toolCall := range choice.Message.ToolCalls {
			id := toolCall.ID
			if id == "" {
				// Some backends omit call IDs.
				id = fmt.Sprintf("auto_call_%d", j)
			}
			converted.Message.ToolCalls = append(converted.Message.ToolCalls, model.ToolCall{
				ID:   id,
				Type: "function",
				Function: model.FunctionDefinitionParam{
					Name:      toolCall.Function.Name,
					Arguments: []byte(toolCall.Function.Arguments),
				},
			})
		}
		response.Choices[i] = converted
	}
	if chatCompletion.Usage.PromptTokens > 0 || chatCompletion.Usage.CompletionTokens > 0 {
		response.Usage = &model.Usage{
			PromptTokens:     int(chatCompletion.Usage.PromptTokens),
			CompletionTokens: int(chatCompletion.Usage.CompletionTokens),
			TotalTokens:      int(chatCompletion.Usage.TotalTokens),
		}
	}
	return response
}
