//
// Copyright (C) 2025 EnsembleWorks.  All rights reserved.
//
// ensemble is licensed under the Apache License Version 2.0.
//

// Package ollama provides the Ollama local model implementation.
package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/ensembleworks/ensemble/log"
	"github.com/ensembleworks/ensemble/model"
	"github.com/ensembleworks/ensemble/tool"
)

const (
	// OllamaHost is the environment variable naming the server address.
	OllamaHost = "OLLAMA_HOST"

	defaultHost      = "http://localhost:11434"
	functionToolType = "function"
)

// Model implements model.Model using a local Ollama server. No API key is
// required.
type Model struct {
	client *api.Client
	name   string
	host   string
	opts   map[string]any
}

// New creates an Ollama model for the given model name, e.g.
// "llama3.2:latest". The server address comes from WithHost, the
// OLLAMA_HOST environment variable, or defaults to localhost:11434.
func New(name string, opts ...Option) (*Model, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	host := o.host
	if host == "" {
		host = hostFromEnv()
	}
	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("ollama: invalid host %q: %w", host, err)
	}
	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Model{
		client: api.NewClient(base, httpClient),
		name:   name,
		host:   host,
		opts:   o.modelOpts,
	}, nil
}

func hostFromEnv() string {
	host := os.Getenv(OllamaHost)
	if host == "" {
		return defaultHost
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	return host
}

// Info returns basic information about the model.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.name, Provider: "ollama"}
}

// Converse sends the conversation to the local /api/chat endpoint. When the
// response requests tool calls, the tools are executed and their results
// sent back as tool-role turns in exactly one follow-up call; the follow-up
// response is returned as-is.
func (m *Model) Converse(ctx context.Context, request *model.Request) (*model.Response, error) {
	chatRequest := m.buildChatRequest(request)

	chatResponse, err := m.call(ctx, chatRequest)
	if err != nil {
		return nil, err
	}
	response := convertResponse(chatResponse)
	assistant := response.Choices[0].Message
	if len(assistant.ToolCalls) == 0 {
		return response, nil
	}

	toolMsgs, err := model.ExecuteToolCalls(ctx, request.Tools, assistant.ToolCalls)
	if err != nil {
		return nil, err
	}

	chatRequest.Messages = append(chatRequest.Messages, api.Message{
		Role:      "assistant",
		Content:   assistant.Content,
		ToolCalls: convertToolCalls(assistant.ToolCalls),
	})
	for _, msg := range toolMsgs {
		chatRequest.Messages = append(chatRequest.Messages, api.Message{
			Role:     "tool",
			Content:  msg.Content,
			ToolName: msg.ToolName,
		})
	}

	followResponse, err := m.call(ctx, chatRequest)
	if err != nil {
		return nil, err
	}
	followUp := convertResponse(followResponse)
	if followUp.Usage == nil {
		followUp.Usage = &model.Usage{}
	}
	followUp.Usage.Add(response.Usage)
	return followUp, nil
}

func (m *Model) call(ctx context.Context, chatRequest *api.ChatRequest) (*api.ChatResponse, error) {
	var final api.ChatResponse
	err := m.client.Chat(ctx, chatRequest, func(resp api.ChatResponse) error {
		final = resp
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama: chat request failed: %w", err)
	}
	return &final, nil
}

// buildChatRequest converts our Request to an Ollama chat request.
// System turns stay inline; the chat API accepts the system role directly.
func (m *Model) buildChatRequest(request *model.Request) *api.ChatRequest {
	stream := false
	chatRequest := &api.ChatRequest{
		Model:    m.name,
		Messages: convertMessages(request.Messages),
		Stream:   &stream,
	}
	// The tools field is omitted entirely when no tools are bound.
	if len(request.Tools) > 0 {
		chatRequest.Tools = convertTools(request.Tools)
	}

	modelOpts := make(map[string]any, len(m.opts)+4)
	for k, v := range m.opts {
		modelOpts[k] = v
	}
	cfg := request.GenerationConfig
	if cfg.MaxTokens != nil {
		modelOpts["num_predict"] = *cfg.MaxTokens
	}
	if cfg.Temperature != nil {
		modelOpts["temperature"] = *cfg.Temperature
	}
	if cfg.TopP != nil {
		modelOpts["top_p"] = *cfg.TopP
	}
	if len(cfg.Stop) > 0 {
		modelOpts["stop"] = cfg.Stop
	}
	if len(modelOpts) > 0 {
		chatRequest.Options = modelOpts
	}
	return chatRequest
}

func convertMessages(messages []model.Message) []api.Message {
	result := make([]api.Message, len(messages))
	for i, msg := range messages {
		converted := api.Message{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
		if msg.Role == model.RoleTool {
			converted.ToolName = msg.ToolName
		}
		if len(msg.ToolCalls) > 0 {
			converted.ToolCalls = convertToolCalls(msg.ToolCalls)
		}
		result[i] = converted
	}
	return result
}

func convertToolCalls(toolCalls []model.ToolCall) []api.ToolCall {
	result := make([]api.ToolCall, 0, len(toolCalls))
	for _, toolCall := range toolCalls {
		// Arguments is the api package's ordered-map type; decode the raw
		// JSON into it directly.
		var args api.ToolCallFunctionArguments
		if len(toolCall.Function.Arguments) > 0 {
			if err := json.Unmarshal(toolCall.Function.Arguments, &args); err != nil {
				log.Warnf("failed to decode arguments for tool %s: %v", toolCall.Function.Name, err)
			}
		}
		result = append(result, api.ToolCall{
			Function: api.ToolCallFunction{
				Name:      toolCall.Function.Name,
				Arguments: args,
			},
		})
	}
	return result
}

// convertTools maps our tool declarations to Ollama tool parameters by
// round-tripping the function-calling wire shape through JSON; this keeps
// the mapping independent of the api package's nested parameter structs.
func convertTools(tools map[string]tool.CallableTool) api.Tools {
	toolNames := make([]string, 0, len(tools))
	for name := range tools {
		toolNames = append(toolNames, name)
	}
	sort.Strings(toolNames)

	result := make(api.Tools, 0, len(tools))
	for _, name := range toolNames {
		declaration := tools[name].Declaration()
		wire := map[string]any{
			"type": functionToolType,
			"function": map[string]any{
				"name":        declaration.Name,
				"description": declaration.Description,
				"parameters":  declaration.InputSchema,
			},
		}
		raw, err := json.Marshal(wire)
		if err != nil {
			log.Errorf("failed to marshal tool declaration for %s: %v", declaration.Name, err)
			continue
		}
		var converted api.Tool
		if err := json.Unmarshal(raw, &converted); err != nil {
			log.Errorf("failed to convert tool declaration for %s: %v", declaration.Name, err)
			continue
		}
		result = append(result, converted)
	}
	return result
}

func convertResponse(chatResponse *api.ChatResponse) *model.Response {
	var toolCalls []model.ToolCall
	for i, call := range chatResponse.Message.ToolCalls {
		args, err := json.Marshal(call.Function.Arguments)
		if err != nil {
			log.Warnf("failed to encode arguments for tool %s: %v", call.Function.Name, err)
			args = []byte("{}")
		}
		toolCalls = append(toolCalls, model.ToolCall{
			// The chat API carries no call IDs; synthesize stable ones.
			ID:   fmt.Sprintf("call_%d", i),
			Type: functionToolType,
			Function: model.FunctionDefinitionParam{
				Name:      call.Function.Name,
				Arguments: args,
			},
		})
	}

	response := &model.Response{
		Model: chatResponse.Model,
		Choices: []model.Choice{{
			Message: model.Message{
				Role:      model.RoleAssistant,
				Content:   chatResponse.Message.Content,
				ToolCalls: toolCalls,
			},
			FinishReason: chatResponse.DoneReason,
		}},
	}
	if chatResponse.Metrics.PromptEvalCount > 0 || chatResponse.Metrics.EvalCount > 0 {
		response.Usage = &model.Usage{
			PromptTokens:     chatResponse.Metrics.PromptEvalCount,
			CompletionTokens: chatResponse.Metrics.EvalCount,
			TotalTokens:      chatResponse.Metrics.PromptEvalCount + chatResponse.Metrics.EvalCount,
		}
	}
	return response
}
