//
// Copyright (C) 2025 EnsembleWorks.  All rights reserved.
//
// ensemble is licensed under the Apache License Version 2.0.
//

package model

import "github.com/ensembleworks/ensemble/tool"

// Role represents the role of a message author.
type Role string

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

const (
	// RoleSystem is the system role.
	RoleSystem Role = "system"
	// RoleUser is the user role.
	RoleUser Role = "user"
	// RoleAssistant is the assistant role.
	RoleAssistant Role = "assistant"
	// RoleTool is the tool role, used for tool result messages.
	RoleTool Role = "tool"
)

// Message represents a message in a model conversation.
type Message struct {
	// Role is the role of the message author.
	Role Role `json:"role"`
	// Content is the message content.
	Content string `json:"content,omitempty"`
	// ToolID is the ID of the tool call this message responds to.
	// Only set on tool result messages.
	ToolID string `json:"tool_id,omitempty"`
	// ToolName is the name of the tool that produced this message.
	// Only set on tool result messages.
	ToolName string `json:"tool_name,omitempty"`
	// ToolCalls are the tool calls requested by the assistant.
	// Only set on assistant messages.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// NewToolMessage creates a new tool result message.
func NewToolMessage(toolID, toolName, content string) Message {
	return Message{
		Role:     RoleTool,
		ToolID:   toolID,
		ToolName: toolName,
		Content:  content,
	}
}

// ToolCall represents a tool call requested by the model.
type ToolCall struct {
	// Type of the tool. Currently only "function" is supported.
	Type string `json:"type"`
	// Function holds the called function's name and arguments.
	Function FunctionDefinitionParam `json:"function,omitempty"`
	// ID is the call identifier returned by the model.
	ID string `json:"id,omitempty"`
}

// FunctionDefinitionParam holds the name and JSON-encoded arguments of a
// function call.
type FunctionDefinitionParam struct {
	// Name is the name of the function to be called.
	Name string `json:"name"`
	// Arguments are the JSON-encoded arguments to pass to the function.
	Arguments []byte `json:"arguments,omitempty"`
}

// GenerationConfig contains the sampling configuration for a request.
type GenerationConfig struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens *int `json:"max_tokens,omitempty"`
	// Temperature controls randomness (0.0 to 2.0).
	Temperature *float64 `json:"temperature,omitempty"`
	// TopP controls nucleus sampling (0.0 to 1.0).
	TopP *float64 `json:"top_p,omitempty"`
	// Stop sequences where the backend stops generating further tokens.
	Stop []string `json:"stop,omitempty"`
}

// Request is a request to a model backend.
type Request struct {
	// Messages is the ordered conversation history. A leading system
	// message carries the agent's instructions.
	Messages []Message `json:"messages"`

	// GenerationConfig contains the sampling configuration.
	GenerationConfig GenerationConfig `json:"generation_config"`

	// Tools maps tool name to its implementation. When empty, no tool
	// definitions are sent to the backend.
	Tools map[string]tool.CallableTool `json:"-"`

	// StructuredOutput requests that the backend return a JSON object
	// when the backend supports a native JSON response mode.
	StructuredOutput bool `json:"-"`
}
