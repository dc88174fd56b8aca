//
// Copyright (C) 2025 EnsembleWorks.  All rights reserved.
//
// ensemble is licensed under the Apache License Version 2.0.
//

// Package tool provides tool interfaces and implementations for the agent system.
package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownTool is returned when a tool is requested by a name that is not
// registered for the active task. It is a hard error: the caller must not
// swallow it.
var ErrUnknownTool = errors.New("unknown tool")

// Tool is the interface that all tools must implement.
type Tool interface {
	// Declaration returns the tool's metadata: name, description and the
	// JSON schema of its input.
	Declaration() *Declaration
}

// CallableTool is a tool that can be invoked with JSON-encoded arguments.
type CallableTool interface {
	Tool

	// Call executes the tool with the provided JSON arguments.
	Call(ctx context.Context, jsonArgs []byte) (any, error)
}

// Declaration describes a tool to the model.
type Declaration struct {
	// Name is the tool name offered to the model.
	Name string `json:"name"`
	// Description tells the model what the tool does.
	Description string `json:"description"`
	// InputSchema is the JSON schema of the tool's arguments.
	InputSchema *Schema `json:"input_schema,omitempty"`
	// OutputSchema is the JSON schema of the tool's result, if declared.
	OutputSchema *Schema `json:"output_schema,omitempty"`
	// RequireConfirmation marks tools that should not run without an
	// explicit user confirmation upstream.
	RequireConfirmation bool `json:"require_confirmation,omitempty"`
}

// Schema is a JSON schema fragment. Types are restricted to the lattice
// {string, integer, number, boolean, array, object, null}.
type Schema struct {
	Type                 string             `json:"type,omitempty"`
	Description          string             `json:"description,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	Default              any                `json:"default,omitempty"`
	Enum                 []any              `json:"enum,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`
}

// Schema type constants.
const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeArray   = "array"
	TypeObject  = "object"
	TypeNull    = "null"
)

// Result is the outcome of a single tool invocation. Failures are data, not
// panics: Invoke never propagates an error to the caller.
type Result struct {
	// Success reports whether the invocation completed without error.
	Success bool `json:"success"`
	// Value is the tool's return value when Success is true.
	Value any `json:"value,omitempty"`
	// Error holds the failure message when Success is false.
	Error string `json:"error,omitempty"`
}

// String renders the result the way it is fed back to the model: the value
// for successes, "Error: <message>" for failures.
func (r Result) String() string {
	if !r.Success {
		return "Error: " + r.Error
	}
	if s, ok := r.Value.(string); ok {
		return s
	}
	data, err := json.Marshal(r.Value)
	if err != nil {
		return fmt.Sprintf("%v", r.Value)
	}
	return string(data)
}

// Invoke runs a tool and captures any failure, including panics inside the
// tool function, into the returned Result.
func Invoke(ctx context.Context, t CallableTool, jsonArgs []byte) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Result{Success: false, Error: fmt.Sprintf("panic: %v", r)}
		}
	}()
	value, err := t.Call(ctx, jsonArgs)
	if err != nil {
		return Result{Success: false, Error: err.Error()}
	}
	return Result{Success: true, Value: value}
}
