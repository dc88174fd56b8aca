//
// Copyright (C) 2025 EnsembleWorks.  All rights reserved.
//
// ensemble is licensed under the Apache License Version 2.0.
//

// Package function provides function-based tool implementations for the
// agent system.
package function

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/ensembleworks/ensemble/internal/schema"
	"github.com/ensembleworks/ensemble/log"
	"github.com/ensembleworks/ensemble/tool"
)

// FunctionTool implements the CallableTool interface for executing functions
// with arguments. It provides a generic way to wrap any Go function as a tool
// that can be called with JSON arguments and returns results.
type FunctionTool[I, O any] struct {
	name                string
	description         string
	inputSchema         *tool.Schema
	outputSchema        *tool.Schema
	fn                  func(context.Context, I) (O, error)
	requireConfirmation bool
}

// Option is a function that configures a FunctionTool.
type Option func(*functionToolOptions)

// functionToolOptions holds the configuration options for FunctionTool.
type functionToolOptions struct {
	name                string
	description         string
	requireConfirmation bool
	inputSchema         *tool.Schema
	outputSchema        *tool.Schema
}

// WithName sets the name of the function tool.
//
// Note: tool names must comply with provider API requirements. Use only
// English letters, numbers, underscores and hyphens (^[a-zA-Z0-9_-]+$)
// for maximum compatibility.
func WithName(name string) Option {
	return func(opts *functionToolOptions) {
		opts.name = name
	}
}

// WithDescription sets the description of the function tool.
func WithDescription(description string) Option {
	return func(opts *functionToolOptions) {
		opts.description = description
	}
}

// WithRequireConfirmation marks the tool as requiring explicit confirmation
// before execution.
func WithRequireConfirmation(require bool) Option {
	return func(opts *functionToolOptions) {
		opts.requireConfirmation = require
	}
}

// WithInputSchema sets a custom input schema for the function tool.
// When provided, the automatic schema generation will be skipped.
func WithInputSchema(s *tool.Schema) Option {
	return func(opts *functionToolOptions) {
		opts.inputSchema = s
	}
}

// WithOutputSchema sets a custom output schema for the function tool.
// When provided, the automatic schema generation will be skipped.
func WithOutputSchema(s *tool.Schema) Option {
	return func(opts *functionToolOptions) {
		opts.outputSchema = s
	}
}

// New creates and returns a new FunctionTool wrapping the given function.
// The input and output JSON schemas are derived from the function's
// parameter and return types unless overridden via options.
func New[I, O any](fn func(context.Context, I) (O, error), opts ...Option) *FunctionTool[I, O] {
	options := &functionToolOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.name == "" {
		log.Warnf("FunctionTool: name is empty")
	}
	if options.description == "" {
		log.Warnf("FunctionTool: description is empty")
	}

	var (
		emptyI I
		emptyO O
	)

	iSchema := options.inputSchema
	if iSchema == nil {
		iSchema = schema.Generate(reflect.TypeOf(emptyI))
	}
	oSchema := options.outputSchema
	if oSchema == nil {
		oSchema = schema.Generate(reflect.TypeOf(emptyO))
	}

	return &FunctionTool[I, O]{
		name:                options.name,
		description:         options.description,
		fn:                  fn,
		inputSchema:         iSchema,
		outputSchema:        oSchema,
		requireConfirmation: options.requireConfirmation,
	}
}

// Call executes the function tool with the provided JSON arguments.
// It unmarshals the given arguments into the tool's input type, then calls
// the underlying function with these arguments.
func (ft *FunctionTool[I, O]) Call(ctx context.Context, jsonArgs []byte) (any, error) {
	var input I
	if len(jsonArgs) > 0 {
		if err := json.Unmarshal(jsonArgs, &input); err != nil {
			return nil, err
		}
	}
	return ft.fn(ctx, input)
}

// Declaration returns the tool's declaration information, including its
// name, description and JSON schemas for the input and output types.
func (ft *FunctionTool[I, O]) Declaration() *tool.Declaration {
	return &tool.Declaration{
		Name:                ft.name,
		Description:         ft.description,
		InputSchema:         ft.inputSchema,
		OutputSchema:        ft.outputSchema,
		RequireConfirmation: ft.requireConfirmation,
	}
}
