//
// Copyright (C) 2025 EnsembleWorks.  All rights reserved.
//
// ensemble is licensed under the Apache License Version 2.0.
//

// Package provider resolves model identifiers of the form
// "provider/model-name" to concrete model implementations.
package provider

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ensembleworks/ensemble/model"
	"github.com/ensembleworks/ensemble/model/anthropic"
	"github.com/ensembleworks/ensemble/model/ollama"
	"github.com/ensembleworks/ensemble/model/openai"
)

// ErrUnknownProvider is returned when the provider token of a model
// identifier names no registered backend.
var ErrUnknownProvider = errors.New("unknown provider")

// options contains per-backend construction options.
type options struct {
	openaiOpts    []openai.Option
	anthropicOpts []anthropic.Option
	ollamaOpts    []ollama.Option
}

// Option is a function that configures resolution.
type Option func(*options)

// WithOpenAIOptions passes options through to the OpenAI constructor.
func WithOpenAIOptions(opts ...openai.Option) Option {
	return func(o *options) {
		o.openaiOpts = append(o.openaiOpts, opts...)
	}
}

// WithAnthropicOptions passes options through to the Anthropic constructor.
func WithAnthropicOptions(opts ...anthropic.Option) Option {
	return func(o *options) {
		o.anthropicOpts = append(o.anthropicOpts, opts...)
	}
}

// WithOllamaOptions passes options through to the Ollama constructor.
func WithOllamaOptions(opts ...ollama.Option) Option {
	return func(o *options) {
		o.ollamaOpts = append(o.ollamaOpts, opts...)
	}
}

// Resolve maps a model identifier to a backend implementation. The
// identifier splits on the first "/" into provider and model name; an
// identifier without a "/" means OpenAI. The model name is passed through
// untouched, so "ollama/library/llama3" selects the ollama backend with
// model name "library/llama3".
//
// Resolution is pure configuration: an unknown provider or a missing API
// key is reported before any network traffic.
func Resolve(modelID string, opts ...Option) (model.Model, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	providerName, modelName := split(modelID)
	switch providerName {
	case "openai":
		return openai.New(modelName, o.openaiOpts...)
	case "anthropic":
		return anthropic.New(modelName, o.anthropicOpts...)
	case "ollama":
		return ollama.New(modelName, o.ollamaOpts...)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, providerName)
	}
}

func split(modelID string) (providerName, modelName string) {
	before, after, found := strings.Cut(modelID, "/")
	if !found {
		return "openai", modelID
	}
	return before, after
}
