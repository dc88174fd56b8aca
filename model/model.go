//
// Copyright (C) 2025 EnsembleWorks.  All rights reserved.
//
// ensemble is licensed under the Apache License Version 2.0.
//

// Package model defines the interface for language model implementations.
package model

import "context"

// Model is the interface that all language model backends implement.
//
// A Model owns the full exchange with its backend, including resolving any
// tool calls the backend requests: when the first response asks for tools,
// the implementation executes them, sends their results back in a single
// follow-up call, and returns that follow-up response. At most one such
// round is performed per Converse call.
type Model interface {
	// Converse sends the request to the backend and returns the final
	// response after at most one tool-resolution round.
	Converse(ctx context.Context, request *Request) (*Response, error)

	// Info returns basic information about the model.
	Info() Info
}

// Info contains basic information about a model.
type Info struct {
	// Name is the backend model identifier, e.g. "gpt-4o-mini".
	Name string
	// Provider is the backend family, e.g. "openai".
	Provider string
}
