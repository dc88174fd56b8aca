//
// Copyright (C) 2025 EnsembleWorks.  All rights reserved.
//
// ensemble is licensed under the Apache License Version 2.0.
//

package ollama

import "net/http"

// options contains configuration options for creating a Model.
type options struct {
	host       string
	httpClient *http.Client
	modelOpts  map[string]any
}

// Option is a function that configures the model.
type Option func(*options)

// WithHost sets the Ollama server address, overriding the OLLAMA_HOST
// environment variable.
func WithHost(host string) Option {
	return func(o *options) {
		o.host = host
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithOptions sets extra model options passed through to the server,
// e.g. {"num_ctx": 8192}.
func WithOptions(opts map[string]any) Option {
	return func(o *options) {
		o.modelOpts = opts
	}
}
