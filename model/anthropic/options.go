//
// Copyright (C) 2025 EnsembleWorks.  All rights reserved.
//
// ensemble is licensed under the Apache License Version 2.0.
//

package anthropic

import "net/http"

// options contains configuration options for creating a Model.
type options struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option is a function that configures the model.
type Option func(*options)

// WithAPIKey sets the API key, overriding the ANTHROPIC_API_KEY environment
// variable.
func WithAPIKey(key string) Option {
	return func(o *options) {
		o.apiKey = key
	}
}

// WithBaseURL sets a custom API endpoint.
func WithBaseURL(url string) Option {
	return func(o *options) {
		o.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}
