//
// Copyright (C) 2025 EnsembleWorks.  All rights reserved.
//
// ensemble is licensed under the Apache License Version 2.0.
//

package model

// Response is a response from a model backend.
type Response struct {
	// ID is the backend-assigned identifier of the response, if any.
	ID string `json:"id,omitempty"`
	// Model is the backend model that produced the response.
	Model string `json:"model,omitempty"`
	// Choices contains the generated completions. The first choice holds
	// the final assistant message.
	Choices []Choice `json:"choices,omitempty"`
	// Usage contains token accounting, accumulated across the initial
	// call and any tool-resolution follow-up.
	Usage *Usage `json:"usage,omitempty"`
}

// Text returns the content of the first choice, or the empty string when the
// response carries no choices.
func (r *Response) Text() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

// Choice represents one generated completion.
type Choice struct {
	// Index is the position of the choice in the response.
	Index int `json:"index"`
	// Message is the generated assistant message.
	Message Message `json:"message"`
	// FinishReason indicates why generation stopped, e.g. "stop",
	// "tool_calls" or "length".
	FinishReason string `json:"finish_reason,omitempty"`
}

// Usage contains token usage statistics for a response.
type Usage struct {
	// PromptTokens is the number of tokens in the prompt.
	PromptTokens int `json:"prompt_tokens"`
	// CompletionTokens is the number of tokens generated.
	CompletionTokens int `json:"completion_tokens"`
	// TotalTokens is the sum of prompt and completion tokens.
	TotalTokens int `json:"total_tokens"`
}

// Add accumulates another usage record into u.
func (u *Usage) Add(other *Usage) {
	if other == nil {
		return
	}
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}
