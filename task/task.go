//
// Copyright (C) 2025 EnsembleWorks.  All rights reserved.
//
// ensemble is licensed under the Apache License Version 2.0.
//

// Package task defines the unit of work agents execute.
package task

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ensembleworks/ensemble/tool"
)

// ErrEmptyDescription is returned by New for a blank task description.
var ErrEmptyDescription = errors.New("task description cannot be empty")

// Executor runs a task and returns its textual result. It is implemented
// by agent.Agent; the indirection keeps task free of the agent package.
type Executor interface {
	Do(ctx context.Context, t *Task) (string, error)
	Name() string
}

// Task represents a unit of work for an agent to complete.
type Task struct {
	// Description is what the agent should do.
	Description string
	// Tools are the tools available for this task: tool.CallableTool,
	// tool.Toolbox or func() tool.Toolbox values.
	Tools []any
	// Context carries additional inputs: completed *Task values
	// contribute their results, anything else is rendered as text.
	Context []any
	// ResponseFormat, when non-nil, points to a struct the agent
	// unmarshals the model's JSON answer into.
	ResponseFormat any
	// Assignee is the pre-assigned agent for team scenarios.
	Assignee Executor

	response any
}

// Option configures a Task.
type Option func(*Task)

// WithTools sets the tools available for the task.
func WithTools(tools ...any) Option {
	return func(t *Task) {
		t.Tools = tools
	}
}

// WithContext sets additional context inputs.
func WithContext(items ...any) Option {
	return func(t *Task) {
		t.Context = items
	}
}

// WithResponseFormat requests structured output unmarshaled into a value
// of the same type as format.
func WithResponseFormat(format any) Option {
	return func(t *Task) {
		t.ResponseFormat = format
	}
}

// WithAssignee pre-assigns an agent for team scenarios.
func WithAssignee(e Executor) Option {
	return func(t *Task) {
		t.Assignee = e
	}
}

// New creates a task. A description consisting only of whitespace is a
// construction error.
func New(description string, opts ...Option) (*Task, error) {
	if strings.TrimSpace(description) == "" {
		return nil, ErrEmptyDescription
	}
	t := &Task{Description: description}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// SetResponse stores the task result.
func (t *Task) SetResponse(response any) {
	t.response = response
}

// Response returns the stored task result, or nil before completion.
func (t *Task) Response() any {
	return t.response
}

// ContextText renders the context items for prompt building. Completed
// tasks contribute their results; other items are stringified.
func (t *Task) ContextText() string {
	var parts []string
	for _, item := range t.Context {
		switch v := item.(type) {
		case *Task:
			if v.response != nil {
				parts = append(parts, fmt.Sprintf("Previous task result: %v", v.response))
			}
		case fmt.Stringer:
			parts = append(parts, v.String())
		default:
			parts = append(parts, fmt.Sprintf("%v", v))
		}
	}
	return strings.Join(parts, "\n")
}

// Prompt renders the task as the final user turn: optional context block,
// the task description, and a hint naming the available tools.
func (t *Task) Prompt() string {
	var parts []string
	if ctx := t.ContextText(); ctx != "" {
		parts = append(parts, "Context:\n"+ctx+"\n")
	}
	parts = append(parts, "Task: "+t.Description)
	if len(t.Tools) > 0 {
		names := t.toolNames()
		if len(names) > 0 {
			parts = append(parts, "\nAvailable tools: "+strings.Join(names, ", "))
		}
	}
	return strings.Join(parts, "\n")
}

func (t *Task) toolNames() []string {
	tools, err := tool.Resolve(t.Tools)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(tools))
	for name := range tools {
		names = append(names, name)
	}
	// Map order is random; keep the hint stable.
	sort.Strings(names)
	return names
}
