//
// Copyright (C) 2025 EnsembleWorks.  All rights reserved.
//
// ensemble is licensed under the Apache License Version 2.0.
//

package task

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ensembleworks/ensemble/tool/function"
)

func TestNew_EmptyDescription(t *testing.T) {
	tests := []struct {
		name string
		desc string
	}{
		{"empty", ""},
		{"whitespace only", "   \t\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.desc)
			assert.ErrorIs(t, err, ErrEmptyDescription)
		})
	}
}

func TestPrompt_Basic(t *testing.T) {
	tk, err := New("Summarize the report")
	require.NoError(t, err)
	assert.Equal(t, "Task: Summarize the report", tk.Prompt())
}

func TestPrompt_WithContext(t *testing.T) {
	previous, err := New("Gather figures")
	require.NoError(t, err)
	previous.SetResponse("Revenue grew 12%")

	tk, err := New("Summarize the report",
		WithContext(previous, "Fiscal year 2025"))
	require.NoError(t, err)

	prompt := tk.Prompt()
	assert.Contains(t, prompt, "Context:\n")
	assert.Contains(t, prompt, "Previous task result: Revenue grew 12%")
	assert.Contains(t, prompt, "Fiscal year 2025")
	assert.Contains(t, prompt, "Task: Summarize the report")
	// Context precedes the task line.
	assert.Less(t, strings.Index(prompt, "Context:"), strings.Index(prompt, "Task:"))
}

func TestPrompt_UnfinishedContextTaskSkipped(t *testing.T) {
	pending, err := New("Still running")
	require.NoError(t, err)

	tk, err := New("Summarize", WithContext(pending))
	require.NoError(t, err)
	assert.NotContains(t, tk.Prompt(), "Previous task result")
}

func TestPrompt_ToolHint(t *testing.T) {
	search := function.New(func(context.Context, struct{}) (string, error) {
		return "", nil
	}, function.WithName("search"), function.WithDescription("Searches."))
	calc := function.New(func(context.Context, struct{}) (string, error) {
		return "", nil
	}, function.WithName("calculate"), function.WithDescription("Calculates."))

	tk, err := New("Find the answer", WithTools(search, calc))
	require.NoError(t, err)
	assert.Contains(t, tk.Prompt(), "Available tools: calculate, search")
}

func TestSetResponse(t *testing.T) {
	tk, err := New("anything")
	require.NoError(t, err)
	assert.Nil(t, tk.Response())

	tk.SetResponse("done")
	assert.Equal(t, "done", tk.Response())
}
