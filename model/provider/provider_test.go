//
// Copyright (C) 2025 EnsembleWorks.  All rights reserved.
//
// ensemble is licensed under the Apache License Version 2.0.
//

package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("ANTHROPIC_API_KEY", "test-key")

	tests := []struct {
		name         string
		modelID      string
		wantProvider string
		wantModel    string
	}{
		{"explicit openai", "openai/gpt-4o-mini", "openai", "gpt-4o-mini"},
		{"default is openai", "gpt-4o-mini", "openai", "gpt-4o-mini"},
		{"anthropic", "anthropic/claude-sonnet-4-5", "anthropic", "claude-sonnet-4-5"},
		{"ollama", "ollama/llama3.2:latest", "ollama", "llama3.2:latest"},
		{"split on first slash only", "ollama/library/llama3", "ollama", "library/llama3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Resolve(tt.modelID)
			require.NoError(t, err)
			info := m.Info()
			assert.Equal(t, tt.wantProvider, info.Provider)
			assert.Equal(t, tt.wantModel, info.Name)
		})
	}
}

func TestResolve_UnknownProvider(t *testing.T) {
	_, err := Resolve("mistral/mistral-large")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownProvider)
	assert.Contains(t, err.Error(), "mistral")
}

func TestResolve_MissingAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := Resolve("gpt-4o-mini")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}
