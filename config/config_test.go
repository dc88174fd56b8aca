//
// Copyright (C) 2025 EnsembleWorks.  All rights reserved.
//
// ensemble is licensed under the Apache License Version 2.0.
//

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ensembleworks/ensemble/team"
)

const sampleYAML = `
agents:
  - name: Researcher
    model: openai/gpt-4o
    role: Research Specialist
    goal: Find accurate information
  - name: Writer
    model: anthropic/claude-sonnet-4-20250514
    role: Content Writer
    goal: Produce clear articles
    instructions: |
      Keep sentences short.
team:
  name: Content Team
  mode: coordinate
  model: openai/gpt-4o
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "team.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Agents, 2)
	assert.Equal(t, "Researcher", cfg.Agents[0].Name)
	assert.Equal(t, "openai/gpt-4o", cfg.Agents[0].Model)
	assert.Equal(t, "Content Writer", cfg.Agents[1].Role)
	assert.Contains(t, cfg.Agents[1].Instructions, "Keep sentences short.")
	assert.Equal(t, "coordinate", cfg.Team.Mode)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("agents: [unclosed"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{
			name: "no agents",
			yaml: "team:\n  mode: sequential\n",
			want: ErrNoAgents,
		},
		{
			name: "missing name",
			yaml: "agents:\n  - model: openai/gpt-4o\n",
			want: ErrAgentName,
		},
		{
			name: "missing model",
			yaml: "agents:\n  - name: A\n",
			want: ErrAgentModel,
		},
		{
			name: "duplicate name",
			yaml: "agents:\n  - name: A\n    model: m\n  - name: A\n    model: m\n",
			want: ErrDuplicateAgent,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBuild(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	tm, err := cfg.Build()
	require.NoError(t, err)
	assert.Equal(t, "Content Team", tm.Name())
	assert.Equal(t, team.ModeCoordinate, tm.Mode())
	require.Len(t, tm.Agents(), 2)
	assert.Equal(t, "Researcher", tm.Agents()[0].Name())
}

func TestParseModeErrors(t *testing.T) {
	_, err := Parse([]byte("agents:\n  - name: A\n    model: m\nteam:\n  mode: route\n"))
	assert.ErrorIs(t, err, team.ErrModelRequired)

	_, err = Parse([]byte("agents:\n  - name: A\n    model: m\nteam:\n  mode: broadcast\n"))
	assert.ErrorIs(t, err, team.ErrUnknownMode)
}

func TestBuildDefaultsSequential(t *testing.T) {
	cfg, err := Parse([]byte("agents:\n  - name: A\n    model: m\n"))
	require.NoError(t, err)

	tm, err := cfg.Build()
	require.NoError(t, err)
	assert.Equal(t, team.ModeSequential, tm.Mode())
}
