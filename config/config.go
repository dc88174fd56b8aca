//
// Copyright (C) 2025 EnsembleWorks.  All rights reserved.
//
// ensemble is licensed under the Apache License Version 2.0.
//

// Package config loads agent and team definitions from YAML. Provider
// credentials are not part of the file; they come from the environment
// (OPENAI_API_KEY, ANTHROPIC_API_KEY, OLLAMA_HOST).
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ensembleworks/ensemble/agent"
	"github.com/ensembleworks/ensemble/team"
)

var (
	// ErrNoAgents is returned when the file defines no agents.
	ErrNoAgents = errors.New("config must define at least one agent")
	// ErrAgentName is returned when an agent entry lacks a name.
	ErrAgentName = errors.New("agent entry missing name")
	// ErrAgentModel is returned when an agent entry lacks a model.
	ErrAgentModel = errors.New("agent entry missing model")
	// ErrDuplicateAgent is returned when two agent entries share a name.
	ErrDuplicateAgent = errors.New("duplicate agent name")
)

// AgentConfig defines one agent.
type AgentConfig struct {
	Name             string `yaml:"name"`
	Model            string `yaml:"model"`
	Role             string `yaml:"role"`
	Goal             string `yaml:"goal"`
	Instructions     string `yaml:"instructions"`
	SystemPrompt     string `yaml:"system_prompt"`
	CompanyURL       string `yaml:"company_url"`
	CompanyObjective string `yaml:"company_objective"`
}

// TeamConfig defines the team the agents form.
type TeamConfig struct {
	Name  string `yaml:"name"`
	Mode  string `yaml:"mode"`
	Model string `yaml:"model"`
}

// Config is the root of a YAML team definition.
type Config struct {
	Agents []AgentConfig `yaml:"agents"`
	Team   TeamConfig    `yaml:"team"`
}

// Load reads and validates a YAML team definition.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML team definition.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the definition, mirroring team construction errors so
// a bad file is rejected at load time rather than at Build.
func (c *Config) Validate() error {
	if len(c.Agents) == 0 {
		return ErrNoAgents
	}
	seen := make(map[string]struct{}, len(c.Agents))
	for i, a := range c.Agents {
		if a.Name == "" {
			return fmt.Errorf("%w (agent %d)", ErrAgentName, i)
		}
		if a.Model == "" {
			return fmt.Errorf("%w (agent %q)", ErrAgentModel, a.Name)
		}
		if _, ok := seen[a.Name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateAgent, a.Name)
		}
		seen[a.Name] = struct{}{}
	}
	switch mode := team.Mode(c.Team.Mode); mode {
	case "", team.ModeSequential:
	case team.ModeCoordinate, team.ModeRoute:
		if c.Team.Model == "" {
			return fmt.Errorf("%s %w", mode, team.ErrModelRequired)
		}
	default:
		return fmt.Errorf("%w: %s", team.ErrUnknownMode, mode)
	}
	return nil
}

// BuildAgents constructs the configured agents in declaration order.
func (c *Config) BuildAgents() []*agent.Agent {
	agents := make([]*agent.Agent, len(c.Agents))
	for i, a := range c.Agents {
		agents[i] = agent.New(
			agent.WithName(a.Name),
			agent.WithModel(a.Model),
			agent.WithRole(a.Role),
			agent.WithGoal(a.Goal),
			agent.WithInstructions(a.Instructions),
			agent.WithSystemPrompt(a.SystemPrompt),
			agent.WithCompanyURL(a.CompanyURL),
			agent.WithCompanyObjective(a.CompanyObjective),
		)
	}
	return agents
}

// Build constructs the team from the definition. Team-level errors
// (unknown mode, coordinate/route without a model) surface here.
func (c *Config) Build() (*team.Team, error) {
	opts := []team.Option{}
	if c.Team.Name != "" {
		opts = append(opts, team.WithName(c.Team.Name))
	}
	if c.Team.Mode != "" {
		opts = append(opts, team.WithMode(team.Mode(c.Team.Mode)))
	}
	if c.Team.Model != "" {
		opts = append(opts, team.WithModel(c.Team.Model))
	}
	return team.New(c.BuildAgents(), opts...)
}
