//
// Copyright (C) 2025 EnsembleWorks.  All rights reserved.
//
// ensemble is licensed under the Apache License Version 2.0.
//

// Package agent implements the primary task executor: an LLM-backed agent
// with tools, memory and safety policies.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"github.com/ensembleworks/ensemble/log"
	"github.com/ensembleworks/ensemble/memory"
	"github.com/ensembleworks/ensemble/model"
	"github.com/ensembleworks/ensemble/model/provider"
	"github.com/ensembleworks/ensemble/safety"
	"github.com/ensembleworks/ensemble/task"
	"github.com/ensembleworks/ensemble/telemetry"
	"github.com/ensembleworks/ensemble/tool"
)

// Config holds the descriptive configuration of an agent.
type Config struct {
	Name             string
	Role             string
	Goal             string
	Instructions     string
	SystemPrompt     string
	CompanyURL       string
	CompanyObjective string
}

// Agent executes tasks against a language model. The model backend is
// resolved lazily on first use and cached for the agent's lifetime.
type Agent struct {
	config       Config
	modelID      string
	mdl          model.Model
	mem          *memory.Memory
	policyEngine *safety.Engine
	providerOpts []provider.Option
}

// Option configures an Agent.
type Option func(*Agent)

// WithModel sets the model identifier in "provider/model" form; an
// identifier without a provider means OpenAI.
func WithModel(id string) Option {
	return func(a *Agent) {
		a.modelID = id
	}
}

// WithModelInstance injects a concrete model, bypassing provider
// resolution.
func WithModelInstance(m model.Model) Option {
	return func(a *Agent) {
		a.mdl = m
	}
}

// WithProviderOptions passes options through to provider resolution.
func WithProviderOptions(opts ...provider.Option) Option {
	return func(a *Agent) {
		a.providerOpts = append(a.providerOpts, opts...)
	}
}

// WithName sets the agent's name.
func WithName(name string) Option {
	return func(a *Agent) {
		a.config.Name = name
	}
}

// WithRole sets the agent's role description.
func WithRole(role string) Option {
	return func(a *Agent) {
		a.config.Role = role
	}
}

// WithGoal sets the agent's primary goal.
func WithGoal(goal string) Option {
	return func(a *Agent) {
		a.config.Goal = goal
	}
}

// WithInstructions sets detailed instructions for the agent.
func WithInstructions(instructions string) Option {
	return func(a *Agent) {
		a.config.Instructions = instructions
	}
}

// WithSystemPrompt sets a custom system prompt, overriding the generated
// one.
func WithSystemPrompt(prompt string) Option {
	return func(a *Agent) {
		a.config.SystemPrompt = prompt
	}
}

// WithCompanyURL adds the company URL to the generated system prompt.
func WithCompanyURL(url string) Option {
	return func(a *Agent) {
		a.config.CompanyURL = url
	}
}

// WithCompanyObjective adds the company objective to the generated system
// prompt.
func WithCompanyObjective(objective string) Option {
	return func(a *Agent) {
		a.config.CompanyObjective = objective
	}
}

// WithMemory attaches a conversation memory.
func WithMemory(m *memory.Memory) Option {
	return func(a *Agent) {
		a.mem = m
	}
}

// WithPolicyEngine attaches a safety policy engine applied to every
// result.
func WithPolicyEngine(engine *safety.Engine) Option {
	return func(a *Agent) {
		a.policyEngine = engine
	}
}

// New creates an agent. Without options it is named "Agent" and uses the
// default OpenAI model.
func New(opts ...Option) *Agent {
	a := &Agent{
		config:  Config{Name: "Agent"},
		modelID: "openai/gpt-4o",
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name returns the agent's name.
func (a *Agent) Name() string {
	return a.config.Name
}

// Config returns the agent's descriptive configuration.
func (a *Agent) Config() Config {
	return a.config
}

// resolveModel returns the cached backend, resolving it on first use.
func (a *Agent) resolveModel() (model.Model, error) {
	if a.mdl != nil {
		return a.mdl, nil
	}
	m, err := provider.Resolve(a.modelID, a.providerOpts...)
	if err != nil {
		return nil, err
	}
	a.mdl = m
	return m, nil
}

// SystemPrompt returns the system prompt: the custom override when set,
// otherwise a prompt generated from the agent's configuration.
func (a *Agent) SystemPrompt() string {
	if a.config.SystemPrompt != "" {
		return a.config.SystemPrompt
	}
	parts := []string{fmt.Sprintf("You are %s.", a.config.Name)}
	if a.config.Role != "" {
		parts = append(parts, "Your role: "+a.config.Role)
	}
	if a.config.Goal != "" {
		parts = append(parts, "Your goal: "+a.config.Goal)
	}
	if a.config.CompanyURL != "" {
		parts = append(parts, "Company: "+a.config.CompanyURL)
	}
	if a.config.CompanyObjective != "" {
		parts = append(parts, "Company objective: "+a.config.CompanyObjective)
	}
	if a.config.Instructions != "" {
		parts = append(parts, "\nInstructions:\n"+a.config.Instructions)
	}
	return strings.Join(parts, "\n")
}

// buildMessages assembles the conversation sent to the model: system
// prompt, memory context and recent turns, then the task as the final user
// turn.
func (a *Agent) buildMessages(t *task.Task) []model.Message {
	messages := []model.Message{model.NewSystemMessage(a.SystemPrompt())}
	if a.mem != nil {
		if memCtx := a.mem.Context(); memCtx != "" {
			messages = append(messages, model.NewSystemMessage("Context:\n"+memCtx))
		}
		messages = append(messages, a.mem.MessagesForPrompt(0)...)
	}
	return append(messages, model.NewUserMessage(t.Prompt()))
}

// Do executes a task and returns the textual result. When the task asks
// for structured output, the parsed value is stored on the task while the
// returned string stays the raw model text.
func (a *Agent) Do(ctx context.Context, t *task.Task) (string, error) {
	ctx, span := telemetry.Tracer.Start(ctx, "agent.do",
		trace.WithAttributes(
			telemetry.String(telemetry.KeyAgentName, a.config.Name),
			telemetry.String(telemetry.KeyModelName, a.modelID),
		))
	defer span.End()

	mdl, err := a.resolveModel()
	if err != nil {
		return "", fmt.Errorf("agent %s: %w", a.config.Name, err)
	}

	tools, err := tool.Resolve(t.Tools)
	if err != nil {
		return "", fmt.Errorf("agent %s: %w", a.config.Name, err)
	}

	request := &model.Request{
		Messages:         a.buildMessages(t),
		Tools:            tools,
		StructuredOutput: t.ResponseFormat != nil,
	}

	rsp, err := mdl.Converse(ctx, request)
	if err != nil {
		return "", fmt.Errorf("agent %s: %w", a.config.Name, err)
	}
	result := rsp.Text()

	if a.policyEngine != nil {
		processed, violations, err := a.policyEngine.CheckOutput(result)
		if err != nil {
			return "", fmt.Errorf("agent %s: %w", a.config.Name, err)
		}
		if len(violations) > 0 {
			log.Infof("agent %s: %d policy violation(s) handled", a.config.Name, len(violations))
		}
		result = processed
	}

	t.SetResponse(a.parseResponse(t, result))

	if a.mem != nil {
		if err := a.mem.AddMessage(ctx, string(model.RoleUser), t.Description, nil); err != nil {
			return "", fmt.Errorf("agent %s: %w", a.config.Name, err)
		}
		if err := a.mem.AddMessage(ctx, string(model.RoleAssistant), result, nil); err != nil {
			return "", fmt.Errorf("agent %s: %w", a.config.Name, err)
		}
	}
	return result, nil
}

// parseResponse converts the model text into the task's response value.
// A structured-output parse failure degrades to the raw text.
func (a *Agent) parseResponse(t *task.Task, result string) any {
	if t.ResponseFormat == nil {
		return result
	}
	format := reflect.TypeOf(t.ResponseFormat)
	for format.Kind() == reflect.Ptr {
		format = format.Elem()
	}
	parsed := reflect.New(format).Interface()
	if err := json.Unmarshal([]byte(result), parsed); err != nil {
		log.Debugf("agent %s: structured output parse failed, keeping raw text: %v", a.config.Name, err)
		return result
	}
	return parsed
}
