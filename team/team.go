//
// Copyright (C) 2025 EnsembleWorks.  All rights reserved.
//
// ensemble is licensed under the Apache License Version 2.0.
//

// Package team coordinates multiple agents over an ordered list of tasks.
package team

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"github.com/ensembleworks/ensemble/agent"
	"github.com/ensembleworks/ensemble/log"
	"github.com/ensembleworks/ensemble/model"
	"github.com/ensembleworks/ensemble/task"
	"github.com/ensembleworks/ensemble/telemetry"
)

// Mode selects the team coordination strategy.
type Mode string

const (
	// ModeSequential chains each task's result into the next task's
	// context.
	ModeSequential Mode = "sequential"
	// ModeCoordinate runs specialists per task and has a leader agent
	// synthesize the final answer.
	ModeCoordinate Mode = "coordinate"
	// ModeRoute executes each task independently on the best-matching
	// agent.
	ModeRoute Mode = "route"
)

var (
	// ErrNoAgents is returned when a team is constructed without agents.
	ErrNoAgents = errors.New("team must have at least one agent")
	// ErrNoTasks is returned when Do is invoked with no tasks.
	ErrNoTasks = errors.New("no tasks provided")
	// ErrModelRequired is returned when coordinate or route mode is
	// configured without a model for the leader/router.
	ErrModelRequired = errors.New("mode requires a model for the leader/router")
	// ErrUnknownMode is returned for an unrecognized coordination mode.
	ErrUnknownMode = errors.New("unknown team mode")
)

// Result is the outcome of one Do invocation.
type Result struct {
	// FinalResult is the team's answer: the last task's result, or the
	// leader's synthesis in coordinate mode.
	FinalResult string
	// TaskResults holds each task's result in execution order.
	TaskResults []string
	// AgentsUsed lists the agent names in the order they worked.
	AgentsUsed []string
}

// Team executes tasks across a roster of agents under one Mode.
type Team struct {
	name        string
	agents      []*agent.Agent
	mode        Mode
	modelID     string
	leaderModel model.Model
}

// Option configures a Team.
type Option func(*Team)

// WithName sets the team's name.
func WithName(name string) Option {
	return func(t *Team) {
		t.name = name
	}
}

// WithMode sets the coordination mode. Defaults to sequential.
func WithMode(mode Mode) Option {
	return func(t *Team) {
		t.mode = mode
	}
}

// WithModel sets the model identifier for the leader/router, required by
// coordinate and route modes.
func WithModel(id string) Option {
	return func(t *Team) {
		t.modelID = id
	}
}

// WithLeaderModel injects a concrete model for the leader agent,
// bypassing provider resolution.
func WithLeaderModel(m model.Model) Option {
	return func(t *Team) {
		t.leaderModel = m
	}
}

// New creates a team over the given agents. Configuration errors surface
// here, not at execution time.
func New(agents []*agent.Agent, opts ...Option) (*Team, error) {
	if len(agents) == 0 {
		return nil, ErrNoAgents
	}
	t := &Team{
		name:   "Team",
		agents: agents,
		mode:   ModeSequential,
	}
	for _, opt := range opts {
		opt(t)
	}
	switch t.mode {
	case ModeSequential:
	case ModeCoordinate, ModeRoute:
		if t.modelID == "" && t.leaderModel == nil {
			return nil, fmt.Errorf("%s %w", t.mode, ErrModelRequired)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMode, t.mode)
	}
	return t, nil
}

// Name returns the team's name.
func (t *Team) Name() string {
	return t.name
}

// Mode returns the team's coordination mode.
func (t *Team) Mode() Mode {
	return t.mode
}

// Agents returns the team's roster.
func (t *Team) Agents() []*agent.Agent {
	return t.agents
}

// selectAgent picks the executor for a task: the pre-assigned agent when
// set, otherwise the roster agent whose role and goal words best match
// the task description. Ties keep the earlier roster entry.
func (t *Team) selectAgent(tsk *task.Task) task.Executor {
	if tsk.Assignee != nil {
		return tsk.Assignee
	}

	taskLower := strings.ToLower(tsk.Description)
	best := t.agents[0]
	bestScore := 0
	for _, a := range t.agents {
		cfg := a.Config()
		words := strings.Fields(strings.ToLower(cfg.Role))
		words = append(words, strings.Fields(strings.ToLower(cfg.Goal))...)
		score := 0
		for _, word := range words {
			if len(word) > 3 && strings.Contains(taskLower, word) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = a
		}
	}
	return best
}

// Do executes the tasks under the team's mode and returns the combined
// result. Tasks run strictly in order; the first failure aborts the run.
func (t *Team) Do(ctx context.Context, tasks ...*task.Task) (*Result, error) {
	ctx, span := telemetry.Tracer.Start(ctx, "team.do",
		trace.WithAttributes(
			telemetry.String(telemetry.KeyTeamMode, string(t.mode)),
			telemetry.Int(telemetry.KeyTaskCount, len(tasks)),
		))
	defer span.End()

	if len(tasks) == 0 {
		return nil, ErrNoTasks
	}

	switch t.mode {
	case ModeSequential:
		return t.runSequential(ctx, tasks)
	case ModeCoordinate:
		return t.runCoordinate(ctx, tasks)
	case ModeRoute:
		return t.runRoute(ctx, tasks)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMode, t.mode)
	}
}

// runSequential executes tasks in order, appending each completed task to
// the next task's context so later agents see earlier results.
func (t *Team) runSequential(ctx context.Context, tasks []*task.Task) (*Result, error) {
	result := &Result{}
	for i, tsk := range tasks {
		executor := t.selectAgent(tsk)
		result.AgentsUsed = append(result.AgentsUsed, executor.Name())
		log.Debugf("team %s: task %d/%d assigned to %s", t.name, i+1, len(tasks), executor.Name())

		if i > 0 && !containsTask(tsk.Context, tasks[i-1]) {
			tsk.Context = append(tsk.Context, tasks[i-1])
		}

		out, err := executor.Do(ctx, tsk)
		if err != nil {
			return nil, fmt.Errorf("team %s task %d: %w", t.name, i+1, err)
		}
		result.TaskResults = append(result.TaskResults, out)
	}
	result.FinalResult = result.TaskResults[len(result.TaskResults)-1]
	return result, nil
}

// runCoordinate executes each task on a selected specialist, then has a
// leader agent synthesize the accumulated results into the final answer.
func (t *Team) runCoordinate(ctx context.Context, tasks []*task.Task) (*Result, error) {
	leader := t.newLeader()
	result := &Result{AgentsUsed: []string{leader.Name()}}

	for i, tsk := range tasks {
		executor := t.selectAgent(tsk)
		result.AgentsUsed = append(result.AgentsUsed, executor.Name())
		log.Debugf("team %s: leader coordinating task %d/%d via %s",
			t.name, i+1, len(tasks), executor.Name())

		for _, prev := range tasks[:i] {
			if prev.Response() != nil && !containsTask(tsk.Context, prev) {
				tsk.Context = append(tsk.Context, prev)
			}
		}

		out, err := executor.Do(ctx, tsk)
		if err != nil {
			return nil, fmt.Errorf("team %s task %d: %w", t.name, i+1, err)
		}
		result.TaskResults = append(result.TaskResults, out)
	}

	lines := make([]string, len(result.TaskResults))
	for i, r := range result.TaskResults {
		lines[i] = "- " + r
	}
	synthesis, err := task.New(
		"Synthesize these results into a coherent final answer:\n" + strings.Join(lines, "\n"))
	if err != nil {
		return nil, err
	}
	final, err := leader.Do(ctx, synthesis)
	if err != nil {
		return nil, fmt.Errorf("team %s synthesis: %w", t.name, err)
	}
	result.FinalResult = final
	return result, nil
}

// runRoute executes each task independently on the best-matching agent,
// with no context chaining and no synthesis.
func (t *Team) runRoute(ctx context.Context, tasks []*task.Task) (*Result, error) {
	result := &Result{AgentsUsed: []string{"Router"}}
	for i, tsk := range tasks {
		executor := t.selectAgent(tsk)
		result.AgentsUsed = append(result.AgentsUsed, executor.Name())
		log.Debugf("team %s: routed task %d to %s", t.name, i+1, executor.Name())

		out, err := executor.Do(ctx, tsk)
		if err != nil {
			return nil, fmt.Errorf("team %s task %d: %w", t.name, i+1, err)
		}
		result.TaskResults = append(result.TaskResults, out)
	}
	result.FinalResult = result.TaskResults[len(result.TaskResults)-1]
	return result, nil
}

// newLeader builds the coordinate-mode leader whose instructions
// enumerate every roster member.
func (t *Team) newLeader() *agent.Agent {
	descriptions := make([]string, len(t.agents))
	for i, a := range t.agents {
		cfg := a.Config()
		descriptions[i] = fmt.Sprintf("- %s: %s - %s", cfg.Name, cfg.Role, cfg.Goal)
	}
	instructions := "You are coordinating a team of specialists:\n" +
		strings.Join(descriptions, "\n") +
		"\n\nFor each task, decide which specialist should handle it.\n" +
		"After all tasks are complete, synthesize the final result."

	opts := []agent.Option{
		agent.WithName("Team Leader"),
		agent.WithRole("Team Coordinator"),
		agent.WithGoal("Coordinate team members to complete tasks effectively"),
		agent.WithInstructions(instructions),
	}
	if t.modelID != "" {
		opts = append(opts, agent.WithModel(t.modelID))
	}
	if t.leaderModel != nil {
		opts = append(opts, agent.WithModelInstance(t.leaderModel))
	}
	return agent.New(opts...)
}

func containsTask(items []any, target *task.Task) bool {
	for _, item := range items {
		if item == any(target) {
			return true
		}
	}
	return false
}
