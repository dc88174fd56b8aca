//
// Copyright (C) 2025 EnsembleWorks.  All rights reserved.
//
// ensemble is licensed under the Apache License Version 2.0.
//

// Package safety provides policy-based content filtering for agent input
// and output: PII detection, keyword filtering and custom policies.
package safety

import "github.com/ensembleworks/ensemble/log"

// Violation represents a single policy violation found in a text.
type Violation struct {
	// PolicyName is the name of the rule that found the violation.
	PolicyName string `json:"policy_name"`
	// Category classifies the violation, e.g. "email" or "keyword".
	Category string `json:"category"`
	// MatchedText is the offending span as it appeared in the input.
	MatchedText string `json:"matched_text"`
	// Start and End delimit the span in the rule's input text.
	Start int `json:"start"`
	End   int `json:"end"`
	// Severity defaults to "medium".
	Severity string `json:"severity"`
}

// ViolationError is returned by a Raise action when violations are found.
// It carries the violations detected in the untouched input text.
type ViolationError struct {
	Message    string
	Violations []Violation
}

// Error implements the error interface.
func (e *ViolationError) Error() string {
	return e.Message
}

// Rule checks a text and reports violations.
type Rule interface {
	Check(text string) []Violation
}

// Action transforms a text given the violations a rule found in it.
type Action interface {
	Apply(text string, violations []Violation) (string, error)
}

// Policy combines a rule with an action.
type Policy struct {
	Name        string
	Description string
	Rule        Rule
	Action      Action
	// Enabled policies run; disabled ones pass text through untouched.
	Enabled bool
}

// CheckAndApply checks the text against the policy and applies its action.
// It returns the processed text and the violations found.
func (p *Policy) CheckAndApply(text string) (string, []Violation, error) {
	if !p.Enabled {
		return text, nil, nil
	}
	violations := p.Rule.Check(text)
	processed, err := p.Action.Apply(text, violations)
	if err != nil {
		return "", violations, err
	}
	return processed, violations, nil
}

// Engine runs an ordered set of policies over a text. Each policy sees the
// previous policy's output, so registration order matters.
type Engine struct {
	policies []*Policy
}

// NewEngine creates an engine with the given policies.
func NewEngine(policies ...*Policy) *Engine {
	return &Engine{policies: policies}
}

// AddPolicy appends a policy to the pipeline.
func (e *Engine) AddPolicy(policy *Policy) {
	e.policies = append(e.policies, policy)
}

// RemovePolicy removes the first policy with the given name and reports
// whether one was removed.
func (e *Engine) RemovePolicy(name string) bool {
	for i, p := range e.policies {
		if p.Name == name {
			e.policies = append(e.policies[:i], e.policies[i+1:]...)
			return true
		}
	}
	return false
}

// Policies returns the registered policies in pipeline order.
func (e *Engine) Policies() []*Policy {
	return e.policies
}

// Check runs the text through all policies in registration order and
// returns the processed text together with every violation found. Violation
// spans reference each policy's own input, not the original text.
func (e *Engine) Check(text string) (string, []Violation, error) {
	var all []Violation
	current := text
	for _, policy := range e.policies {
		processed, violations, err := policy.CheckAndApply(current)
		all = append(all, violations...)
		if err != nil {
			return "", all, err
		}
		if len(violations) > 0 {
			log.Debugf("policy %s flagged %d violation(s)", policy.Name, len(violations))
		}
		current = processed
	}
	return current, all, nil
}

// CheckInput checks user input against the policies.
func (e *Engine) CheckInput(text string) (string, []Violation, error) {
	return e.Check(text)
}

// CheckOutput checks agent output against the policies.
func (e *Engine) CheckOutput(text string) (string, []Violation, error) {
	return e.Check(text)
}

// IsSafe reports whether the text passes all policies without violations.
func (e *Engine) IsSafe(text string) bool {
	_, violations, err := e.Check(text)
	return err == nil && len(violations) == 0
}
