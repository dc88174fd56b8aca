//
// Copyright (C) 2025 EnsembleWorks.  All rights reserved.
//
// ensemble is licensed under the Apache License Version 2.0.
//

package safety

import (
	"fmt"
	"sort"
	"strings"
)

// BlockAction replaces the whole text with a block message when violations
// exist.
type BlockAction struct {
	Message string
}

// NewBlockAction creates a block action with the default message.
func NewBlockAction() *BlockAction {
	return &BlockAction{Message: "Content blocked due to policy violation"}
}

// Apply implements Action. The block message lists the violated categories
// in sorted order.
func (a *BlockAction) Apply(text string, violations []Violation) (string, error) {
	if len(violations) == 0 {
		return text, nil
	}
	seen := make(map[string]bool)
	var categories []string
	for _, v := range violations {
		if !seen[v.Category] {
			seen[v.Category] = true
			categories = append(categories, v.Category)
		}
	}
	sort.Strings(categories)
	return fmt.Sprintf("%s (detected: %s)", a.Message, strings.Join(categories, ", ")), nil
}

// AnonymizeAction replaces each violation span with a per-category
// placeholder.
type AnonymizeAction struct {
	Replacements map[string]string
}

// NewAnonymizeAction creates an anonymize action with the default
// placeholder map. Categories without an entry become "[REDACTED]".
func NewAnonymizeAction() *AnonymizeAction {
	return &AnonymizeAction{Replacements: map[string]string{
		"email":       "[EMAIL]",
		"phone":       "[PHONE]",
		"ssn":         "[SSN]",
		"credit_card": "[CARD]",
		"address":     "[ADDRESS]",
		"name":        "[NAME]",
	}}
}

// Apply implements Action.
func (a *AnonymizeAction) Apply(text string, violations []Violation) (string, error) {
	return replaceSpans(text, violations, func(v Violation) string {
		if replacement, ok := a.Replacements[v.Category]; ok {
			return replacement
		}
		return "[REDACTED]"
	}), nil
}

// ReplaceAction replaces every violation span with a single placeholder.
type ReplaceAction struct {
	Placeholder string
}

// NewReplaceAction creates a replace action. An empty placeholder defaults
// to "[REDACTED]".
func NewReplaceAction(placeholder string) *ReplaceAction {
	if placeholder == "" {
		placeholder = "[REDACTED]"
	}
	return &ReplaceAction{Placeholder: placeholder}
}

// Apply implements Action.
func (a *ReplaceAction) Apply(text string, violations []Violation) (string, error) {
	return replaceSpans(text, violations, func(Violation) string {
		return a.Placeholder
	}), nil
}

// RaiseAction fails with a ViolationError when violations exist; the text
// passes through untouched otherwise.
type RaiseAction struct {
	Message string
}

// NewRaiseAction creates a raise action with the given message; an empty
// message defaults to "Policy violation detected".
func NewRaiseAction(message string) *RaiseAction {
	if message == "" {
		message = "Policy violation detected"
	}
	return &RaiseAction{Message: message}
}

// Apply implements Action.
func (a *RaiseAction) Apply(text string, violations []Violation) (string, error) {
	if len(violations) > 0 {
		return "", &ViolationError{Message: a.Message, Violations: violations}
	}
	return text, nil
}

// replaceSpans rewrites each violation span using the replacement function.
// Spans apply in descending start order so earlier offsets stay valid.
func replaceSpans(text string, violations []Violation, replacement func(Violation) string) string {
	sorted := append([]Violation(nil), violations...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start > sorted[j].Start
	})
	result := text
	for _, v := range sorted {
		if v.Start < 0 || v.End > len(result) || v.Start > v.End {
			continue
		}
		result = result[:v.Start] + replacement(v) + result[v.End:]
	}
	return result
}
