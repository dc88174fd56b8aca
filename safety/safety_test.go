//
// Copyright (C) 2025 EnsembleWorks.  All rights reserved.
//
// ensemble is licensed under the Apache License Version 2.0.
//

package safety

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIIRule_Email(t *testing.T) {
	rule := NewPIIRule()
	violations := rule.Check("Reach me at test@example.com please")
	require.Len(t, violations, 1)
	v := violations[0]
	assert.Equal(t, "email", v.Category)
	assert.Equal(t, "test@example.com", v.MatchedText)
	assert.Equal(t, "test@example.com", "Reach me at test@example.com please"[v.Start:v.End])
	assert.Equal(t, "medium", v.Severity)
}

func TestPIIRule_PhoneShapes(t *testing.T) {
	rule := NewPIIRule()
	tests := []struct {
		name string
		text string
		want string
	}{
		{"dashed", "call 555-123-4567 now", "555-123-4567"},
		{"parenthesized", "call (555) 123-4567 now", "(555) 123-4567"},
		{"international", "call +1 555 123 4567 now", "+1 555 123 4567"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := rule.Check(tt.text)
			var matched []string
			for _, v := range violations {
				if v.Category == "phone" {
					matched = append(matched, v.MatchedText)
				}
			}
			// The full declared shape must fire, not just a bare-digit
			// sub-span of it.
			assert.Contains(t, matched, tt.want, "no phone violation for %q in %q", tt.want, tt.text)
		})
	}
}

func TestPIIRule_Categories(t *testing.T) {
	rule := NewPIIRule()
	tests := []struct {
		name     string
		text     string
		category string
	}{
		{"ssn", "ssn is 078-05-1120 ok", "ssn"},
		{"grouped card", "card 4111-1111-1111-1111 thanks", "credit_card"},
		{"bare card", "card 4111111111111111 thanks", "credit_card"},
		{"ipv4", "server at 192.168.0.1 responded", "ip_address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := rule.Check(tt.text)
			var found bool
			for _, v := range violations {
				if v.Category == tt.category {
					found = true
				}
			}
			assert.True(t, found, "no %s violation in %q", tt.category, tt.text)
		})
	}
}

func TestPIIRule_CleanText(t *testing.T) {
	rule := NewPIIRule()
	assert.Empty(t, rule.Check("The weather in Oslo is mild today."))
}

func TestPatternRule_KeywordsOverlap(t *testing.T) {
	rule := NewPatternRule("test", nil, []string{"aa"})
	violations := rule.Check("xaaax")
	// Substring scan allows overlapping hits.
	require.Len(t, violations, 2)
	assert.Equal(t, 1, violations[0].Start)
	assert.Equal(t, 2, violations[1].Start)
	assert.Equal(t, "keyword", violations[0].Category)
}

func TestPatternRule_KeywordCaseInsensitive(t *testing.T) {
	rule := NewPatternRule("test", nil, []string{"Secret"})
	violations := rule.Check("the SECRET plan")
	require.Len(t, violations, 1)
	// MatchedText preserves the original casing.
	assert.Equal(t, "SECRET", violations[0].MatchedText)
}

func TestAnonymizeAction(t *testing.T) {
	text := "a@b.com calls 555-123-4567"
	rule := NewPIIRule()
	out, err := NewAnonymizeAction().Apply(text, rule.Check(text))
	require.NoError(t, err)
	assert.Equal(t, "[EMAIL] calls [PHONE]", out)
}

func TestAnonymizeAction_UnknownCategoryRedacts(t *testing.T) {
	out, err := NewAnonymizeAction().Apply("call me maybe", []Violation{
		{Category: "keyword", Start: 0, End: 4},
	})
	require.NoError(t, err)
	assert.Equal(t, "[REDACTED] me maybe", out)
}

func TestReplaceAction(t *testing.T) {
	text := "a@b.com and c@d.org"
	rule := NewPIIRule()
	out, err := NewReplaceAction("[PII_REDACTED]").Apply(text, rule.Check(text))
	require.NoError(t, err)
	assert.Equal(t, "[PII_REDACTED] and [PII_REDACTED]", out)
}

func TestBlockAction(t *testing.T) {
	text := "a@b.com calls 555-123-4567"
	rule := NewPIIRule()
	out, err := NewBlockAction().Apply(text, rule.Check(text))
	require.NoError(t, err)
	assert.Equal(t, "Content blocked due to policy violation (detected: email, phone)", out)
}

func TestBlockAction_NoViolations(t *testing.T) {
	out, err := NewBlockAction().Apply("all clear", nil)
	require.NoError(t, err)
	assert.Equal(t, "all clear", out)
}

func TestRaiseAction(t *testing.T) {
	text := "my email is test@example.com"
	rule := NewPIIRule()
	_, err := NewRaiseAction("PII detected in content").Apply(text, rule.Check(text))
	require.Error(t, err)

	var verr *ViolationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "PII detected in content", verr.Message)
	require.Len(t, verr.Violations, 1)
	assert.Equal(t, "email", verr.Violations[0].Category)
	assert.Equal(t, "test@example.com", verr.Violations[0].MatchedText)
}

func TestEngine_PipelineOrder(t *testing.T) {
	text := "a@b.com"

	// Anonymize first: the block policy sees placeholders, nothing to block.
	engine := NewEngine(PIIAnonymizePolicy(), PIIBlockPolicy())
	out, violations, err := engine.Check(text)
	require.NoError(t, err)
	assert.Equal(t, "[EMAIL]", out)
	assert.Len(t, violations, 1)

	// Block first: the anonymize policy sees the block message.
	engine = NewEngine(PIIBlockPolicy(), PIIAnonymizePolicy())
	out, violations, err = engine.Check(text)
	require.NoError(t, err)
	assert.Equal(t, "Content blocked due to policy violation (detected: email)", out)
	assert.Len(t, violations, 1)
}

func TestEngine_DisabledPolicy(t *testing.T) {
	policy := PIIAnonymizePolicy()
	policy.Enabled = false
	engine := NewEngine(policy)

	out, violations, err := engine.Check("a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", out)
	assert.Empty(t, violations)
}

func TestEngine_RaiseStopsPipeline(t *testing.T) {
	engine := NewEngine(PIIRaisePolicy(), PIIAnonymizePolicy())
	_, violations, err := engine.Check("a@b.com")
	require.Error(t, err)

	var verr *ViolationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, violations, 1)
}

func TestEngine_RemovePolicy(t *testing.T) {
	engine := NewEngine(PIIBlockPolicy(), PIIAnonymizePolicy())
	assert.True(t, engine.RemovePolicy("PII Block Policy"))
	assert.False(t, engine.RemovePolicy("PII Block Policy"))
	require.Len(t, engine.Policies(), 1)
	assert.Equal(t, "PII Anonymize Policy", engine.Policies()[0].Name)
}

func TestEngine_IsSafe(t *testing.T) {
	engine := NewEngine(PIIAnonymizePolicy())
	assert.True(t, engine.IsSafe("nothing sensitive here"))
	assert.False(t, engine.IsSafe("a@b.com"))
}

func TestPIIRule_CustomOptions(t *testing.T) {
	rule := NewPIIRule(PIIRuleOptions{
		CustomPatterns: map[string][]string{"badge": {`\bEMP-\d{5}\b`}},
		CustomKeywords: []string{"classified"},
	})

	violations := rule.Check("badge EMP-12345 is classified")
	categories := make(map[string]int)
	for _, v := range violations {
		categories[v.Category]++
	}
	assert.Equal(t, 1, categories["badge"])
	assert.Equal(t, 1, categories["keyword"])
}
