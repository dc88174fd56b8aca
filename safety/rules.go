//
// Copyright (C) 2025 EnsembleWorks.  All rights reserved.
//
// ensemble is licensed under the Apache License Version 2.0.
//

package safety

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ensembleworks/ensemble/log"
)

const defaultSeverity = "medium"

// PatternRule matches content using per-category regular expressions and a
// keyword list. Pattern matching is case-insensitive and non-overlapping
// within a pattern; keyword scanning is a case-insensitive substring search
// that allows overlapping hits.
type PatternRule struct {
	name       string
	categories []string
	patterns   map[string][]*regexp.Regexp
	keywords   []string
}

// NewPatternRule compiles the given category patterns and keywords. Patterns
// that fail to compile are skipped with a log entry.
func NewPatternRule(name string, patterns map[string][]string, keywords []string) *PatternRule {
	r := &PatternRule{
		name:     name,
		patterns: make(map[string][]*regexp.Regexp, len(patterns)),
		keywords: make([]string, 0, len(keywords)),
	}
	for category, patternList := range patterns {
		for _, p := range patternList {
			compiled, err := regexp.Compile("(?i)" + p)
			if err != nil {
				log.Errorf("pattern rule %s: bad pattern %q for %s: %v", name, p, category, err)
				continue
			}
			r.patterns[category] = append(r.patterns[category], compiled)
		}
		r.categories = append(r.categories, category)
	}
	// Categories scan in sorted order so violation lists are stable.
	sort.Strings(r.categories)
	for _, k := range keywords {
		r.keywords = append(r.keywords, strings.ToLower(k))
	}
	return r
}

// Check implements Rule.
func (r *PatternRule) Check(text string) []Violation {
	var violations []Violation
	for _, category := range r.categories {
		for _, pattern := range r.patterns[category] {
			for _, loc := range pattern.FindAllStringIndex(text, -1) {
				violations = append(violations, Violation{
					PolicyName:  r.name,
					Category:    category,
					MatchedText: text[loc[0]:loc[1]],
					Start:       loc[0],
					End:         loc[1],
					Severity:    defaultSeverity,
				})
			}
		}
	}

	lower := strings.ToLower(text)
	for _, keyword := range r.keywords {
		start := 0
		for {
			pos := strings.Index(lower[start:], keyword)
			if pos < 0 {
				break
			}
			pos += start
			violations = append(violations, Violation{
				PolicyName:  r.name,
				Category:    "keyword",
				MatchedText: text[pos : pos+len(keyword)],
				Start:       pos,
				End:         pos + len(keyword),
				Severity:    defaultSeverity,
			})
			start = pos + 1
		}
	}
	return violations
}

// piiPatterns detects emails, phone numbers, SSNs, card numbers and IPv4
// addresses.
var piiPatterns = map[string][]string{
	"email": {
		`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`,
	},
	"phone": {
		`\b\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`,
		// No leading \b here: there is no word boundary between a space
		// and "(" or "+", so one would make these shapes unmatchable.
		`\(\d{3}\)\s?\d{3}[-.\s]?\d{4}\b`,
		`\+\d{1,3}[-.\s]?\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`,
	},
	"ssn": {
		`\b\d{3}[-.\s]?\d{2}[-.\s]?\d{4}\b`,
	},
	"credit_card": {
		`\b\d{4}[-.\s]?\d{4}[-.\s]?\d{4}[-.\s]?\d{4}\b`,
		`\b\d{16}\b`,
	},
	"ip_address": {
		`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`,
	},
}

// PIIRuleOptions customizes a PIIRule.
type PIIRuleOptions struct {
	// CustomPatterns merge into the default category patterns.
	CustomPatterns map[string][]string
	// CustomKeywords are scanned in addition to the patterns.
	CustomKeywords []string
}

// NewPIIRule creates a rule detecting personally identifiable information:
// emails, phones, SSNs, credit cards and IP addresses.
func NewPIIRule(opts ...PIIRuleOptions) *PatternRule {
	patterns := make(map[string][]string, len(piiPatterns))
	for category, patternList := range piiPatterns {
		patterns[category] = append([]string(nil), patternList...)
	}
	var keywords []string
	for _, o := range opts {
		for category, patternList := range o.CustomPatterns {
			patterns[category] = append(patterns[category], patternList...)
		}
		keywords = append(keywords, o.CustomKeywords...)
	}
	return NewPatternRule("PIIRule", patterns, keywords)
}
