//
// Copyright (C) 2025 EnsembleWorks.  All rights reserved.
//
// ensemble is licensed under the Apache License Version 2.0.
//

package safety

// PIIBlockPolicy blocks content containing PII.
func PIIBlockPolicy() *Policy {
	return &Policy{
		Name:        "PII Block Policy",
		Description: "Blocks content containing PII",
		Rule:        NewPIIRule(),
		Action:      NewBlockAction(),
		Enabled:     true,
	}
}

// PIIAnonymizePolicy replaces PII spans with per-category placeholders.
func PIIAnonymizePolicy() *Policy {
	return &Policy{
		Name:        "PII Anonymize Policy",
		Description: "Anonymizes PII in content",
		Rule:        NewPIIRule(),
		Action:      NewAnonymizeAction(),
		Enabled:     true,
	}
}

// PIIReplacePolicy replaces PII spans with "[PII_REDACTED]".
func PIIReplacePolicy() *Policy {
	return &Policy{
		Name:        "PII Replace Policy",
		Description: "Replaces PII with [PII_REDACTED]",
		Rule:        NewPIIRule(),
		Action:      NewReplaceAction("[PII_REDACTED]"),
		Enabled:     true,
	}
}

// PIIRaisePolicy fails with a ViolationError when PII is detected.
func PIIRaisePolicy() *Policy {
	return &Policy{
		Name:        "PII Exception Policy",
		Description: "Raises an error on PII detection",
		Rule:        NewPIIRule(),
		Action:      NewRaiseAction("PII detected in content"),
		Enabled:     true,
	}
}
