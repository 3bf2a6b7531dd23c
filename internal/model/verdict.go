package model

import (
	"fmt"
	"strings"
)

// Granularity selects how the candidate text is split into claim units.
type Granularity string

const (
	// GranularitySentence verifies every sentence independently.
	GranularitySentence Granularity = "sentence"
	// GranularityFull verifies the whole text as a single claim unit.
	GranularityFull Granularity = "full"
)

// ParseGranularity validates a user-supplied granularity string.
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(strings.ToLower(strings.TrimSpace(s))) {
	case GranularitySentence:
		return GranularitySentence, nil
	case GranularityFull:
		return GranularityFull, nil
	default:
		return "", fmt.Errorf("%w: granularity %q (use %q or %q)",
			ErrInvalidConfiguration, s, GranularitySentence, GranularityFull)
	}
}

// Verdict is the support judgment for one claim unit.
type Verdict struct {
	Supported bool `json:"supported"`
	// Indeterminate marks verdicts where the judge output could not be
	// parsed. Counts as unsupported: "cannot confirm support" is not
	// the same as "supported".
	Indeterminate bool       `json:"indeterminate,omitempty"`
	Evidence      []Evidence `json:"evidence,omitempty"` // Passages consulted, best first
}

// UnitResult is the verdict for one claim unit together with the unit text
// and its position in the input.
type UnitResult struct {
	Index   int     `json:"index"` // 0-based position in input order
	Text    string  `json:"text"`
	Verdict Verdict `json:"verdict"`
}

// Outcome is the aggregated validation result for an entire input.
// Passed is the logical AND across all units.
type Outcome struct {
	Topic        string       `json:"topic"`
	Granularity  Granularity  `json:"granularity"`
	Passed       bool         `json:"passed"`
	Units        []UnitResult `json:"units"`
	FailingUnits []UnitResult `json:"failing_units,omitempty"`
}

// SupportedText joins the supported units back into a text, the
// programmatic fix a caller can substitute for a failed candidate.
func (o *Outcome) SupportedText() string {
	var parts []string
	for _, u := range o.Units {
		if u.Verdict.Supported {
			parts = append(parts, u.Text)
		}
	}
	return strings.Join(parts, " ")
}

// FailureSummary renders a human-readable list of unsupported units.
func (o *Outcome) FailureSummary() string {
	if o.Passed {
		return ""
	}
	var b strings.Builder
	b.WriteString("the following claims are not supported by the reference article:\n")
	for _, u := range o.FailingUnits {
		b.WriteString("- ")
		b.WriteString(u.Text)
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}
