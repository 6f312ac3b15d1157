// Package policy implements the write-authorization core of the gateway:
// extraction of allow patterns from instruction documents, composition of
// layered rule sets, and the gate every mutating tool call must pass.
package policy

import (
	"fmt"
	"regexp"
	"strings"
)

// RuleSet is an ordered collection of allow patterns. Order is insertion
// order and matters only for display; matching is an OR across all patterns.
// Patterns are compiled once, when added.
type RuleSet struct {
	patterns []string
	compiled []*regexp.Regexp
}

// NewRuleSet creates a rule set from the given patterns, in order.
func NewRuleSet(patterns ...string) *RuleSet {
	rs := &RuleSet{}
	for _, p := range patterns {
		rs.add(p)
	}
	return rs
}

func (rs *RuleSet) add(pattern string) {
	rs.patterns = append(rs.patterns, pattern)
	rs.compiled = append(rs.compiled, compilePattern(pattern))
}

// Patterns returns a copy of the allow patterns in insertion order.
func (rs *RuleSet) Patterns() []string {
	if rs == nil {
		return nil
	}
	out := make([]string, len(rs.patterns))
	copy(out, rs.patterns)
	return out
}

// Len returns the number of patterns in the set.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.patterns)
}

// Allows reports whether identifier matches at least one pattern in the set.
// Short-circuits on the first match. A nil or empty set allows nothing.
func (rs *RuleSet) Allows(identifier string) bool {
	if rs == nil || identifier == "" {
		return false
	}
	for _, re := range rs.compiled {
		if re.MatchString(identifier) {
			return true
		}
	}
	return false
}

// Merge composes two rule sets into one: every base pattern in its original
// order, followed by override patterns not already present. Deduplication is
// exact, case-sensitive string equality. The result is always a superset of
// base; overrides can only add patterns, never remove them.
func Merge(base, override *RuleSet) *RuleSet {
	merged := &RuleSet{}
	seen := make(map[string]bool, base.Len()+override.Len())
	for _, p := range base.Patterns() {
		if seen[p] {
			continue
		}
		seen[p] = true
		merged.add(p)
	}
	for _, p := range override.Patterns() {
		if seen[p] {
			continue
		}
		seen[p] = true
		merged.add(p)
	}
	return merged
}

// Decision is the outcome of a write-authorization check.
type Decision struct {
	Allowed         bool
	Identifier      string
	AllowedPatterns []string
}

// Authorize gates a write to identifier against the effective policy.
// The returned decision always carries the full pattern list so a denial
// can tell the caller exactly which targets are permitted.
func Authorize(identifier string, policy *RuleSet) Decision {
	return Decision{
		Allowed:         policy.Allows(identifier),
		Identifier:      identifier,
		AllowedPatterns: policy.Patterns(),
	}
}

// DenialMessage renders a denied decision for the caller. It names the
// permitted patterns and deliberately does not claim the identifier is
// invalid — only that it is not a permitted write target.
func (d Decision) DenialMessage() string {
	if len(d.AllowedPatterns) == 0 {
		return fmt.Sprintf("write to %q is not permitted; no datapoints are designated for AI manipulation", d.Identifier)
	}
	return fmt.Sprintf("write to %q is not permitted; allowed patterns: [%s]",
		d.Identifier, strings.Join(d.AllowedPatterns, ", "))
}
