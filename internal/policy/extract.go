package policy

import (
	"regexp"
	"strings"
)

// Section titles that open the relevant part of an instruction document.
// Matched as case-sensitive substrings of a line.
var sectionTitles = []string{
	"Datapoint Naming Conventions",
	"Datapoint Conventions",
}

// Phrases that mark a line as granting AI write access.
// Matched case-insensitively against the whole line.
var grantPhrases = []string{
	"ai manipulation",
	"designated for ai",
}

var backtickToken = regexp.MustCompile("`([^`]+)`")

// Extract parses one instruction document into its rule set of allow
// patterns. The scan is line-oriented: a line containing a section title
// opens the relevant section, and any later heading line closes it. Inside
// the section, every backticked token containing a `*` wildcard on a line
// that grants AI access becomes an allow pattern, in order of appearance.
// Tokens without a wildcard, and tokens on lines without a grant phrase,
// are ignored.
//
// A document with no relevant section yields an empty rule set. Duplicates
// are kept; deduplication happens when rule sets are merged.
func Extract(document string) *RuleSet {
	rs := &RuleSet{}
	inSection := false

	for _, line := range strings.Split(document, "\n") {
		switch {
		case containsSectionTitle(line):
			inSection = true
		case inSection && strings.HasPrefix(line, "#"):
			// Any subsequent heading ends the section.
			inSection = false
			continue
		}
		if !inSection || !grantsAIAccess(line) {
			continue
		}
		for _, m := range backtickToken.FindAllStringSubmatch(line, -1) {
			token := m[1]
			if strings.Contains(token, "*") {
				rs.add(token)
			}
		}
	}
	return rs
}

func containsSectionTitle(line string) bool {
	for _, title := range sectionTitles {
		if strings.Contains(line, title) {
			return true
		}
	}
	return false
}

func grantsAIAccess(line string) bool {
	lower := strings.ToLower(line)
	for _, phrase := range grantPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
