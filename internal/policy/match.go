package policy

import (
	"regexp"
	"strings"
)

// Matches reports whether identifier matches a single allow pattern.
// Patterns have exactly one metacharacter: `*` matches any run of characters
// (including none). Everything else matches literally. Matching is anchored
// over the whole identifier and case-insensitive.
//
// An empty identifier or empty pattern never matches.
func Matches(identifier, pattern string) bool {
	if identifier == "" || pattern == "" {
		return false
	}
	return compilePattern(pattern).MatchString(identifier)
}

// compilePattern translates an allow pattern into an anchored,
// case-insensitive regexp. Literal segments are quoted, so characters that
// are regexp metacharacters (`[`, `(`, `.`, ...) match themselves.
func compilePattern(pattern string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("(?i)^")
	for i, segment := range strings.Split(pattern, "*") {
		if i > 0 {
			b.WriteString(".*")
		}
		b.WriteString(regexp.QuoteMeta(segment))
	}
	b.WriteString("$")
	return regexp.MustCompile(b.String())
}
