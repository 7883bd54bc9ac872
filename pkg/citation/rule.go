// Package citation provides the statute citation rule table: recognition
// rules, raw match records, and a registry that can be extended from YAML.
package citation

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule defines a recognition rule for one citation type. A rule is a
// regular expression plus an identity layout describing how the canonical
// identity string is assembled from the capture groups.
type Rule struct {
	// Type is the citation type label, e.g. "USC" or "CFR".
	Type string `yaml:"type" json:"type"`

	// Pattern is the regular expression source. Capture groups carry the
	// citation components referenced by Identity.
	Pattern string `yaml:"pattern" json:"pattern"`

	// Identity lists the tokens composing the canonical identity, in order.
	// A token of the form "$n" refers to capture group n; any other token
	// is a literal, e.g. ["$1", "USC", "$2"] yields "42 USC 1983".
	Identity []string `yaml:"identity" json:"identity"`

	// Compiled pattern (populated after loading)
	compiled *regexp.Regexp
}

// Compile compiles the rule's pattern. Returns an error if the pattern
// fails to compile.
func (rule *Rule) Compile() error {
	compiled, err := regexp.Compile(rule.Pattern)
	if err != nil {
		return fmt.Errorf("compiling rule %q pattern %q: %w", rule.Type, rule.Pattern, err)
	}
	rule.compiled = compiled
	return nil
}

// IsCompiled returns true if the rule has been compiled.
func (rule *Rule) IsCompiled() bool {
	return rule.compiled != nil
}

// Regexp returns the compiled pattern, compiling it on first use.
func (rule *Rule) Regexp() (*regexp.Regexp, error) {
	if rule.compiled == nil {
		if err := rule.Compile(); err != nil {
			return nil, err
		}
	}
	return rule.compiled, nil
}

// Validate checks that the rule has all required fields and that every
// group reference in Identity is within the pattern's group count.
func (rule *Rule) Validate() error {
	if rule.Type == "" {
		return fmt.Errorf("rule type is required")
	}
	if rule.Pattern == "" {
		return fmt.Errorf("rule %q: pattern is required", rule.Type)
	}
	if len(rule.Identity) == 0 {
		return fmt.Errorf("rule %q: identity layout is required", rule.Type)
	}

	compiled, err := rule.Regexp()
	if err != nil {
		return err
	}

	for _, token := range rule.Identity {
		group, ok := parseGroupRef(token)
		if !ok {
			continue
		}
		if group < 1 || group > compiled.NumSubexp() {
			return fmt.Errorf("rule %q: identity refers to group %d but pattern has %d groups",
				rule.Type, group, compiled.NumSubexp())
		}
	}
	return nil
}

// CanonicalID builds the canonical identity string from the captured
// groups. Each referenced group is trimmed and has internal whitespace
// runs collapsed to a single space; empty components are skipped; the
// resulting tokens are joined with single spaces.
func (rule *Rule) CanonicalID(groups []string) string {
	parts := make([]string, 0, len(rule.Identity))
	for _, token := range rule.Identity {
		value := token
		if group, ok := parseGroupRef(token); ok {
			if group < 1 || group > len(groups) {
				continue
			}
			value = groups[group-1]
		}
		value = collapseWhitespace(value)
		if value == "" {
			continue
		}
		parts = append(parts, value)
	}
	return strings.Join(parts, " ")
}

// parseGroupRef interprets a "$n" identity token as a capture group index.
func parseGroupRef(token string) (int, bool) {
	if len(token) < 2 || token[0] != '$' {
		return 0, false
	}
	group := 0
	for _, ch := range token[1:] {
		if ch < '0' || ch > '9' {
			return 0, false
		}
		group = group*10 + int(ch-'0')
	}
	return group, true
}

// collapseWhitespace trims a string and collapses internal whitespace runs
// to single spaces.
func collapseWhitespace(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// RawMatch is one unnormalized pattern hit: the exact matched substring,
// its captured groups, and its position in the source text.
type RawMatch struct {
	Type   string   `json:"type"`
	Text   string   `json:"text"`
	Groups []string `json:"groups"`
	Start  int      `json:"start"`
	End    int      `json:"end"`
}

// Canonical returns the (type, canonical identity) pair for the match
// under the given rule.
func (m RawMatch) Canonical(rule *Rule) (string, string) {
	return m.Type, rule.CanonicalID(m.Groups)
}
