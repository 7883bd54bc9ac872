// Package extract scans document text against the citation rule table and
// groups the raw matches by canonical identity.
package extract

import (
	"fmt"
	"sort"

	"github.com/coolbeans/statutemap/pkg/citation"
)

// Matcher scans text against every rule in a registry.
type Matcher struct {
	registry *citation.Registry

	// suppressContained drops Section_Only matches whose span is fully
	// contained in a match of another type. Off by default.
	suppressContained bool
}

// MatcherOption configures a Matcher.
type MatcherOption func(*Matcher)

// WithContainedSectionSuppression drops Section_Only matches whose span is
// fully contained in a match of another type. The default is the
// permissive behavior: a section symbol inside a full USC citation is
// reported both as part of the USC match and as a standalone Section_Only
// match.
func WithContainedSectionSuppression() MatcherOption {
	return func(m *Matcher) {
		m.suppressContained = true
	}
}

// NewMatcher creates a matcher over the given rule registry.
func NewMatcher(registry *citation.Registry, opts ...MatcherOption) *Matcher {
	m := &Matcher{registry: registry}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Registry returns the matcher's rule registry.
func (m *Matcher) Registry() *citation.Registry {
	return m.registry
}

// FindReferences scans the full text with every registered rule and
// returns one RawMatch per hit. Each rule is scanned independently with
// standard leftmost non-overlapping semantics; matches of different rules
// may overlap. The result preserves discovery order: rule order first,
// then position within a rule.
func (m *Matcher) FindReferences(text string) ([]citation.RawMatch, error) {
	var matches []citation.RawMatch

	for _, rule := range m.registry.Rules() {
		re, err := rule.Regexp()
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", rule.Type, err)
		}

		for _, matchIndices := range re.FindAllStringSubmatchIndex(text, -1) {
			groups := make([]string, 0, re.NumSubexp())
			for g := 1; g <= re.NumSubexp(); g++ {
				if matchIndices[2*g] == -1 {
					groups = append(groups, "")
					continue
				}
				groups = append(groups, text[matchIndices[2*g]:matchIndices[2*g+1]])
			}

			matches = append(matches, citation.RawMatch{
				Type:   rule.Type,
				Text:   text[matchIndices[0]:matchIndices[1]],
				Groups: groups,
				Start:  matchIndices[0],
				End:    matchIndices[1],
			})
		}
	}

	if m.suppressContained {
		matches = suppressContainedSections(matches)
	}
	return matches, nil
}

// suppressContainedSections removes Section_Only matches fully contained
// in the span of a match of any other type.
func suppressContainedSections(matches []citation.RawMatch) []citation.RawMatch {
	var others []citation.RawMatch
	for _, m := range matches {
		if m.Type != citation.TypeSectionOnly {
			others = append(others, m)
		}
	}

	kept := make([]citation.RawMatch, 0, len(matches))
	for _, m := range matches {
		if m.Type == citation.TypeSectionOnly && isContained(m, others) {
			continue
		}
		kept = append(kept, m)
	}
	return kept
}

// isContained reports whether the match's span lies inside one of the
// given spans.
func isContained(m citation.RawMatch, others []citation.RawMatch) bool {
	for _, other := range others {
		if other.Start <= m.Start && m.End <= other.End {
			return true
		}
	}
	return false
}

// SortByPosition orders matches by ascending start offset, interleaving
// matches from different rules by document position. Ties are broken by
// rule-discovery order, which sort stability preserves.
func SortByPosition(matches []citation.RawMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Start < matches[j].Start
	})
}
