package extract

import (
	"fmt"

	"github.com/coolbeans/statutemap/pkg/citation"
)

// UniqueSet maps each citation type to its distinct canonical identities
// and their total occurrence counts.
type UniqueSet map[string]map[string]int

// Canonicalize converts a raw match into its (type, canonical identity)
// pair using the match's rule from the registry. Two matches denote the
// same citation iff both components are exactly equal; there is no fuzzy
// matching and no case folding beyond what the pattern constrains.
func Canonicalize(registry *citation.Registry, match citation.RawMatch) (string, string, error) {
	rule, ok := registry.Get(match.Type)
	if !ok {
		return "", "", fmt.Errorf("no rule registered for type %q", match.Type)
	}

	typeLabel, canonicalID := match.Canonical(rule)
	if canonicalID == "" {
		return "", "", fmt.Errorf("match %q of type %q produced an empty canonical identity", match.Text, match.Type)
	}
	return typeLabel, canonicalID, nil
}

// UniqueReferences groups raw matches by canonical identity and returns,
// per type, the distinct identities with their occurrence counts.
func UniqueReferences(registry *citation.Registry, matches []citation.RawMatch) (UniqueSet, error) {
	unique := make(UniqueSet)
	for _, match := range matches {
		typeLabel, canonicalID, err := Canonicalize(registry, match)
		if err != nil {
			return nil, err
		}
		if unique[typeLabel] == nil {
			unique[typeLabel] = make(map[string]int)
		}
		unique[typeLabel][canonicalID]++
	}
	return unique, nil
}

// CountMatches returns per-type raw match counts.
func CountMatches(matches []citation.RawMatch) map[string]int {
	counts := make(map[string]int)
	for _, match := range matches {
		counts[match.Type]++
	}
	return counts
}
