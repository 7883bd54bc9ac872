package extract

import (
	"testing"

	"github.com/coolbeans/statutemap/pkg/citation"
)

func TestCanonicalize(t *testing.T) {
	registry := citation.DefaultRegistry()
	matcher := NewMatcher(registry)

	cases := []struct {
		name         string
		text         string
		matchType    string
		expectedType string
		expectedID   string
	}{
		{
			name:         "usc",
			text:         "42 U.S.C. § 1983",
			matchType:    citation.TypeUSC,
			expectedType: citation.TypeUSC,
			expectedID:   "42 USC 1983",
		},
		{
			name:         "cfr",
			text:         "29 CFR 1614.105",
			matchType:    citation.TypeCFR,
			expectedType: citation.TypeCFR,
			expectedID:   "29 CFR 1614.105",
		},
		{
			name:         "state_code",
			text:         "California Code § 1798.100",
			matchType:    citation.TypeStateCode,
			expectedType: citation.TypeStateCode,
			expectedID:   "California Code 1798.100",
		},
		{
			name:         "section_only",
			text:         "§ 552",
			matchType:    citation.TypeSectionOnly,
			expectedType: citation.TypeSectionOnly,
			expectedID:   "§ 552",
		},
		{
			name:         "statute_year",
			text:         "Pub. L. No. 104-191",
			matchType:    citation.TypeStatuteYear,
			expectedType: citation.TypeStatuteYear,
			expectedID:   "Pub. L. No. 104-191",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			matches, err := matcher.FindReferences(tc.text)
			if err != nil {
				t.Fatalf("FindReferences failed: %v", err)
			}

			var match *citation.RawMatch
			for i := range matches {
				if matches[i].Type == tc.matchType {
					match = &matches[i]
					break
				}
			}
			if match == nil {
				t.Fatalf("no %s match in %q", tc.matchType, tc.text)
			}

			typeLabel, canonicalID, err := Canonicalize(registry, *match)
			if err != nil {
				t.Fatalf("Canonicalize failed: %v", err)
			}
			if typeLabel != tc.expectedType {
				t.Errorf("type: got %q, want %q", typeLabel, tc.expectedType)
			}
			if canonicalID != tc.expectedID {
				t.Errorf("canonical: got %q, want %q", canonicalID, tc.expectedID)
			}
		})
	}
}

func TestCanonicalizeUnknownType(t *testing.T) {
	registry := citation.DefaultRegistry()
	_, _, err := Canonicalize(registry, citation.RawMatch{Type: "Unknown", Text: "x"})
	if err == nil {
		t.Error("expected error for match with unregistered type")
	}
}

func TestUniqueReferencesDeduplicatesFormattingVariants(t *testing.T) {
	// The same citation written with different spacing and punctuation
	// collapses to one canonical identity.
	text := "Compare 42 U.S.C. § 1983 with 42  USC  1983 and 42 U.S.C. 1983."

	registry := citation.DefaultRegistry()
	matches, err := NewMatcher(registry).FindReferences(text)
	if err != nil {
		t.Fatalf("FindReferences failed: %v", err)
	}

	unique, err := UniqueReferences(registry, matches)
	if err != nil {
		t.Fatalf("UniqueReferences failed: %v", err)
	}

	uscSet := unique[citation.TypeUSC]
	if len(uscSet) != 1 {
		t.Fatalf("expected 1 unique USC citation, got %d: %v", len(uscSet), uscSet)
	}
	if count := uscSet["42 USC 1983"]; count != 3 {
		t.Errorf("occurrence count: got %d, want 3", count)
	}
}

func TestUniqueReferencesRepeatedCitation(t *testing.T) {
	text := "Under 5 U.S.C. § 552 agencies must disclose records. See 5 U.S.C. § 552 again."

	registry := citation.DefaultRegistry()
	matches, err := NewMatcher(registry).FindReferences(text)
	if err != nil {
		t.Fatalf("FindReferences failed: %v", err)
	}

	unique, err := UniqueReferences(registry, matches)
	if err != nil {
		t.Fatalf("UniqueReferences failed: %v", err)
	}

	if count := unique[citation.TypeUSC]["5 USC 552"]; count != 2 {
		t.Errorf("USC count: got %d, want 2", count)
	}
	if count := unique[citation.TypeSectionOnly]["§ 552"]; count != 2 {
		t.Errorf("Section_Only count: got %d, want 2", count)
	}
}

func TestUniqueReferencesDistinctTypesStaySeparate(t *testing.T) {
	// Identity is (type, canonical id): the same span matched by two rules
	// yields two distinct citations.
	text := "See 42 U.S.C. § 1983 and 29 CFR 1614.105."

	registry := citation.DefaultRegistry()
	matches, err := NewMatcher(registry).FindReferences(text)
	if err != nil {
		t.Fatalf("FindReferences failed: %v", err)
	}

	unique, err := UniqueReferences(registry, matches)
	if err != nil {
		t.Fatalf("UniqueReferences failed: %v", err)
	}

	if len(unique) != 3 {
		t.Errorf("expected 3 types with matches, got %d: %v", len(unique), unique)
	}
	if count := unique[citation.TypeUSC]["42 USC 1983"]; count != 1 {
		t.Errorf("USC count: got %d, want 1", count)
	}
	if count := unique[citation.TypeCFR]["29 CFR 1614.105"]; count != 1 {
		t.Errorf("CFR count: got %d, want 1", count)
	}
	if count := unique[citation.TypeSectionOnly]["§ 1983"]; count != 1 {
		t.Errorf("Section_Only count: got %d, want 1", count)
	}
}

func TestCountMatches(t *testing.T) {
	matches := []citation.RawMatch{
		{Type: citation.TypeUSC},
		{Type: citation.TypeUSC},
		{Type: citation.TypeCFR},
	}

	counts := CountMatches(matches)
	if counts[citation.TypeUSC] != 2 || counts[citation.TypeCFR] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
}
