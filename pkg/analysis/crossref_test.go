package analysis

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/coolbeans/statutemap/pkg/citation"
	"github.com/coolbeans/statutemap/pkg/extract"
)

func buildMap(t *testing.T, text string, radius int) *CrossReferenceMap {
	t.Helper()
	registry := citation.DefaultRegistry()
	matches, err := extract.NewMatcher(registry).FindReferences(text)
	if err != nil {
		t.Fatalf("FindReferences failed: %v", err)
	}
	xref, err := CreateCrossReferenceMap(registry, text, matches, radius)
	if err != nil {
		t.Fatalf("CreateCrossReferenceMap failed: %v", err)
	}
	return xref
}

func TestCrossReferenceMapGroupsOccurrences(t *testing.T) {
	text := "Under 5 U.S.C. § 552 agencies must disclose records. See 5 U.S.C. § 552 again."

	xref := buildMap(t, text, DefaultContextRadius)

	entry, ok := xref.Get(citation.TypeUSC, "5 USC 552")
	if !ok {
		t.Fatal("USC citation not in map")
	}
	if entry.Count != 2 {
		t.Errorf("count: got %d, want 2", entry.Count)
	}
	if len(entry.Occurrences) != entry.Count {
		t.Errorf("count %d does not equal occurrence list length %d", entry.Count, len(entry.Occurrences))
	}

	first := entry.Occurrences[0]
	second := entry.Occurrences[1]
	if first.Offset >= second.Offset {
		t.Errorf("occurrences not in ascending offset order: %d, %d", first.Offset, second.Offset)
	}
	if first.Offset != strings.Index(text, "5 U.S.C.") {
		t.Errorf("first offset: got %d, want %d", first.Offset, strings.Index(text, "5 U.S.C."))
	}
	if first.MatchedText != "5 U.S.C. § 552" {
		t.Errorf("matched text: got %q", first.MatchedText)
	}
}

func TestCrossReferenceMapInterleavesRulesByPosition(t *testing.T) {
	// Occurrence ordering is by document position across all rules, not by
	// rule discovery order.
	text := "29 CFR 1614.105 precedes 42 U.S.C. § 1983 in this sentence."

	xref := buildMap(t, text, DefaultContextRadius)

	entries := xref.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	// Entries are in order of first appearance: CFR at 0, then USC, then
	// the bare section inside it.
	if entries[0].Type != citation.TypeCFR {
		t.Errorf("first entry: got %s, want %s", entries[0].Type, citation.TypeCFR)
	}
	if entries[1].Type != citation.TypeUSC {
		t.Errorf("second entry: got %s, want %s", entries[1].Type, citation.TypeUSC)
	}
	if entries[2].Type != citation.TypeSectionOnly {
		t.Errorf("third entry: got %s, want %s", entries[2].Type, citation.TypeSectionOnly)
	}
}

func TestCrossReferenceMapEveryEntryHasOccurrences(t *testing.T) {
	text := "See 42 U.S.C. § 1983, 29 CFR 1614.105, California Code § 1798.100, and Pub. L. No. 104-191."

	xref := buildMap(t, text, DefaultContextRadius)

	for _, entry := range xref.Entries() {
		if entry.CanonicalID == "" {
			t.Errorf("entry of type %s has empty canonical id", entry.Type)
		}
		if entry.Count < 1 {
			t.Errorf("entry %q has count %d", entry.CanonicalID, entry.Count)
		}
		if entry.Count != len(entry.Occurrences) {
			t.Errorf("entry %q count %d != %d occurrences", entry.CanonicalID, entry.Count, len(entry.Occurrences))
		}
		for i := 1; i < len(entry.Occurrences); i++ {
			if entry.Occurrences[i-1].Offset >= entry.Occurrences[i].Offset {
				t.Errorf("entry %q occurrences out of order", entry.CanonicalID)
			}
		}
	}
}

func TestContextWindow(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		start    int
		end      int
		radius   int
		expected string
	}{
		{
			name:     "window_inside_text",
			text:     "aaaa MATCH bbbb",
			start:    5,
			end:      10,
			radius:   3,
			expected: "aa MATCH bb",
		},
		{
			name:     "clipped_at_start",
			text:     "MATCH tail text here",
			start:    0,
			end:      5,
			radius:   6,
			expected: "MATCH tail ",
		},
		{
			name:     "clipped_at_end",
			text:     "head MATCH",
			start:    5,
			end:      10,
			radius:   50,
			expected: "head MATCH",
		},
		{
			name:     "newlines_flattened",
			text:     "line one\nMATCH\nline two",
			start:    9,
			end:      14,
			radius:   10,
			expected: "line one MATCH line two",
		},
		{
			name:     "multibyte_rune_before_window",
			text:     "ééé MATCH",
			start:    7,
			end:      12,
			radius:   2,
			expected: "é MATCH",
		},
		{
			name:     "multibyte_rune_after_window",
			text:     "MATCH ééé",
			start:    0,
			end:      5,
			radius:   2,
			expected: "MATCH é",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := contextWindow(tc.text, tc.start, tc.end, tc.radius)
			if got != tc.expected {
				t.Errorf("context: got %q, want %q", got, tc.expected)
			}
		})
	}
}

func TestContextWindowStaysValidUTF8(t *testing.T) {
	// Sized so the context window boundary lands inside the leading rune.
	text := "é" + strings.Repeat("y", 38) + " 42 U.S.C. § 1983"

	xref := buildMap(t, text, DefaultContextRadius)

	entry, ok := xref.Get(citation.TypeUSC, "42 USC 1983")
	if !ok {
		t.Fatal("USC citation not in map")
	}
	ctx := entry.Occurrences[0].Context
	if !utf8.ValidString(ctx) {
		t.Fatalf("context is not valid UTF-8: %q", ctx)
	}
	if !strings.HasPrefix(ctx, "é") {
		t.Errorf("context should begin on a rune boundary, got %q", ctx)
	}
}

func TestLineAt(t *testing.T) {
	text := "first line\nsecond line\nthird line"

	cases := []struct {
		offset int
		line   int
	}{
		{0, 1},
		{9, 1},
		{11, 2},
		{23, 3},
		{len(text), 3},
	}

	for _, tc := range cases {
		if got := lineAt(text, tc.offset); got != tc.line {
			t.Errorf("lineAt(%d): got %d, want %d", tc.offset, got, tc.line)
		}
	}
}

func TestCrossReferenceMapLineNumbers(t *testing.T) {
	text := "Preamble text.\nSee 42 U.S.C. § 1983 for the claim.\nAnd 29 CFR 1614.105 for the deadline."

	xref := buildMap(t, text, 10)

	uscEntry, ok := xref.Get(citation.TypeUSC, "42 USC 1983")
	if !ok {
		t.Fatal("USC citation not in map")
	}
	if uscEntry.Occurrences[0].Line != 2 {
		t.Errorf("USC line: got %d, want 2", uscEntry.Occurrences[0].Line)
	}

	cfrEntry, ok := xref.Get(citation.TypeCFR, "29 CFR 1614.105")
	if !ok {
		t.Fatal("CFR citation not in map")
	}
	if cfrEntry.Occurrences[0].Line != 3 {
		t.Errorf("CFR line: got %d, want 3", cfrEntry.Occurrences[0].Line)
	}
}

func TestCrossReferenceMapEmptyText(t *testing.T) {
	xref := buildMap(t, "", DefaultContextRadius)
	if xref.Len() != 0 {
		t.Errorf("expected empty map, got %d entries", xref.Len())
	}
	if len(xref.Entries()) != 0 {
		t.Errorf("Entries should be empty")
	}
}
