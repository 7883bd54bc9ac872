// Package analysis builds the cross-reference map and the analysis report
// for statute citations found in a document.
package analysis

import (
	"strings"
	"unicode/utf8"

	"github.com/coolbeans/statutemap/pkg/citation"
	"github.com/coolbeans/statutemap/pkg/extract"
)

// DefaultContextRadius is the number of characters of surrounding text
// captured on each side of a match.
const DefaultContextRadius = 40

// Occurrence is one physical appearance of a citation in the source text.
type Occurrence struct {
	// Offset is the character position of the match start.
	Offset int `json:"offset"`

	// Line is the 1-based line number containing the match start.
	Line int `json:"line"`

	// MatchedText is the original surface form, which may differ across
	// occurrences of the same canonical citation.
	MatchedText string `json:"matched_text"`

	// Context is the surrounding text window with newlines flattened.
	Context string `json:"context"`
}

// CitationEntry is one unique citation with its ordered occurrence list.
type CitationEntry struct {
	Type        string       `json:"type"`
	CanonicalID string       `json:"canonical_id"`
	Count       int          `json:"count"`
	Occurrences []Occurrence `json:"occurrences"`
}

// CrossReferenceMap maps each unique citation to its occurrences.
// Entries are kept in order of first appearance in the source text;
// occurrence lists are ordered by ascending offset across all rules
// combined.
type CrossReferenceMap struct {
	entries []*CitationEntry
	index   map[string]*CitationEntry
}

// NewCrossReferenceMap creates an empty cross-reference map.
func NewCrossReferenceMap() *CrossReferenceMap {
	return &CrossReferenceMap{
		index: make(map[string]*CitationEntry),
	}
}

func entryKey(typeLabel, canonicalID string) string {
	return typeLabel + "\x00" + canonicalID
}

// Add appends an occurrence to the citation's entry, creating the entry on
// first sight.
func (x *CrossReferenceMap) Add(typeLabel, canonicalID string, occ Occurrence) {
	key := entryKey(typeLabel, canonicalID)
	entry, ok := x.index[key]
	if !ok {
		entry = &CitationEntry{
			Type:        typeLabel,
			CanonicalID: canonicalID,
		}
		x.index[key] = entry
		x.entries = append(x.entries, entry)
	}
	entry.Occurrences = append(entry.Occurrences, occ)
	entry.Count = len(entry.Occurrences)
}

// Get returns the entry for a citation, if present.
func (x *CrossReferenceMap) Get(typeLabel, canonicalID string) (*CitationEntry, bool) {
	entry, ok := x.index[entryKey(typeLabel, canonicalID)]
	return entry, ok
}

// Entries returns all entries in order of first appearance.
func (x *CrossReferenceMap) Entries() []*CitationEntry {
	entries := make([]*CitationEntry, len(x.entries))
	copy(entries, x.entries)
	return entries
}

// EntriesByType returns the entries of one citation type in order of first
// appearance.
func (x *CrossReferenceMap) EntriesByType(typeLabel string) []*CitationEntry {
	var entries []*CitationEntry
	for _, entry := range x.entries {
		if entry.Type == typeLabel {
			entries = append(entries, entry)
		}
	}
	return entries
}

// Len returns the number of unique citations in the map.
func (x *CrossReferenceMap) Len() int {
	return len(x.entries)
}

// CreateCrossReferenceMap builds the cross-reference map for the given
// matches. Occurrences are appended in ascending start-offset order across
// the whole document, interleaving matches from different rules by
// position. The context window spans from radius characters before the
// match start to radius characters after the match end, clipped to text
// boundaries, with newlines replaced by spaces.
func CreateCrossReferenceMap(registry *citation.Registry, text string, matches []citation.RawMatch, radius int) (*CrossReferenceMap, error) {
	if radius < 0 {
		radius = DefaultContextRadius
	}

	ordered := make([]citation.RawMatch, len(matches))
	copy(ordered, matches)
	extract.SortByPosition(ordered)

	xref := NewCrossReferenceMap()
	for _, match := range ordered {
		typeLabel, canonicalID, err := extract.Canonicalize(registry, match)
		if err != nil {
			return nil, err
		}

		xref.Add(typeLabel, canonicalID, Occurrence{
			Offset:      match.Start,
			Line:        lineAt(text, match.Start),
			MatchedText: match.Text,
			Context:     contextWindow(text, match.Start, match.End, radius),
		})
	}
	return xref, nil
}

// contextWindow extracts the text surrounding a match span. The radius is
// counted in runes so window edges never split a multi-byte character.
func contextWindow(text string, start, end, radius int) string {
	from := start
	for i := 0; i < radius && from > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(text[:from])
		from -= size
	}
	to := end
	for i := 0; i < radius && to < len(text); i++ {
		_, size := utf8.DecodeRuneInString(text[to:])
		to += size
	}
	return strings.ReplaceAll(text[from:to], "\n", " ")
}

// lineAt returns the 1-based line number containing the given offset.
func lineAt(text string, offset int) int {
	if offset > len(text) {
		offset = len(text)
	}
	return strings.Count(text[:offset], "\n") + 1
}
