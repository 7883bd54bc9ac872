package analysis

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/coolbeans/statutemap/pkg/citation"
	"github.com/coolbeans/statutemap/pkg/extract"
)

// Analyzer runs the full pipeline: match, canonicalize, cross-reference,
// and assemble the report.
type Analyzer struct {
	registry      *citation.Registry
	matcher       *extract.Matcher
	contextRadius int
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithContextRadius sets the context window radius in characters.
func WithContextRadius(radius int) AnalyzerOption {
	return func(a *Analyzer) {
		if radius >= 0 {
			a.contextRadius = radius
		}
	}
}

// WithContainedSectionSuppression enables dropping of Section_Only matches
// fully contained in matches of other types.
func WithContainedSectionSuppression() AnalyzerOption {
	return func(a *Analyzer) {
		a.matcher = extract.NewMatcher(a.registry, extract.WithContainedSectionSuppression())
	}
}

// NewAnalyzer creates an analyzer over the given rule registry.
func NewAnalyzer(registry *citation.Registry, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		registry:      registry,
		matcher:       extract.NewMatcher(registry),
		contextRadius: DefaultContextRadius,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// FindReferences scans the text with every registered rule.
func (a *Analyzer) FindReferences(text string) ([]citation.RawMatch, error) {
	return a.matcher.FindReferences(text)
}

// AnalysisReport aggregates the results of one analysis run. It is built
// once per run and immutable after construction.
type AnalysisReport struct {
	// Source identifies the analyzed document. Informational only.
	Source string `json:"source"`

	// TotalReferences counts all raw matches, not unique citations.
	TotalReferences int `json:"total_references"`

	// UniqueCitations counts distinct (type, canonical identity) pairs.
	UniqueCitations int `json:"unique_citations"`

	// ByType holds raw match counts per citation type.
	ByType map[string]int `json:"by_type"`

	// TypeOrder is the rule table's presentation order.
	TypeOrder []string `json:"type_order"`

	// Citations lists every unique citation with its occurrences, in
	// order of first appearance.
	Citations []*CitationEntry `json:"citations"`

	xref *CrossReferenceMap
}

// AnalyzeDocument runs the full pipeline over the text and assembles the
// report. It is total over its domain: any string, including empty, yields
// a valid report, and identical text yields bit-identical report content.
func (a *Analyzer) AnalyzeDocument(text, source string) (*AnalysisReport, error) {
	matches, err := a.matcher.FindReferences(text)
	if err != nil {
		return nil, err
	}

	xref, err := CreateCrossReferenceMap(a.registry, text, matches, a.contextRadius)
	if err != nil {
		return nil, err
	}

	return &AnalysisReport{
		Source:          source,
		TotalReferences: len(matches),
		UniqueCitations: xref.Len(),
		ByType:          extract.CountMatches(matches),
		TypeOrder:       a.registry.Labels(),
		Citations:       xref.Entries(),
		xref:            xref,
	}, nil
}

// CrossReferences returns the report's underlying cross-reference map.
func (r *AnalysisReport) CrossReferences() *CrossReferenceMap {
	return r.xref
}

// citationsOfType returns the report's entries for one type, sorted by
// descending occurrence count, then ascending canonical identity.
func (r *AnalysisReport) citationsOfType(typeLabel string) []*CitationEntry {
	var entries []*CitationEntry
	for _, entry := range r.Citations {
		if entry.Type == typeLabel {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].CanonicalID < entries[j].CanonicalID
	})
	return entries
}

// String renders the report as plain text. The layout is a stable
// contract: section headers, per-type grouping, and sort order are fixed
// so output for the same input is diffable across runs.
func (r *AnalysisReport) String() string {
	var sb strings.Builder
	rule := strings.Repeat("=", 60)

	sb.WriteString(rule + "\n")
	sb.WriteString("STATUTE CROSS-REFERENCE ANALYSIS\n")
	sb.WriteString(rule + "\n")
	sb.WriteString(fmt.Sprintf("\nSource: %s\n", r.Source))
	sb.WriteString(fmt.Sprintf("Total References Found: %d\n", r.TotalReferences))
	sb.WriteString(fmt.Sprintf("Unique Citations: %d\n", r.UniqueCitations))
	sb.WriteString("\nReferences by Type:\n")
	for _, typeLabel := range r.TypeOrder {
		if count := r.ByType[typeLabel]; count > 0 {
			sb.WriteString(fmt.Sprintf("  %s: %d\n", typeLabel, count))
		}
	}

	sb.WriteString("\n" + rule + "\n")
	sb.WriteString("UNIQUE CITATIONS\n")
	sb.WriteString(rule + "\n")
	for _, typeLabel := range r.TypeOrder {
		entries := r.citationsOfType(typeLabel)
		if len(entries) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n%s:\n", typeLabel))
		for _, entry := range entries {
			sb.WriteString(fmt.Sprintf("  • %s (%d occurrence(s))\n", entry.CanonicalID, entry.Count))
		}
	}

	sb.WriteString("\n" + rule + "\n")
	sb.WriteString("CROSS-REFERENCE MAP\n")
	sb.WriteString(rule + "\n")
	for _, typeLabel := range r.TypeOrder {
		for _, entry := range r.citationsOfType(typeLabel) {
			sb.WriteString(fmt.Sprintf("\n%s (appears %d time(s)):\n", entry.CanonicalID, entry.Count))
			for _, occ := range entry.Occurrences {
				sb.WriteString(fmt.Sprintf("  Position %d (line %d): ...%s...\n", occ.Offset, occ.Line, occ.Context))
			}
		}
	}

	return sb.String()
}

// ToJSON serializes the report to indented JSON.
func (r *AnalysisReport) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
