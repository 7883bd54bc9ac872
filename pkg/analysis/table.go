package analysis

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// FormatTable renders a summary table of the report's unique citations.
// Column widths are computed with display widths rather than byte lengths
// since canonical identities contain the section symbol.
func (r *AnalysisReport) FormatTable() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Statute Citations: %s\n", r.Source))
	sb.WriteString(fmt.Sprintf("%d reference(s), %d unique citation(s)\n\n", r.TotalReferences, r.UniqueCitations))

	typeWidth := runewidth.StringWidth("Type")
	citationWidth := runewidth.StringWidth("Citation")
	for _, entry := range r.Citations {
		if w := runewidth.StringWidth(entry.Type); w > typeWidth {
			typeWidth = w
		}
		if w := runewidth.StringWidth(entry.CanonicalID); w > citationWidth {
			citationWidth = w
		}
	}

	divider := fmt.Sprintf("+-%s-+-%s-+-------+\n",
		strings.Repeat("-", typeWidth), strings.Repeat("-", citationWidth))

	sb.WriteString(divider)
	sb.WriteString(fmt.Sprintf("| %s | %s | Count |\n",
		runewidth.FillRight("Type", typeWidth),
		runewidth.FillRight("Citation", citationWidth)))
	sb.WriteString(divider)

	for _, typeLabel := range r.TypeOrder {
		for _, entry := range r.citationsOfType(typeLabel) {
			sb.WriteString(fmt.Sprintf("| %s | %s | %5d |\n",
				runewidth.FillRight(entry.Type, typeWidth),
				runewidth.FillRight(entry.CanonicalID, citationWidth),
				entry.Count))
		}
	}
	sb.WriteString(divider)

	return sb.String()
}
