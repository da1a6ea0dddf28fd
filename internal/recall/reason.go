package recall

import (
	"fmt"
	"strings"
)

const maxReasonTags = 3

// buildReason produces the human-readable justification attached to a match.
// Comparison state (matched tags, matched tool) comes from the scorer so the
// reason always agrees with the signals that actually fired.
func buildReason(sig signal, query string) string {
	switch sig.kind {
	case matchTag:
		shown := sig.matchedTags
		if len(shown) > maxReasonTags {
			shown = shown[:maxReasonTags]
		}
		return fmt.Sprintf("Matches %d tags: %s",
			len(sig.matchedTags), strings.ToUpper(strings.Join(shown, ", ")))
	case matchKeyword:
		return fmt.Sprintf("Contains keyword '%s' in summary", query)
	case matchTool:
		return fmt.Sprintf("References detected tool: %s", sig.matchedTool)
	default:
		if len(sig.matchedTags) > 0 {
			return fmt.Sprintf("Matches tags: %s", strings.Join(sig.matchedTags, ", "))
		}
		return "Relevance inferred from context overlap"
	}
}
