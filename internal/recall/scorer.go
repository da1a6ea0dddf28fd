package recall

import (
	"strings"
	"time"

	"github.com/clewlabs/memoria/pkg/types"
)

// Scoring policy. All signals add into a composite clamped to [0,1];
// an item qualifies as a match only when the composite strictly exceeds
// ScoreThreshold.
const (
	tagOverlapWeight = 0.6 // Jaccard ratio of item tags vs context tags
	queryMatchWeight = 0.3 // binary: query is a substring of title+summary
	descWordBonus    = 0.1 // per description word found in title+summary
	descBonusCap     = 0.3 // at most 3 description words count
	toolMatchWeight  = 0.2 // any detected tool present in context tags
	recencyWeight    = 0.1 // item younger than the recency window

	descMinWordLen = 4 // description words must be longer than this

	// ScoreThreshold is the minimum composite score for a genuine match.
	ScoreThreshold = 0.1

	// RecencyWindow is the item age under which the recency boost applies.
	RecencyWindow = 7 * 24 * time.Hour
)

// matchKind labels which signal dominated a match, for reason generation.
type matchKind string

const (
	matchTag     matchKind = "tag"
	matchKeyword matchKind = "keyword"
	matchTool    matchKind = "tool"
	matchHybrid  matchKind = "hybrid"
)

// signal is the scorer's intermediate output for one item.
type signal struct {
	score       float64
	kind        matchKind
	matchedTags []string // item tags present in the context tag set
	matchedTool string   // first detected tool found in the context tags
}

// scoreItem computes the composite relevance of one archive item.
// ctxTags, query, and desc must already be lower-cased; now is the clock
// reading shared by the whole recall call.
func scoreItem(item *types.ArchiveItem, ctxTags []string, query, desc string, now time.Time) signal {
	sig := signal{kind: matchHybrid}

	ctxSet := make(map[string]struct{}, len(ctxTags))
	for _, t := range ctxTags {
		ctxSet[t] = struct{}{}
	}

	itemTags := lowerAll(item.Tags)
	content := strings.ToLower(item.Summary + item.Title)

	// Tag overlap: intersection over union of the two tag sets.
	var overlap []string
	for _, t := range itemTags {
		if _, ok := ctxSet[t]; ok {
			overlap = append(overlap, t)
		}
	}
	if len(overlap) > 0 {
		union := make(map[string]struct{}, len(itemTags)+len(ctxTags))
		for _, t := range itemTags {
			union[t] = struct{}{}
		}
		for _, t := range ctxTags {
			union[t] = struct{}{}
		}
		sig.score += float64(len(overlap)) / float64(len(union)) * tagOverlapWeight
		sig.matchedTags = overlap
		sig.kind = matchTag
	}

	// Free-text query: binary substring hit on title+summary.
	if query != "" && strings.Contains(content, query) {
		sig.score += queryMatchWeight
		sig.kind = matchKeyword
	}

	// Description keywords: small per-word bonus, capped.
	if desc != "" {
		bonus := 0.0
		for _, w := range strings.Fields(desc) {
			if len(w) <= descMinWordLen {
				continue
			}
			if strings.Contains(content, w) {
				bonus += descWordBonus
				if bonus >= descBonusCap {
					break
				}
			}
		}
		if bonus > 0 {
			sig.score += bonus
			sig.kind = matchHybrid
		}
	}

	// Tool match: any detected tool named in the context tags.
	for _, tool := range item.DetectedTools {
		if _, ok := ctxSet[strings.ToLower(tool)]; ok {
			sig.score += toolMatchWeight
			sig.kind = matchTool
			sig.matchedTool = strings.ToLower(tool)
			break
		}
	}

	// Recency boost. Items without a timestamp are excluded rather than
	// treated as infinitely old-or-new.
	if item.Timestamp > 0 && now.UnixMilli()-item.Timestamp < RecencyWindow.Milliseconds() {
		sig.score += recencyWeight
	}

	if sig.score > 1.0 {
		sig.score = 1.0
	}
	return sig
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
