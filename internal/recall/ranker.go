package recall

import (
	"sort"

	"github.com/clewlabs/memoria/pkg/types"
)

// Ranking policy. Earlier iterations of the product truncated at 10; the
// canonical limit is 50.
const (
	// MaxMatches bounds the size of one recall result.
	MaxMatches = 50

	// MinMatches is the padding floor: below it, the ranker backfills with
	// recency-ordered archive items so the UI never shows an empty state
	// while the archive has anything at all.
	MinMatches = 5

	// PaddedScore is the fixed low score assigned to backfilled items,
	// keeping them visibly lower-confidence than genuine matches.
	PaddedScore = 0.05

	// PaddedReason is the reason string attached to backfilled items.
	PaddedReason = "Surfaced from recent archive stream"
)

// rankMatches sorts genuine matches by score descending, truncates the
// result, and pads thin result sets from the corpus. The sort is stable:
// ties keep scorer-output (corpus) order.
func rankMatches(matches []types.RecallMatch, corpus []*types.ArchiveItem) []types.RecallMatch {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].RelevanceScore > matches[j].RelevanceScore
	})

	if len(matches) > MaxMatches {
		matches = matches[:MaxMatches]
	}

	if len(matches) >= MinMatches {
		return matches
	}

	existing := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		existing[m.ArchiveItemID] = struct{}{}
	}

	recent := make([]*types.ArchiveItem, len(corpus))
	copy(recent, corpus)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Timestamp > recent[j].Timestamp
	})

	for _, item := range recent {
		if len(matches) >= MinMatches {
			break
		}
		if _, ok := existing[item.ID]; ok {
			continue
		}
		matches = append(matches, matchFromItem(item, PaddedReason, PaddedScore))
		existing[item.ID] = struct{}{}
	}

	return matches
}

// matchFromItem denormalizes an archive item into a presentable match.
func matchFromItem(item *types.ArchiveItem, reason string, score float64) types.RecallMatch {
	tags := item.Tags
	if tags == nil {
		tags = []string{}
	}
	return types.RecallMatch{
		ArchiveItemID:  item.ID,
		Title:          item.Title,
		Summary:        item.Summary,
		URL:            item.CanonicalURL(),
		Source:         item.Source,
		Tags:           tags,
		MatchReason:    reason,
		RelevanceScore: score,
	}
}
