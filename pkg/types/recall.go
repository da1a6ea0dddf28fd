package types

// ContextQuery is the input to one recall request.
type ContextQuery struct {
	// ContextTags describe what the user is currently working on.
	// Lowercase by convention; the engine lowercases defensively.
	ContextTags []string `json:"tags"`

	// Description is an optional free-text project description.
	Description string `json:"description,omitempty"`

	// Query is an optional free-text search phrase. The engine truncates
	// it to a bounded length before matching.
	Query string `json:"query,omitempty"`
}

// RecallMatch is one scored, annotated item in a recall result. Fields are
// denormalized from the source ArchiveItem for presentation.
type RecallMatch struct {
	ArchiveItemID  string   `json:"archiveItemId"`
	Title          string   `json:"title"`
	Summary        string   `json:"summary"`
	URL            string   `json:"url,omitempty"`
	Source         Source   `json:"source"`
	Tags           []string `json:"tags"`
	MatchReason    string   `json:"matchReason"`
	RelevanceScore float64  `json:"relevanceScore"` // in [0, 1]
}

// Validate checks the per-match invariants.
func (m *RecallMatch) Validate() error {
	if m.ArchiveItemID == "" {
		return ErrMissingItemID
	}
	if m.RelevanceScore < 0 || m.RelevanceScore > 1 {
		return ErrInvalidRelevanceScore
	}
	return nil
}

// RecallResult is the engine's answer to one recall request. Matches are
// ordered by RelevanceScore descending and contain each item at most once.
type RecallResult struct {
	Matches     []RecallMatch `json:"matches"`
	Explanation string        `json:"explanation"`
	Timestamp   int64         `json:"timestamp"` // epoch ms at recall time
}
