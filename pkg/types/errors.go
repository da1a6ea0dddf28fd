package types

import "errors"

// Domain errors for type validation
var (
	ErrMissingItemID         = errors.New("archive item ID is required")
	ErrEmptyItem             = errors.New("archive item has no title or summary")
	ErrUnknownSource         = errors.New("unknown archive item source")
	ErrInvalidRelevanceScore = errors.New("relevance score must be between 0 and 1")
)
