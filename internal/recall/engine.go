package recall

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/clewlabs/memoria/pkg/types"
)

// MaxQueryLen caps the free-text query to bound per-item substring cost.
const MaxQueryLen = 100

// Request is one recall invocation: the archive owner plus the context
// being matched against.
type Request struct {
	UserID string
	types.ContextQuery

	// Fetcher overrides the snapshot cache when set, primarily so tests
	// can pin a deterministic corpus.
	Fetcher FetchFunc
}

// Engine is the recall orchestrator: it resolves the corpus, scores every
// item, ranks and pads the matches, and assembles the result. It never
// mutates the archive.
type Engine struct {
	cache  *SnapshotCache
	now    func() time.Time
	logger *slog.Logger
}

// NewEngine creates an engine over the given snapshot cache. A nil clock
// selects wall-clock time.
func NewEngine(cache *SnapshotCache, clock func() time.Time, logger *slog.Logger) *Engine {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{cache: cache, now: clock, logger: logger}
}

// Recall computes the relevance-ranked matches for the user's current
// context. Upstream fetch failures propagate unretried; retry policy
// belongs to the caller.
func (e *Engine) Recall(ctx context.Context, req Request) (*types.RecallResult, error) {
	var items []*types.ArchiveItem
	var err error
	if req.Fetcher != nil {
		items, err = req.Fetcher(ctx, req.UserID, DefaultFetchLimit)
	} else {
		items, err = e.cache.GetSnapshot(ctx, req.UserID)
	}
	if err != nil {
		return nil, err
	}

	e.logger.Info("recall with context started",
		"tags", req.ContextTags, "query", req.Query, "archiveCount", len(items))

	query := strings.TrimSpace(req.Query)
	if n := len([]rune(query)); n > MaxQueryLen {
		e.logger.Warn("query too long, trimming", "queryLength", n)
		query = string([]rune(query)[:MaxQueryLen])
	}

	matches := e.match(items, req.ContextTags, query, req.Description)

	explanation := "No relevant items found in archive for this context."
	if len(matches) > 0 {
		explanation = fmt.Sprintf("Found %d relevant items based on %s%s.",
			len(matches), strings.Join(req.ContextTags, ", "), queryClause(query))
	}

	return &types.RecallResult{
		Matches:     matches,
		Explanation: explanation,
		Timestamp:   e.now().UnixMilli(),
	}, nil
}

// match runs the scorer over the corpus and collects qualifying matches in
// ranked, padded order. Pure given (items, inputs, clock).
func (e *Engine) match(items []*types.ArchiveItem, contextTags []string, query, description string) []types.RecallMatch {
	now := e.now()
	ctxTags := lowerAll(contextTags)
	lowerQuery := strings.ToLower(query)
	lowerDesc := strings.ToLower(description)

	matches := make([]types.RecallMatch, 0, len(items))
	for _, item := range items {
		sig := scoreItem(item, ctxTags, lowerQuery, lowerDesc, now)
		if sig.score > ScoreThreshold {
			matches = append(matches, matchFromItem(item, buildReason(sig, query), sig.score))
		}
	}

	return rankMatches(matches, items)
}

func queryClause(query string) string {
	if query == "" {
		return ""
	}
	return fmt.Sprintf(" and query %q", query)
}
