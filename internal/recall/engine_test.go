package recall

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clewlabs/memoria/pkg/types"
)

func newTestEngine(items []*types.ArchiveItem) *Engine {
	clock := func() time.Time { return testNow }
	fetch := func(ctx context.Context, userID string, limit int) ([]*types.ArchiveItem, error) {
		return items, nil
	}
	cache := NewSnapshotCache(fetch, CacheConfig{Clock: clock}, nil)
	return NewEngine(cache, clock, nil)
}

func TestRecallEmptyArchive(t *testing.T) {
	engine := newTestEngine(nil)

	result, err := engine.Recall(context.Background(), Request{
		UserID:       "u1",
		ContextQuery: types.ContextQuery{ContextTags: []string{"go"}},
	})
	require.NoError(t, err)

	assert.Empty(t, result.Matches)
	assert.Equal(t, "No relevant items found in archive for this context.", result.Explanation)
	assert.Equal(t, testNow.UnixMilli(), result.Timestamp)
}

func TestRecallTagScenario(t *testing.T) {
	// One item shares context tags, the other is unrelated.
	archive := []*types.ArchiveItem{
		item("react-item", []string{"react", "javascript", "hooks"}),
		item("python-item", []string{"python", "ml"}),
	}
	engine := newTestEngine(archive)

	result, err := engine.Recall(context.Background(), Request{
		UserID:       "u1",
		ContextQuery: types.ContextQuery{ContextTags: []string{"react", "javascript"}},
	})
	require.NoError(t, err)

	require.NotEmpty(t, result.Matches)
	top := result.Matches[0]
	assert.Equal(t, "react-item", top.ArchiveItemID)
	assert.Greater(t, top.RelevanceScore, ScoreThreshold)
	assert.True(t,
		strings.Contains(strings.ToLower(top.MatchReason), "react") ||
			strings.Contains(strings.ToLower(top.MatchReason), "javascript"),
		"reason %q should mention a matched tag", top.MatchReason)

	// The unrelated item only appears as low-confidence padding.
	for _, m := range result.Matches[1:] {
		assert.Equal(t, PaddedReason, m.MatchReason)
		assert.Equal(t, PaddedScore, m.RelevanceScore)
	}
}

func TestRecallOverlapRanking(t *testing.T) {
	archive := []*types.ArchiveItem{
		item("b", []string{"react"}),
		item("a", []string{"react", "typescript", "nodejs"}),
	}
	engine := newTestEngine(archive)

	result, err := engine.Recall(context.Background(), Request{
		UserID:       "u1",
		ContextQuery: types.ContextQuery{ContextTags: []string{"react", "typescript", "nodejs"}},
	})
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(result.Matches), 2)
	assert.Equal(t, "a", result.Matches[0].ArchiveItemID)
	assert.Equal(t, "b", result.Matches[1].ArchiveItemID)
	assert.Greater(t, result.Matches[0].RelevanceScore, result.Matches[1].RelevanceScore)
}

func TestRecallQueryScenario(t *testing.T) {
	archive := []*types.ArchiveItem{
		item("generics-item", []string{"programming"},
			withSummary("A practical guide to generics in modern languages")),
	}
	engine := newTestEngine(archive)

	result, err := engine.Recall(context.Background(), Request{
		UserID:       "u1",
		ContextQuery: types.ContextQuery{Query: "generics"},
	})
	require.NoError(t, err)

	require.NotEmpty(t, result.Matches)
	top := result.Matches[0]
	assert.Equal(t, "generics-item", top.ArchiveItemID)
	assert.Equal(t, "Contains keyword 'generics' in summary", top.MatchReason)
	assert.Greater(t, top.RelevanceScore, ScoreThreshold)
}

func TestRecallScoreBoundsAndThreshold(t *testing.T) {
	archive := []*types.ArchiveItem{
		item("everything", []string{"go", "sqlite"},
			withSummary("go sqlite generics caching strategies distributed performance"),
			withTools("go"),
			withTimestamp(testNow.Add(-time.Hour).UnixMilli())),
		item("partial", []string{"go"}),
		item("nothing", []string{"cooking"}),
	}
	engine := newTestEngine(archive)

	result, err := engine.Recall(context.Background(), Request{
		UserID: "u1",
		ContextQuery: types.ContextQuery{
			ContextTags: []string{"go", "sqlite"},
			Description: "caching strategies distributed performance",
			Query:       "generics",
		},
	})
	require.NoError(t, err)

	for _, m := range result.Matches {
		assert.GreaterOrEqual(t, m.RelevanceScore, 0.0)
		assert.LessOrEqual(t, m.RelevanceScore, 1.0)
		if m.MatchReason != PaddedReason {
			assert.Greater(t, m.RelevanceScore, ScoreThreshold)
		}
	}
	for i := 1; i < len(result.Matches); i++ {
		assert.GreaterOrEqual(t,
			result.Matches[i-1].RelevanceScore, result.Matches[i].RelevanceScore)
	}
	assert.Equal(t, "everything", result.Matches[0].ArchiveItemID)
}

func TestRecallExplanationIncludesTagsAndQuery(t *testing.T) {
	archive := []*types.ArchiveItem{
		item("a", []string{"go", "sqlite"}, withSummary("embedding sqlite with migrations")),
	}
	engine := newTestEngine(archive)

	result, err := engine.Recall(context.Background(), Request{
		UserID: "u1",
		ContextQuery: types.ContextQuery{
			ContextTags: []string{"go", "sqlite"},
			Query:       "migrations",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, `Found 1 relevant items based on go, sqlite and query "migrations".`, result.Explanation)
}

func TestRecallTruncatesLongQuery(t *testing.T) {
	long := strings.Repeat("x", MaxQueryLen) + "generics"
	archive := []*types.ArchiveItem{
		item("a", nil, withSummary("all about generics")),
	}
	engine := newTestEngine(archive)

	result, err := engine.Recall(context.Background(), Request{
		UserID:       "u1",
		ContextQuery: types.ContextQuery{Query: long},
	})
	require.NoError(t, err)

	// The tail beyond the cap is dropped, so the query no longer matches.
	for _, m := range result.Matches {
		assert.Equal(t, PaddedReason, m.MatchReason)
	}
}

func TestRecallFetcherOverride(t *testing.T) {
	engine := newTestEngine([]*types.ArchiveItem{item("cached", []string{"go"})})

	called := false
	override := func(ctx context.Context, userID string, limit int) ([]*types.ArchiveItem, error) {
		called = true
		assert.Equal(t, DefaultFetchLimit, limit)
		return []*types.ArchiveItem{item("override", []string{"go"})}, nil
	}

	result, err := engine.Recall(context.Background(), Request{
		UserID:       "u1",
		ContextQuery: types.ContextQuery{ContextTags: []string{"go"}},
		Fetcher:      override,
	})
	require.NoError(t, err)
	assert.True(t, called)
	require.NotEmpty(t, result.Matches)
	assert.Equal(t, "override", result.Matches[0].ArchiveItemID)
}

func TestRecallFetchErrorPropagates(t *testing.T) {
	boom := errors.New("store unavailable")
	fetch := func(ctx context.Context, userID string, limit int) ([]*types.ArchiveItem, error) {
		return nil, boom
	}
	cache := NewSnapshotCache(fetch, CacheConfig{Clock: func() time.Time { return testNow }}, nil)
	engine := NewEngine(cache, func() time.Time { return testNow }, nil)

	_, err := engine.Recall(context.Background(), Request{UserID: "u1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}
