package patterns

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clewlabs/memoria/internal/storage"
	"github.com/clewlabs/memoria/pkg/types"
)

// listStore serves a fixed archive slice.
type listStore struct {
	storage.Store
	items []*types.ArchiveItem
	err   error
}

func (l *listStore) ListRecentItems(ctx context.Context, userID string, limit int) ([]*types.ArchiveItem, error) {
	return l.items, l.err
}

type fakeProvider struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeProvider) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}
func (f *fakeProvider) Provider() string { return "fake" }
func (f *fakeProvider) Model() string    { return "fake-model" }
func (f *fakeProvider) Close() error     { return nil }

func archiveItem(title string, tags, tools []string) *types.ArchiveItem {
	return &types.ArchiveItem{
		ID:            title,
		Title:         title,
		Summary:       "About " + title,
		Tags:          tags,
		DetectedTools: tools,
		Source:        types.SourceManual,
		Timestamp:     1000,
	}
}

func fixedClock() time.Time {
	return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
}

func TestAnalyzeEmptyArchive(t *testing.T) {
	svc := NewService(&listStore{}, &fakeProvider{}, fixedClock, nil)

	analysis, err := svc.Analyze(context.Background(), "u1")
	require.NoError(t, err)

	assert.Empty(t, analysis.Themes)
	assert.NotEmpty(t, analysis.Gaps)
	assert.Contains(t, analysis.Summary, "Archive is empty")
}

func TestAnalyzeWithProvider(t *testing.T) {
	provider := &fakeProvider{response: "```json\n" + `{
		"themes": ["frontend", "state management"],
		"gaps": ["testing"],
		"recommendations": ["Learn React Testing Library"],
		"summary": "Focused on React internals."
	}` + "\n```"}

	store := &listStore{items: []*types.ArchiveItem{
		archiveItem("React hooks deep dive", []string{"react", "frontend"}, []string{"React"}),
	}}
	svc := NewService(store, provider, fixedClock, nil)

	analysis, err := svc.Analyze(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, []string{"frontend", "state management"}, analysis.Themes)
	assert.Equal(t, []string{"testing"}, analysis.Gaps)
	assert.Equal(t, "Focused on React internals.", analysis.Summary)

	// The prompt carries the item digest.
	require.Len(t, provider.prompts, 1)
	assert.Contains(t, provider.prompts[0], "React hooks deep dive")
	assert.Contains(t, provider.prompts[0], "react, frontend")
}

func TestAnalyzeNoProviderFallsBack(t *testing.T) {
	store := &listStore{items: []*types.ArchiveItem{
		archiveItem("a", []string{"go", "sqlite"}, []string{"Docker"}),
		archiveItem("b", []string{"go", "testing"}, nil),
	}}
	svc := NewService(store, nil, fixedClock, nil)

	analysis, err := svc.Analyze(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, []string{"go", "sqlite", "Docker", "testing"}, analysis.Themes)
	assert.Contains(t, analysis.Summary, "requires an LLM provider")
}

func TestAnalyzeProviderErrorFallsBack(t *testing.T) {
	store := &listStore{items: []*types.ArchiveItem{
		archiveItem("a", []string{"go"}, nil),
	}}
	provider := &fakeProvider{err: errors.New("quota exceeded")}
	svc := NewService(store, provider, fixedClock, nil)

	analysis, err := svc.Analyze(context.Background(), "u1")
	require.NoError(t, err, "provider failure must degrade, not error")

	assert.Equal(t, []string{"go"}, analysis.Themes)
	assert.Contains(t, analysis.Summary, "analysis failed")
}

func TestAnalyzeFallbackCapsThemes(t *testing.T) {
	store := &listStore{items: []*types.ArchiveItem{
		archiveItem("a", []string{"t1", "t2", "t3", "t4", "t5", "t6", "t7"}, nil),
	}}
	svc := NewService(store, nil, fixedClock, nil)

	analysis, err := svc.Analyze(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, analysis.Themes, 5)
}

func TestAnalyzeStoreErrorPropagates(t *testing.T) {
	boom := errors.New("db locked")
	svc := NewService(&listStore{err: boom}, nil, fixedClock, nil)

	_, err := svc.Analyze(context.Background(), "u1")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestParseAnalysisMalformed(t *testing.T) {
	analysis := parseAnalysis("not json at all")
	assert.NotNil(t, analysis.Themes)
	assert.Empty(t, analysis.Themes)
	assert.NotNil(t, analysis.Gaps)
	assert.NotNil(t, analysis.Recommendations)
}

func TestParseAnalysisFillsNilSlices(t *testing.T) {
	analysis := parseAnalysis(`{"summary":"only a summary"}`)
	assert.NotNil(t, analysis.Themes)
	assert.NotNil(t, analysis.Gaps)
	assert.NotNil(t, analysis.Recommendations)
	assert.Equal(t, "only a summary", analysis.Summary)
}
