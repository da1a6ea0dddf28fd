// Package patterns analyzes a user's research history: recurring themes,
// gaps, and recommended next steps. It is a read-only consumer of the
// archive; when no LLM provider is configured it degrades to a tag-derived
// theme listing.
package patterns

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/clewlabs/memoria/internal/storage"
	"github.com/clewlabs/memoria/internal/summarizer"
	"github.com/clewlabs/memoria/pkg/types"
)

// analysisScanLimit bounds how much history one analysis reads.
const analysisScanLimit = 1000

// Analysis is the result of one pattern-analysis run.
type Analysis struct {
	Themes          []string `json:"themes"`
	Gaps            []string `json:"gaps"`
	Recommendations []string `json:"recommendations"`
	Summary         string   `json:"summary"`
}

// Service runs pattern analysis over the archive.
type Service struct {
	store    storage.Store
	provider summarizer.Provider // nil means LLM analysis is unavailable
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a pattern-analysis service. provider may be nil; a
// nil clock selects wall-clock time.
func NewService(store storage.Store, provider summarizer.Provider, clock func() time.Time, logger *slog.Logger) *Service {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, provider: provider, logger: logger, now: clock}
}

const analysisPrompt = `You are an expert technical mentor analyzing someone's research history.

Here are their captured research items:

%s

Analyze and respond ONLY in this JSON format:
{
  "themes": ["theme1", "theme2", "theme3"],
  "gaps": ["gap1", "gap2"],
  "recommendations": ["recommendation1", "recommendation2"],
  "summary": "1-2 sentence summary of their learning trajectory"
}

RULES:
- Themes: What are the 3-5 main areas they're researching?
- Gaps: What complementary skills/areas are they NOT researching?
- Recommendations: What should they learn NEXT based on patterns?
- Be specific. Reference actual technologies/patterns from their history.
- Do NOT hallucinate. Only use what's in the data.`

// Analyze computes the pattern analysis for a user. It has no side effects
// on the archive. An empty archive yields guidance text, not an error.
func (s *Service) Analyze(ctx context.Context, userID string) (*Analysis, error) {
	items, err := s.store.ListRecentItems(ctx, userID, analysisScanLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}

	if len(items) == 0 {
		s.logger.Warn("no archive items to analyze", "userId", userID)
		return &Analysis{
			Themes:          []string{},
			Gaps:            []string{"Start capturing research to get pattern analysis"},
			Recommendations: []string{"Begin with a technology or problem area you want to learn"},
			Summary:         "Archive is empty. Capture some research to unlock pattern analysis.",
		}, nil
	}

	if s.provider == nil {
		return s.fallback(items, "Pattern analysis requires an LLM provider, showing basic themes."), nil
	}

	s.logger.Debug("analyzing patterns", "userId", userID, "itemCount", len(items))

	text, err := s.provider.Complete(ctx, fmt.Sprintf(analysisPrompt, itemDigest(items)))
	if err != nil {
		s.logger.Error("pattern analysis failed", "error", err, "userId", userID)
		return s.fallback(items, "Pattern analysis failed, showing basic themes."), nil
	}

	analysis := parseAnalysis(text)
	s.logger.Info("pattern analysis complete", "userId", userID, "themes", len(analysis.Themes))
	return analysis, nil
}

// itemDigest renders the archive as compact prompt context.
func itemDigest(items []*types.ArchiveItem) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = fmt.Sprintf("Title: %s\nTags: %s\nTools: %s\nSummary: %s",
			item.Title,
			strings.Join(item.Tags, ", "),
			strings.Join(item.DetectedTools, ", "),
			item.Summary)
	}
	return strings.Join(parts, "\n---\n")
}

func parseAnalysis(text string) *Analysis {
	var parsed Analysis
	if err := json.Unmarshal([]byte(summarizer.ExtractJSON(text)), &parsed); err != nil {
		return &Analysis{Themes: []string{}, Gaps: []string{}, Recommendations: []string{}}
	}
	if parsed.Themes == nil {
		parsed.Themes = []string{}
	}
	if parsed.Gaps == nil {
		parsed.Gaps = []string{}
	}
	if parsed.Recommendations == nil {
		parsed.Recommendations = []string{}
	}
	return &parsed
}

// fallback derives themes from tags and tools when no LLM is reachable.
func (s *Service) fallback(items []*types.ArchiveItem, summary string) *Analysis {
	seen := make(map[string]struct{})
	themes := []string{}
	add := func(t string) bool {
		if _, ok := seen[t]; ok {
			return false
		}
		seen[t] = struct{}{}
		themes = append(themes, t)
		return len(themes) >= 5
	}
	for _, item := range items {
		for _, t := range item.Tags {
			if add(t) {
				return &Analysis{Themes: themes, Gaps: []string{}, Recommendations: []string{}, Summary: summary}
			}
		}
		for _, t := range item.DetectedTools {
			if add(t) {
				return &Analysis{Themes: themes, Gaps: []string{}, Recommendations: []string{}, Summary: summary}
			}
		}
	}
	return &Analysis{Themes: themes, Gaps: []string{}, Recommendations: []string{}, Summary: summary}
}
