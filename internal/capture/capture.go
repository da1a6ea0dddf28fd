package capture

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/clewlabs/memoria/internal/storage"
	"github.com/clewlabs/memoria/internal/summarizer"
	"github.com/clewlabs/memoria/pkg/types"
)

const fetchTimeout = 10 * time.Second

// Invalidator drops a user's cached recall snapshot after a write.
type Invalidator interface {
	Invalidate(userID string)
}

// Service runs the capture pipeline.
type Service struct {
	store    storage.Store
	provider summarizer.Provider // nil means summarization is unavailable
	cache    Invalidator         // nil means no recall cache to invalidate
	client   *http.Client
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a capture service. provider and cache may be nil; a
// nil clock selects wall-clock time.
func NewService(store storage.Store, provider summarizer.Provider, cache Invalidator, clock func() time.Time, logger *slog.Logger) *Service {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    store,
		provider: provider,
		cache:    cache,
		client:   &http.Client{Timeout: fetchTimeout},
		logger:   logger,
		now:      clock,
	}
}

// Capture ingests one input (URL or raw text) and stores the resulting
// archive item. Summarization failure degrades to a fallback summary;
// only storage failure fails the capture.
func (s *Service) Capture(ctx context.Context, userID, input string) (*types.ArchiveItem, error) {
	title := "Manual Capture"
	content := input
	source := types.SourceManual
	var origin types.Origin = types.ManualOrigin{Content: input}

	s.logEvent(ctx, userID, storage.LogStatusSuccess, "Capture started")

	if isURL(input) {
		source = types.SourceURL
		origin = types.URLOrigin{URL: input}

		s.logEvent(ctx, userID, storage.LogStatusSuccess, fmt.Sprintf("Fetching URL: %s", input))
		fetchedTitle, fetchedContent, err := fetchURLContent(ctx, s.client, input)
		if err != nil {
			s.logger.Warn("failed to fetch URL content", "url", input, "error", err)
			s.logEvent(ctx, userID, storage.LogStatusFailure, fmt.Sprintf("URL fetch failed: %v", err))
			title = input
			content = fmt.Sprintf("Failed to fetch content from %s.", input)
		} else {
			title = fetchedTitle
			content = fetchedContent
			s.logEvent(ctx, userID, storage.LogStatusSuccess,
				fmt.Sprintf("Extracted content (%d chars)", len(content)))
		}
	}

	summary := s.summarize(ctx, userID, content, source == types.SourceURL)

	item := &types.ArchiveItem{
		ID:            uuid.NewString(),
		Title:         title,
		Summary:       summary.Summary,
		Tags:          summary.Tags,
		DetectedTools: summary.DetectedTools,
		Source:        source,
		Timestamp:     s.now().UnixMilli(),
		Origin:        origin,
	}
	if o, ok := origin.(types.URLOrigin); ok {
		item.URL = o.URL
	}

	if err := s.store.InsertItem(ctx, userID, item); err != nil {
		s.logEvent(ctx, userID, storage.LogStatusFailure, fmt.Sprintf("Store failed: %v", err))
		return nil, fmt.Errorf("failed to store captured item: %w", err)
	}

	if s.cache != nil {
		s.cache.Invalidate(userID)
	}

	s.logEvent(ctx, userID, storage.LogStatusSuccess, fmt.Sprintf("Stored item: %s", title))
	return item, nil
}

// summarize runs the LLM extraction, falling back to a trivial summary
// when no provider is configured or the call fails.
func (s *Service) summarize(ctx context.Context, userID, content string, fromURL bool) *summarizer.Summary {
	if s.provider != nil {
		s.logEvent(ctx, userID, storage.LogStatusSuccess,
			fmt.Sprintf("Summarizing: %s...", truncate(content, 50)))
		summary, err := summarizer.Summarize(ctx, s.provider, content)
		if err == nil {
			s.logEvent(ctx, userID, storage.LogStatusSuccess,
				fmt.Sprintf("Summary created (model: %s)", s.provider.Model()))
			s.logEvent(ctx, userID, storage.LogStatusSuccess,
				fmt.Sprintf("Tags extracted: %v", summary.Tags))
			if len(summary.DetectedTools) > 0 {
				s.logEvent(ctx, userID, storage.LogStatusSuccess,
					fmt.Sprintf("Tools detected: %v", summary.DetectedTools))
			}
			return summary
		}
		s.logger.Error("summarization failed", "error", err)
	}

	fallback := truncate(content, 100) + "..."
	if fromURL {
		fallback = "Content captured (Summarization unavailable)"
	}
	return &summarizer.Summary{
		Summary: fallback,
		Tags:    []string{"capture", "manual"},
	}
}

func (s *Service) logEvent(ctx context.Context, userID string, status storage.LogStatus, details string) {
	entry := &storage.LogEntry{
		UserID:    userID,
		Action:    storage.LogActionCapture,
		Status:    status,
		Details:   details,
		Timestamp: s.now().UnixMilli(),
	}
	if err := s.store.AppendLog(ctx, entry); err != nil {
		s.logger.Error("failed to create system log entry", "error", err)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
