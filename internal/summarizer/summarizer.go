package summarizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Common errors
var (
	ErrNoProviderEnabled = errors.New("no LLM provider configured")
	ErrUnsupportedModel  = errors.New("unsupported provider")
	ErrEmptyContent      = errors.New("content cannot be empty")
	ErrBadResponse       = errors.New("provider returned unparseable response")
)

// Summary is the structured extraction for one captured item.
type Summary struct {
	Summary       string
	Tags          []string // high-level concept topics
	DetectedTools []string // specific software/libraries/frameworks named
}

// Provider is a minimal text-completion interface over an LLM backend.
type Provider interface {
	// Complete sends a prompt and returns the raw model text.
	Complete(ctx context.Context, prompt string) (string, error)

	// Provider returns the provider name
	Provider() string

	// Model returns the model name
	Model() string

	// Close releases any resources held by the provider
	Close() error
}

const extractionPrompt = `You are an expert technical analyst. Extract structured data from the content below.

STRICT REQUIREMENTS:
1. **software_tools**: List ALL software, libraries, frameworks, APIs, or specific tools mentioned.
   - Return clean names (e.g. "React" not "React.js", "PostgreSQL" not "Postgres").
   - If NONE are found, return [].
2. **topics**: Extract 3-5 high-level CONCEPT tags only.
   - Do NOT repeat valid tools here. Use broad terms like "database", "devops", "frontend".
3. **summary**: 1-2 sentence technical summary.

Content:
%s

Example Output:
{
  "summary": "Overview of using React with Firebase.",
  "software_tools": ["React", "Firebase"],
  "topics": ["frontend", "backend-as-a-service"]
}

Respond STRICTLY in JSON.`

// Summarize extracts a Summary from raw content via the given provider.
func Summarize(ctx context.Context, provider Provider, content string) (*Summary, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if provider == nil {
		return nil, ErrNoProviderEnabled
	}

	text, err := provider.Complete(ctx, fmt.Sprintf(extractionPrompt, content))
	if err != nil {
		return nil, fmt.Errorf("summarization failed: %w", err)
	}

	var parsed struct {
		Summary       string   `json:"summary"`
		SoftwareTools []string `json:"software_tools"`
		Topics        []string `json:"topics"`
	}
	if err := json.Unmarshal([]byte(ExtractJSON(text)), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	summary := parsed.Summary
	if summary == "" {
		summary = "No summary available."
	}
	return &Summary{
		Summary:       summary,
		Tags:          parsed.Topics,
		DetectedTools: parsed.SoftwareTools,
	}, nil
}

// ExtractJSON strips markdown code fences and surrounding prose from a
// model response, returning the first top-level JSON object found.
func ExtractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}
