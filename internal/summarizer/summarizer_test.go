package summarizer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider returns canned responses for Summarize tests.
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

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "bare object",
			in:   `{"summary":"x"}`,
			want: `{"summary":"x"}`,
		},
		{
			name: "json code fence",
			in:   "```json\n{\"summary\":\"x\"}\n```",
			want: `{"summary":"x"}`,
		},
		{
			name: "plain code fence",
			in:   "```\n{\"a\":1}\n```",
			want: `{"a":1}`,
		},
		{
			name: "surrounding prose",
			in:   "Here is the result:\n{\"a\":1}\nHope that helps!",
			want: `{"a":1}`,
		},
		{
			name: "no object at all",
			in:   "sorry, I cannot do that",
			want: "sorry, I cannot do that",
		},
		{
			name: "nested braces keep outermost object",
			in:   `prefix {"a":{"b":2}} suffix`,
			want: `{"a":{"b":2}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.in))
		})
	}
}

func TestSummarize(t *testing.T) {
	ctx := context.Background()

	t.Run("parses structured response", func(t *testing.T) {
		p := &fakeProvider{response: "```json\n" + `{
			"summary": "Overview of using React with Firebase.",
			"software_tools": ["React", "Firebase"],
			"topics": ["frontend", "backend-as-a-service"]
		}` + "\n```"}

		summary, err := Summarize(ctx, p, "some article text")
		require.NoError(t, err)

		assert.Equal(t, "Overview of using React with Firebase.", summary.Summary)
		assert.Equal(t, []string{"frontend", "backend-as-a-service"}, summary.Tags)
		assert.Equal(t, []string{"React", "Firebase"}, summary.DetectedTools)

		require.Len(t, p.prompts, 1)
		assert.Contains(t, p.prompts[0], "some article text")
		assert.Contains(t, p.prompts[0], "software_tools")
	})

	t.Run("empty summary gets placeholder", func(t *testing.T) {
		p := &fakeProvider{response: `{"software_tools":[],"topics":["misc"]}`}
		summary, err := Summarize(ctx, p, "content")
		require.NoError(t, err)
		assert.Equal(t, "No summary available.", summary.Summary)
	})

	t.Run("empty content rejected", func(t *testing.T) {
		_, err := Summarize(ctx, &fakeProvider{}, "   ")
		assert.ErrorIs(t, err, ErrEmptyContent)
	})

	t.Run("nil provider rejected", func(t *testing.T) {
		_, err := Summarize(ctx, nil, "content")
		assert.ErrorIs(t, err, ErrNoProviderEnabled)
	})

	t.Run("provider error wrapped", func(t *testing.T) {
		boom := errors.New("quota exceeded")
		_, err := Summarize(ctx, &fakeProvider{err: boom}, "content")
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("unparseable response", func(t *testing.T) {
		_, err := Summarize(ctx, &fakeProvider{response: "I refuse to answer in JSON"}, "content")
		assert.ErrorIs(t, err, ErrBadResponse)
	})
}

func TestRetryWithBackoff(t *testing.T) {
	fastRetry := RetryConfig{
		MaxRetries: 3,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
		Multiplier: 2.0,
	}

	t.Run("succeeds first try", func(t *testing.T) {
		calls := 0
		got, err := retryWithBackoff(context.Background(), fastRetry, func() (string, error) {
			calls++
			return "ok", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ok", got)
		assert.Equal(t, 1, calls)
	})

	t.Run("recovers after transient failures", func(t *testing.T) {
		calls := 0
		got, err := retryWithBackoff(context.Background(), fastRetry, func() (int, error) {
			calls++
			if calls < 3 {
				return 0, errors.New("transient")
			}
			return 42, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 42, got)
		assert.Equal(t, 3, calls)
	})

	t.Run("returns last error when exhausted", func(t *testing.T) {
		calls := 0
		_, err := retryWithBackoff(context.Background(), fastRetry, func() (int, error) {
			calls++
			return 0, errors.New("permanent")
		})
		require.Error(t, err)
		assert.Equal(t, fastRetry.MaxRetries, calls)
	})

	t.Run("stops on context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		_, err := retryWithBackoff(ctx, fastRetry, func() (int, error) {
			calls++
			cancel()
			return 0, errors.New("failing")
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})
}

func TestNewFromEnv(t *testing.T) {
	t.Run("nothing configured", func(t *testing.T) {
		t.Setenv("MEMORIA_LLM_PROVIDER", "")
		t.Setenv("GEMINI_API_KEY", "")
		t.Setenv("OPENAI_API_KEY", "")

		_, err := NewFromEnv()
		assert.ErrorIs(t, err, ErrNoProviderEnabled)
	})

	t.Run("unknown provider rejected", func(t *testing.T) {
		t.Setenv("MEMORIA_LLM_PROVIDER", "claude")
		_, err := NewFromEnv()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnsupportedModel)
	})

	t.Run("openai key selects openai", func(t *testing.T) {
		t.Setenv("MEMORIA_LLM_PROVIDER", "")
		t.Setenv("GEMINI_API_KEY", "")
		t.Setenv("OPENAI_API_KEY", "sk-test")

		p, err := NewFromEnv()
		require.NoError(t, err)
		defer func() { _ = p.Close() }()

		assert.Equal(t, ProviderOpenAI, p.Provider())
		assert.Equal(t, DefaultOpenAIModel, p.Model())
	})

	t.Run("detect provider honors override", func(t *testing.T) {
		t.Setenv("MEMORIA_LLM_PROVIDER", "GEMINI")
		assert.Equal(t, ProviderGemini, DetectProvider())
	})
}

func TestPromptDemandsStrictJSON(t *testing.T) {
	assert.True(t, strings.Contains(extractionPrompt, "Respond STRICTLY in JSON"))
}
