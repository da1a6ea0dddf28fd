package summarizer

import (
	"fmt"
	"os"
	"strings"
)

// Config holds provider configuration
type Config struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
}

// NewFromEnv creates a provider based on environment variables
// Priority:
// 1. MEMORIA_LLM_PROVIDER (gemini, openai)
// 2. Check for API keys: GEMINI_API_KEY, OPENAI_API_KEY
// Returns ErrNoProviderEnabled when nothing is configured; callers are
// expected to degrade to their non-LLM fallbacks.
func NewFromEnv() (Provider, error) {
	provider := os.Getenv("MEMORIA_LLM_PROVIDER")
	geminiKey := os.Getenv("GEMINI_API_KEY")
	openaiKey := os.Getenv("OPENAI_API_KEY")

	if provider != "" {
		provider = strings.ToLower(provider)
		switch provider {
		case ProviderGemini:
			return NewGeminiProvider(geminiKey, "")
		case ProviderOpenAI:
			return NewOpenAIProvider(openaiKey, "", "")
		default:
			return nil, fmt.Errorf("%w: unknown provider %s", ErrUnsupportedModel, provider)
		}
	}

	// Auto-detect based on available API keys
	if geminiKey != "" {
		return NewGeminiProvider(geminiKey, "")
	}
	if openaiKey != "" {
		return NewOpenAIProvider(openaiKey, "", "")
	}

	return nil, ErrNoProviderEnabled
}

// New creates a provider with explicit configuration
func New(cfg Config) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderGemini:
		return NewGeminiProvider(cfg.APIKey, cfg.Model)
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cfg.BaseURL, cfg.Model)
	default:
		return nil, fmt.Errorf("%w: unknown provider %s", ErrUnsupportedModel, cfg.Provider)
	}
}

// DetectProvider returns the provider that would be used based on current environment
func DetectProvider() string {
	if provider := os.Getenv("MEMORIA_LLM_PROVIDER"); provider != "" {
		return strings.ToLower(provider)
	}
	if os.Getenv("GEMINI_API_KEY") != "" {
		return ProviderGemini
	}
	if os.Getenv("OPENAI_API_KEY") != "" {
		return ProviderOpenAI
	}
	return ""
}
