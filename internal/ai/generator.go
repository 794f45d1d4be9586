package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"codeberg.org/snonux/lexiforge/internal/apierr"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	DefaultGeminiModel = "gemini-flash-latest"
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultTimeout     = 30 * time.Second
)

// TextGenerator turns a prompt into model text
type TextGenerator interface {
	// Generate sends the prompt and returns the raw text of the first candidate
	Generate(ctx context.Context, prompt string, opts Options) (string, error)

	// Name returns the backend name
	Name() string
}

// Options tune a single generation call. Zero values leave the backend default.
type Options struct {
	Temperature     float32
	TopK            float32
	TopP            float32
	MaxOutputTokens int32
}

// Config selects and configures a backend
type Config struct {
	Provider string // "gemini" or "openai"
	APIKey   string
	Model    string
	BaseURL  string        // Override for the API endpoint, used by tests and proxies
	Timeout  time.Duration // Per-attempt timeout
}

// DefaultConfig returns the default backend configuration
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Model:    DefaultGeminiModel,
		Timeout:  DefaultTimeout,
	}
}

// NewGenerator creates the backend selected by config
func NewGenerator(ctx context.Context, config *Config) (TextGenerator, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch strings.ToLower(config.Provider) {
	case ProviderGemini, "":
		return NewGeminiGenerator(ctx, config)
	case ProviderOpenAI:
		return NewOpenAIGenerator(config)
	default:
		return nil, fmt.Errorf("unknown text provider: %s", config.Provider)
	}
}

// ValidateAPIKey rejects an empty key or the unedited placeholder
func ValidateAPIKey(provider, key string) error {
	key = strings.TrimSpace(key)
	switch {
	case key == "":
		return &apierr.AuthenticationError{Provider: provider, Err: errMissingKey}
	case strings.Contains(key, "YOUR_KEY"):
		return &apierr.AuthenticationError{Provider: provider, Err: errPlaceholderKey}
	}
	return nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
