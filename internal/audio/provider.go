package audio

import (
	"context"
	"fmt"
	"strings"
	"time"

	"codeberg.org/snonux/lexiforge/internal/apierr"
	"codeberg.org/snonux/lexiforge/internal/language"
	"codeberg.org/snonux/lexiforge/internal/logging"
)

// Provider defines the interface for text-to-speech providers
type Provider interface {
	// Synthesize returns MP3 audio of text spoken in lang (name or code)
	Synthesize(ctx context.Context, text, lang string) ([]byte, error)

	// Name returns the provider name
	Name() string

	// IsAvailable checks if the provider is properly configured and available
	IsAvailable() error
}

const (
	ProviderGoogle = "google"
	ProviderOpenAI = "openai"
	ProviderESpeak = "espeak"
)

// Config holds common configuration for audio providers
type Config struct {
	Provider    string // "google", "openai" or "espeak"
	Fallback    string // Optional provider tried when the primary fails
	CacheDir    string
	EnableCache bool
	Timeout     time.Duration

	// Google Translate settings
	GoogleBaseURL string
	UserAgent     string

	// OpenAI-specific settings
	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string  // "tts-1", "tts-1-hd", or "gpt-4o-mini-tts"
	OpenAIVoice   string  // Overrides the per-language voice when set
	OpenAISpeed   float64 // 0.25 to 4.0

	// espeak-ng settings
	ESpeak *ESpeakConfig
}

// DefaultProviderConfig returns default configuration
func DefaultProviderConfig() *Config {
	return &Config{
		Provider:      ProviderGoogle,
		Timeout:       30 * time.Second,
		GoogleBaseURL: DefaultGoogleBaseURL,
		UserAgent:     DefaultUserAgent,
		OpenAIModel:   "gpt-4o-mini-tts",
		OpenAISpeed:   1.0,
		ESpeak:        DefaultESpeakConfig(),
	}
}

// NewProvider creates the configured provider, adding the fallback and the
// cache when requested
func NewProvider(config *Config) (Provider, error) {
	if config == nil {
		config = DefaultProviderConfig()
	}

	provider, err := newSingle(config.Provider, config)
	if err != nil {
		return nil, err
	}

	if config.Fallback != "" && !strings.EqualFold(config.Fallback, config.Provider) {
		fallback, err := newSingle(config.Fallback, config)
		if err != nil {
			return nil, fmt.Errorf("fallback provider: %w", err)
		}
		provider = NewProviderWithFallback(provider, fallback)
	}

	if config.EnableCache && config.CacheDir != "" {
		provider, err = NewCachedProvider(provider, config.CacheDir)
		if err != nil {
			return nil, err
		}
	}
	return provider, nil
}

func newSingle(name string, config *Config) (Provider, error) {
	switch strings.ToLower(name) {
	case ProviderGoogle, "":
		return NewGoogleProvider(config), nil
	case ProviderOpenAI:
		if config.OpenAIKey == "" {
			return nil, &apierr.AuthenticationError{Provider: ProviderOpenAI, Err: fmt.Errorf("OpenAI API key is required")}
		}
		return NewOpenAIProvider(config)
	case ProviderESpeak, "espeak-ng":
		p := NewESpeakProvider(config.ESpeak)
		p.SetSpeed(p.config.Speed)
		p.SetPitch(p.config.Pitch)
		return p, nil
	default:
		return nil, fmt.Errorf("unknown audio provider: %s", name)
	}
}

// resolveVoice looks lang up and picks the provider's voice from it
func resolveVoice(lang, provider string, pick func(language.Voices) string) (language.Language, string, error) {
	l, err := language.Lookup(lang)
	if err != nil {
		return language.Language{}, "", err
	}
	voice := pick(l.Voices)
	if voice == "" {
		return l, "", &apierr.UnsupportedLanguageError{
			Language: l.Name,
			Detail:   fmt.Sprintf("no %s voice", provider),
		}
	}
	return l, voice, nil
}

// ProviderWithFallback wraps a primary provider with a fallback option
type ProviderWithFallback struct {
	primary  Provider
	fallback Provider
}

// NewProviderWithFallback creates a provider that falls back to secondary if primary fails
func NewProviderWithFallback(primary, fallback Provider) Provider {
	return &ProviderWithFallback{
		primary:  primary,
		fallback: fallback,
	}
}

// Synthesize tries primary provider first, falls back to secondary on error
func (p *ProviderWithFallback) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	data, _, err := p.synthesizeFrom(ctx, text, lang)
	return data, err
}

func (p *ProviderWithFallback) synthesizeFrom(ctx context.Context, text, lang string) ([]byte, Provider, error) {
	data, err := p.primary.Synthesize(ctx, text, lang)
	if err == nil {
		return data, p.primary, nil
	}
	if ctx.Err() != nil {
		return nil, nil, err
	}

	logging.NewLogger(ctx).
		WithField("primary", p.primary.Name()).
		WithField("fallback", p.fallback.Name()).
		Warnf("primary provider failed, falling back: %v", err)

	data, fbErr := p.fallback.Synthesize(ctx, text, lang)
	if fbErr != nil {
		return nil, nil, fmt.Errorf("%s: %w (primary %s: %v)", p.fallback.Name(), fbErr, p.primary.Name(), err)
	}
	return data, p.fallback, nil
}

// CacheKey is the primary's key; fallback audio is never cached
func (p *ProviderWithFallback) CacheKey() string {
	return cacheKey(p.primary)
}

// Name returns the provider name
func (p *ProviderWithFallback) Name() string {
	return fmt.Sprintf("%s (fallback: %s)", p.primary.Name(), p.fallback.Name())
}

// IsAvailable checks if at least one provider is available
func (p *ProviderWithFallback) IsAvailable() error {
	primaryErr := p.primary.IsAvailable()
	if primaryErr == nil {
		return nil
	}

	fallbackErr := p.fallback.IsAvailable()
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("both providers unavailable: primary=%v, fallback=%v",
		primaryErr, fallbackErr)
}
