package audio

import (
	"context"
	"errors"
	"strings"
	"testing"

	"codeberg.org/snonux/lexiforge/internal/apierr"
)

// mockProvider implements Provider interface for testing
type mockProvider struct {
	name          string
	data          []byte
	generateErr   error
	availableErr  error
	generateCalls int
}

func (m *mockProvider) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	m.generateCalls++
	if m.generateErr != nil {
		return nil, m.generateErr
	}
	return m.data, nil
}

func (m *mockProvider) Name() string {
	return m.name
}

func (m *mockProvider) IsAvailable() error {
	return m.availableErr
}

func TestDefaultProviderConfig(t *testing.T) {
	config := DefaultProviderConfig()

	if config.Provider != ProviderGoogle {
		t.Errorf("Expected provider 'google', got '%s'", config.Provider)
	}

	if config.OpenAIModel != "gpt-4o-mini-tts" {
		t.Errorf("Expected OpenAI model 'gpt-4o-mini-tts', got '%s'", config.OpenAIModel)
	}

	if config.OpenAISpeed != 1.0 {
		t.Errorf("Expected OpenAI speed 1.0, got %f", config.OpenAISpeed)
	}

	if config.ESpeak == nil || config.ESpeak.Speed != 150 {
		t.Errorf("Expected espeak defaults, got %+v", config.ESpeak)
	}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		wantErr  bool
		errMsg   string
		wantName string
	}{
		{
			name:     "nil config uses google",
			config:   nil,
			wantName: "google",
		},
		{
			name: "openai provider without key",
			config: &Config{
				Provider: "openai",
			},
			wantErr: true,
			errMsg:  "OpenAI API key is required",
		},
		{
			name: "openai provider with key",
			config: &Config{
				Provider:    "openai",
				OpenAIKey:   "sk-test",
				OpenAIModel: "tts-1",
			},
			wantName: "openai",
		},
		{
			name: "espeak provider",
			config: &Config{
				Provider: "espeak",
			},
			wantName: "espeak-ng",
		},
		{
			name: "google with espeak fallback",
			config: &Config{
				Provider: "google",
				Fallback: "espeak",
			},
			wantName: "google (fallback: espeak-ng)",
		},
		{
			name: "unknown provider",
			config: &Config{
				Provider: "unknown",
			},
			wantErr: true,
			errMsg:  "unknown audio provider: unknown",
		},
		{
			name: "unknown fallback",
			config: &Config{
				Provider: "google",
				Fallback: "polly",
			},
			wantErr: true,
			errMsg:  "fallback provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewProvider(tt.config)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error but got none")
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Expected error containing '%s', got '%s'", tt.errMsg, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if provider.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", provider.Name(), tt.wantName)
			}
		})
	}
}

func TestNewProviderWithCache(t *testing.T) {
	provider, err := NewProvider(&Config{Provider: "google", EnableCache: true, CacheDir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := provider.(*CachedProvider); !ok {
		t.Errorf("expected cached provider, got %T", provider)
	}
}

func TestProviderWithFallback(t *testing.T) {
	tests := []struct {
		name          string
		primaryErr    error
		fallbackErr   error
		wantErr       bool
		wantData      string
		primaryCalls  int
		fallbackCalls int
	}{
		{
			name:          "primary succeeds",
			wantData:      "primary",
			primaryCalls:  1,
			fallbackCalls: 0,
		},
		{
			name:          "primary fails, fallback succeeds",
			primaryErr:    &apierr.RequestError{Provider: "primary", StatusCode: 503, Err: errors.New("down")},
			wantData:      "fallback",
			primaryCalls:  1,
			fallbackCalls: 1,
		},
		{
			name:          "unsupported language falls back",
			primaryErr:    &apierr.UnsupportedLanguageError{Language: "Thai"},
			wantData:      "fallback",
			primaryCalls:  1,
			fallbackCalls: 1,
		},
		{
			name:          "both fail",
			primaryErr:    errors.New("primary failed"),
			fallbackErr:   &apierr.UnsupportedLanguageError{Language: "Thai"},
			wantErr:       true,
			primaryCalls:  1,
			fallbackCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			primary := &mockProvider{name: "primary", data: []byte("primary"), generateErr: tt.primaryErr}
			fallback := &mockProvider{name: "fallback", data: []byte("fallback"), generateErr: tt.fallbackErr}

			provider := NewProviderWithFallback(primary, fallback)
			data, err := provider.Synthesize(context.Background(), "run", "en")

			if (err != nil) != tt.wantErr {
				t.Errorf("Synthesize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && tt.fallbackErr != nil && !errors.Is(err, tt.fallbackErr) {
				t.Errorf("fallback error should be wrapped, got %v", err)
			}
			if string(data) != tt.wantData {
				t.Errorf("Synthesize() data = %q, want %q", data, tt.wantData)
			}
			if primary.generateCalls != tt.primaryCalls {
				t.Errorf("Primary calls = %d, want %d", primary.generateCalls, tt.primaryCalls)
			}
			if fallback.generateCalls != tt.fallbackCalls {
				t.Errorf("Fallback calls = %d, want %d", fallback.generateCalls, tt.fallbackCalls)
			}
		})
	}
}

func TestProviderWithFallbackIsAvailable(t *testing.T) {
	tests := []struct {
		name        string
		primaryErr  error
		fallbackErr error
		wantErr     bool
	}{
		{"both available", nil, nil, false},
		{"primary unavailable", errors.New("no"), nil, false},
		{"fallback unavailable", nil, errors.New("no"), false},
		{"both unavailable", errors.New("no"), errors.New("no"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := NewProviderWithFallback(
				&mockProvider{name: "primary", availableErr: tt.primaryErr},
				&mockProvider{name: "fallback", availableErr: tt.fallbackErr},
			)
			if err := provider.IsAvailable(); (err != nil) != tt.wantErr {
				t.Errorf("IsAvailable() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
