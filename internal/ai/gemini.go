package ai

import (
	"context"
	"strings"
	"time"

	"codeberg.org/snonux/lexiforge/internal/apierr"
	"google.golang.org/genai"
)

// GeminiGenerator implements TextGenerator on the Gemini generateContent API
type GeminiGenerator struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiClient creates a genai client for the Gemini API backend.
// The key is never picked up implicitly from the environment.
func NewGeminiClient(ctx context.Context, config *Config) (*genai.Client, error) {
	if err := ValidateAPIKey(ProviderGemini, config.APIKey); err != nil {
		return nil, err
	}
	key := strings.TrimSpace(config.APIKey)

	clientCfg := &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  key,
	}
	if baseURL := strings.TrimSpace(config.BaseURL); baseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, classify(ProviderGemini, err)
	}
	return client, nil
}

// NewGeminiGenerator creates a Gemini backend
func NewGeminiGenerator(ctx context.Context, config *Config) (*GeminiGenerator, error) {
	client, err := NewGeminiClient(ctx, config)
	if err != nil {
		return nil, err
	}

	model := strings.TrimSpace(config.Model)
	if model == "" {
		model = DefaultGeminiModel
	}

	return &GeminiGenerator{
		client:  client,
		model:   strings.TrimPrefix(model, "models/"),
		timeout: config.Timeout,
	}, nil
}

// Generate calls generateContent and returns the candidate text
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), geminiConfig(opts))
	if err != nil {
		return "", classify(ProviderGemini, err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", &apierr.ParseError{Reason: "response contains no text"}
	}
	return text, nil
}

// Name returns the backend name
func (g *GeminiGenerator) Name() string {
	return ProviderGemini
}

// Model returns the model the generator calls
func (g *GeminiGenerator) Model() string {
	return g.model
}

func geminiConfig(opts Options) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if opts.Temperature != 0 {
		cfg.Temperature = genai.Ptr(opts.Temperature)
	}
	if opts.TopK != 0 {
		cfg.TopK = genai.Ptr(opts.TopK)
	}
	if opts.TopP != 0 {
		cfg.TopP = genai.Ptr(opts.TopP)
	}
	if opts.MaxOutputTokens != 0 {
		cfg.MaxOutputTokens = opts.MaxOutputTokens
	}
	return cfg
}
