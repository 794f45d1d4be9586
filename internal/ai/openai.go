package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	"codeberg.org/snonux/lexiforge/internal/apierr"
	"github.com/sashabaranov/go-openai"
)

var (
	errMissingKey     = errors.New("API key not configured")
	errPlaceholderKey = errors.New("API key is still the placeholder value")
)

// OpenAIGenerator implements TextGenerator on the OpenAI chat completion API
type OpenAIGenerator struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAIGenerator creates an OpenAI chat backend
func NewOpenAIGenerator(config *Config) (*OpenAIGenerator, error) {
	if err := ValidateAPIKey(ProviderOpenAI, config.APIKey); err != nil {
		return nil, err
	}
	key := strings.TrimSpace(config.APIKey)

	clientCfg := openai.DefaultConfig(key)
	if config.BaseURL != "" {
		clientCfg.BaseURL = config.BaseURL
	}

	model := config.Model
	if model == "" || strings.HasPrefix(model, "gemini") {
		model = DefaultOpenAIModel
	}

	return &OpenAIGenerator{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   model,
		timeout: config.Timeout,
	}, nil
}

// Generate sends the prompt as a single user message
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   int(opts.MaxOutputTokens),
		Temperature: opts.Temperature,
		TopP:        opts.TopP,
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classify(ProviderOpenAI, err)
	}

	if len(resp.Choices) == 0 {
		return "", &apierr.ParseError{Reason: "no choices returned"}
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", &apierr.ParseError{Reason: "response contains no text"}
	}
	return text, nil
}

// Name returns the backend name
func (g *OpenAIGenerator) Name() string {
	return ProviderOpenAI
}
