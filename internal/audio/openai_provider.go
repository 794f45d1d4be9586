package audio

import (
	"context"
	"errors"
	"fmt"
	"io"

	"codeberg.org/snonux/lexiforge/internal/ai"
	"codeberg.org/snonux/lexiforge/internal/apierr"
	"codeberg.org/snonux/lexiforge/internal/language"
	"codeberg.org/snonux/lexiforge/internal/logging"
	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Provider interface for OpenAI TTS
type OpenAIProvider struct {
	client *openai.Client
	config *Config
}

// NewOpenAIProvider creates a new OpenAI TTS provider
func NewOpenAIProvider(config *Config) (*OpenAIProvider, error) {
	if err := ai.ValidateAPIKey(ProviderOpenAI, config.OpenAIKey); err != nil {
		return nil, err
	}

	clientCfg := openai.DefaultConfig(config.OpenAIKey)
	if config.OpenAIBaseURL != "" {
		clientCfg.BaseURL = config.OpenAIBaseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientCfg),
		config: config,
	}, nil
}

// Synthesize generates MP3 audio using OpenAI TTS
func (p *OpenAIProvider) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	l, voice, err := resolveVoice(lang, ProviderOpenAI, func(v language.Voices) string { return v.OpenAIVoice })
	if err != nil {
		return nil, err
	}
	if p.config.OpenAIVoice != "" {
		voice = p.config.OpenAIVoice
	}

	text = preprocessText(text)
	if err := ValidateText(text, 0); err != nil {
		return nil, err
	}

	req := openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(p.config.OpenAIModel),
		Input:          text,
		Voice:          openai.SpeechVoice(voice),
		Speed:          p.config.OpenAISpeed,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	}
	if supportsInstructions(p.config.OpenAIModel) {
		req.Instructions = instructionFor(l)
	}

	logging.NewLogger(ctx).
		WithField("model", p.config.OpenAIModel).
		WithField("voice", voice).
		Debugf("openai tts input %q (%s)", text, l.Code)

	response, err := p.client.CreateSpeech(ctx, req)
	if err != nil {
		return nil, ai.ClassifyError(ProviderOpenAI, err)
	}
	defer response.Close()

	data, err := io.ReadAll(response)
	if err != nil {
		return nil, &apierr.RequestError{Provider: ProviderOpenAI, Err: err}
	}
	if len(data) == 0 {
		return nil, &apierr.RequestError{Provider: ProviderOpenAI, Err: errors.New("no audio data received from OpenAI")}
	}
	return data, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return ProviderOpenAI
}

// CacheKey includes every setting that changes the rendered audio
func (p *OpenAIProvider) CacheKey() string {
	return fmt.Sprintf("%s|%s|%s|%.2f|%t", ProviderOpenAI,
		p.config.OpenAIModel, p.config.OpenAIVoice, p.config.OpenAISpeed, supportsInstructions(p.config.OpenAIModel))
}

// IsAvailable checks that a key is configured; a test call would cost credits
func (p *OpenAIProvider) IsAvailable() error {
	if p.config.OpenAIKey == "" {
		return fmt.Errorf("OpenAI API key not configured")
	}
	return nil
}

func supportsInstructions(model string) bool {
	return model == "gpt-4o-mini-tts" || model == "gpt-4o-mini-audio-preview"
}

func instructionFor(l language.Language) string {
	return fmt.Sprintf("You are speaking %s. Pronounce the text with authentic %s phonetics. Speak slowly and clearly for language learners.",
		l.Name, l.Name)
}
