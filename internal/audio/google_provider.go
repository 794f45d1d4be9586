package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"codeberg.org/snonux/lexiforge/internal/apierr"
	"codeberg.org/snonux/lexiforge/internal/language"
	"codeberg.org/snonux/lexiforge/internal/logging"
)

const (
	DefaultGoogleBaseURL = "https://translate.google.com/translate_tts"
	DefaultUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// googleMaxChars is the longest input translate_tts accepts
	googleMaxChars = 200
)

// HTTPClient is the part of *http.Client the Google provider needs
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// GoogleProvider implements Provider on the Google Translate TTS endpoint
type GoogleProvider struct {
	client    HTTPClient
	baseURL   string
	userAgent string
}

// NewGoogleProvider creates a Google Translate TTS provider
func NewGoogleProvider(config *Config) *GoogleProvider {
	p := &GoogleProvider{
		client:    &http.Client{Timeout: config.Timeout},
		baseURL:   config.GoogleBaseURL,
		userAgent: config.UserAgent,
	}
	if p.baseURL == "" {
		p.baseURL = DefaultGoogleBaseURL
	}
	if p.userAgent == "" {
		p.userAgent = DefaultUserAgent
	}
	return p
}

// WithHTTPClient replaces the HTTP client
func (p *GoogleProvider) WithHTTPClient(c HTTPClient) *GoogleProvider {
	p.client = c
	return p
}

// Synthesize downloads the MP3 for text in lang
func (p *GoogleProvider) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	l, voice, err := resolveVoice(lang, ProviderGoogle, func(v language.Voices) string { return v.GoogleTTS })
	if err != nil {
		return nil, err
	}

	text = preprocessText(text)
	if err := ValidateText(text, googleMaxChars); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("q", text)
	params.Set("tl", voice)
	params.Set("client", "tw-ob")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &apierr.RequestError{Provider: ProviderGoogle, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &apierr.RequestError{
			Provider:   ProviderGoogle,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s: %s", resp.Status, body),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apierr.RequestError{Provider: ProviderGoogle, Err: err}
	}
	if len(data) == 0 {
		return nil, &apierr.RequestError{Provider: ProviderGoogle, StatusCode: resp.StatusCode, Err: errors.New("empty audio payload")}
	}

	logging.NewLogger(ctx).WithField("lang", l.Code).Debugf("google tts: %d bytes for %q", len(data), text)
	return data, nil
}

// Name returns the provider name
func (p *GoogleProvider) Name() string {
	return ProviderGoogle
}

// IsAvailable reports configuration problems; the endpoint needs no key
func (p *GoogleProvider) IsAvailable() error {
	if _, err := url.Parse(p.baseURL); err != nil {
		return fmt.Errorf("invalid Google TTS URL: %w", err)
	}
	return nil
}
