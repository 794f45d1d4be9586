package testutil

import (
	"context"
	"fmt"
	"sync"

	"codeberg.org/snonux/lexiforge/internal/ai"
)

// MockGenerator mocks an ai.TextGenerator. Responses are returned in order;
// the last one repeats once the list is exhausted.
type MockGenerator struct {
	Responses []string
	Err       error

	mu      sync.Mutex
	Prompts []string
	Options []ai.Options
}

// Generate records the prompt and returns the next canned response
func (m *MockGenerator) Generate(ctx context.Context, prompt string, opts ai.Options) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Prompts = append(m.Prompts, prompt)
	m.Options = append(m.Options, opts)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) == 0 {
		return "", fmt.Errorf("mock generator has no responses")
	}

	i := len(m.Prompts) - 1
	if i >= len(m.Responses) {
		i = len(m.Responses) - 1
	}
	return m.Responses[i], nil
}

// Name returns the mock backend name
func (m *MockGenerator) Name() string {
	return "mock"
}

// LastPrompt returns the most recent prompt, or "" when never called
func (m *MockGenerator) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Prompts) == 0 {
		return ""
	}
	return m.Prompts[len(m.Prompts)-1]
}

// MockSpeaker mocks an audio provider
type MockSpeaker struct {
	Audio     []byte
	Err       error
	Available error
	Calls     []string
}

// Synthesize records the call and returns the canned audio
func (m *MockSpeaker) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	m.Calls = append(m.Calls, fmt.Sprintf("%s (%s)", text, lang))
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Audio == nil {
		return MP3Bytes(), nil
	}
	return m.Audio, nil
}

// Name returns the mock provider name
func (m *MockSpeaker) Name() string {
	return "mock"
}

// IsAvailable returns the configured availability error
func (m *MockSpeaker) IsAvailable() error {
	return m.Available
}

// MP3Bytes returns a minimal MP3 frame header
func MP3Bytes() []byte {
	return []byte{0xFF, 0xFB, 0x90, 0x00, 0x00, 0x00, 0x00, 0x00}
}
