package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"

	"codeberg.org/snonux/lexiforge/internal/apierr"
	"codeberg.org/snonux/lexiforge/internal/language"
)

// ESpeakConfig holds configuration for espeak-ng audio generation
type ESpeakConfig struct {
	Binary    string // espeak-ng executable
	FFmpeg    string // ffmpeg executable used for WAV to MP3 conversion
	Variant   string // Voice variant appended to the language voice, e.g. "m1" or "f2"
	Speed     int    // Speech speed in words per minute (default: 150)
	Pitch     int    // Pitch adjustment, 0 to 99 (default: 50)
	Amplitude int    // Volume/amplitude, 0 to 200 (default: 100)
	WordGap   int    // Gap between words in 10ms units (default: 0)
}

// DefaultESpeakConfig returns the default espeak-ng configuration
func DefaultESpeakConfig() *ESpeakConfig {
	return &ESpeakConfig{
		Binary:    "espeak-ng",
		FFmpeg:    "ffmpeg",
		Speed:     150,
		Pitch:     50,
		Amplitude: 100,
	}
}

// ESpeakProvider implements Provider on the local espeak-ng engine
type ESpeakProvider struct {
	config *ESpeakConfig
}

// NewESpeakProvider creates a new espeak-ng provider
func NewESpeakProvider(config *ESpeakConfig) *ESpeakProvider {
	if config == nil {
		config = DefaultESpeakConfig()
	}
	if config.Binary == "" {
		config.Binary = "espeak-ng"
	}
	if config.FFmpeg == "" {
		config.FFmpeg = "ffmpeg"
	}
	return &ESpeakProvider{config: config}
}

// Synthesize renders text with espeak-ng and converts it to MP3
func (p *ESpeakProvider) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	_, voice, err := resolveVoice(lang, ProviderESpeak, func(v language.Voices) string { return v.ESpeak })
	if err != nil {
		return nil, err
	}

	text = preprocessText(text)
	if err := ValidateText(text, 0); err != nil {
		return nil, err
	}

	wav, err := p.run(ctx, p.config.Binary, p.args(voice, text), nil)
	if err != nil {
		return nil, &apierr.RequestError{Provider: ProviderESpeak, Err: fmt.Errorf("espeak-ng failed: %w", err)}
	}
	if len(wav) == 0 {
		return nil, &apierr.RequestError{Provider: ProviderESpeak, Err: errors.New("espeak-ng produced no audio")}
	}

	mp3, err := p.run(ctx, p.config.FFmpeg,
		[]string{"-hide_banner", "-loglevel", "error", "-f", "wav", "-i", "pipe:0", "-f", "mp3", "pipe:1"}, wav)
	if err != nil {
		return nil, &apierr.RequestError{Provider: ProviderESpeak, Err: fmt.Errorf("ffmpeg conversion failed: %w", err)}
	}
	return mp3, nil
}

func (p *ESpeakProvider) args(voice, text string) []string {
	if p.config.Variant != "" {
		voice += "+" + p.config.Variant
	}

	args := []string{
		"-v", voice,
		"-s", fmt.Sprintf("%d", p.config.Speed),
		"-p", fmt.Sprintf("%d", p.config.Pitch),
		"-a", fmt.Sprintf("%d", p.config.Amplitude),
	}
	if p.config.WordGap > 0 {
		args = append(args, "-g", fmt.Sprintf("%d", p.config.WordGap))
	}
	return append(args, "--stdout", text)
}

func (p *ESpeakProvider) run(ctx context.Context, bin string, args []string, stdin []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w\nOutput: %s", err, stderr.String())
	}
	return stdout.Bytes(), nil
}

// Name returns the provider name
func (p *ESpeakProvider) Name() string {
	return "espeak-ng"
}

// CacheKey includes the voice variant and prosody settings
func (p *ESpeakProvider) CacheKey() string {
	c := p.config
	return fmt.Sprintf("espeak-ng|%s|%d|%d|%d|%d", c.Variant, c.Speed, c.Pitch, c.Amplitude, c.WordGap)
}

// IsAvailable checks that espeak-ng and ffmpeg are installed
func (p *ESpeakProvider) IsAvailable() error {
	if _, err := exec.LookPath(p.config.Binary); err != nil {
		return fmt.Errorf("espeak-ng is not installed or not in PATH: %w", err)
	}
	if _, err := exec.LookPath(p.config.FFmpeg); err != nil {
		return fmt.Errorf("ffmpeg is not installed or not in PATH: %w", err)
	}
	return nil
}

// SetSpeed updates the speech speed
func (p *ESpeakProvider) SetSpeed(speed int) {
	if speed < 80 {
		speed = 80
	} else if speed > 450 {
		speed = 450
	}
	p.config.Speed = speed
}

// SetPitch updates the pitch (0-99, 50 is default)
func (p *ESpeakProvider) SetPitch(pitch int) {
	if pitch < 0 {
		pitch = 0
	} else if pitch > 99 {
		pitch = 99
	}
	p.config.Pitch = pitch
}

// ListVoices returns the espeak-ng voice of every language that has one
func ListVoices() map[string]string {
	voices := make(map[string]string)
	for _, l := range language.All() {
		if l.Voices.ESpeak != "" {
			voices[l.Code] = l.Voices.ESpeak
		}
	}
	return voices
}
