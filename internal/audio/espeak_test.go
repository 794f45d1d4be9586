package audio

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"testing"

	"codeberg.org/snonux/lexiforge/internal/apierr"
)

func TestESpeakArgs(t *testing.T) {
	p := NewESpeakProvider(&ESpeakConfig{Speed: 140, Pitch: 40, Amplitude: 90, WordGap: 2, Variant: "f1"})

	got := strings.Join(p.args("es", "correr"), " ")
	want := "-v es+f1 -s 140 -p 40 -a 90 -g 2 --stdout correr"
	if got != want {
		t.Errorf("args = %q, want %q", got, want)
	}
}

func TestESpeakUnsupportedLanguage(t *testing.T) {
	p := NewESpeakProvider(nil)

	_, err := p.Synthesize(context.Background(), "วิ่ง", "th")
	if !apierr.IsUnsupportedLanguage(err) {
		t.Errorf("expected UnsupportedLanguageError for Thai, got %v", err)
	}
}

func TestESpeakMissingBinary(t *testing.T) {
	p := NewESpeakProvider(&ESpeakConfig{Binary: "/nonexistent/espeak-ng", FFmpeg: "/nonexistent/ffmpeg"})

	if err := p.IsAvailable(); err == nil {
		t.Error("expected IsAvailable error")
	}
	_, err := p.Synthesize(context.Background(), "run", "en")
	if !apierr.IsRequest(err) {
		t.Errorf("expected RequestError, got %v", err)
	}
}

func TestSetSpeedAndPitch(t *testing.T) {
	p := NewESpeakProvider(nil)

	tests := []struct {
		input int
		want  int
	}{
		{50, 80},
		{150, 150},
		{500, 450},
	}
	for _, tt := range tests {
		p.SetSpeed(tt.input)
		if p.config.Speed != tt.want {
			t.Errorf("SetSpeed(%d) = %d, want %d", tt.input, p.config.Speed, tt.want)
		}
	}

	p.SetPitch(120)
	if p.config.Pitch != 99 {
		t.Errorf("pitch not clamped: %d", p.config.Pitch)
	}
}

func TestListVoices(t *testing.T) {
	voices := ListVoices()
	if voices["es"] != "es" || voices["zh-CN"] != "cmn" {
		t.Errorf("unexpected voices: %v", voices)
	}
	if _, ok := voices["th"]; ok {
		t.Error("Thai has no espeak voice")
	}
}

func TestESpeakSynthesize_Integration(t *testing.T) {
	if os.Getenv("LEXIFORGE_INTEGRATION") == "" {
		t.Skip("set LEXIFORGE_INTEGRATION to run")
	}
	if _, err := exec.LookPath("espeak-ng"); err != nil {
		t.Skip("espeak-ng not installed")
	}
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}

	data, err := NewESpeakProvider(nil).Synthesize(context.Background(), "hello", "en")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if len(data) == 0 {
		t.Error("expected MP3 data")
	}
}
