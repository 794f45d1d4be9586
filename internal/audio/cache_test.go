package audio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCachedProvider(t *testing.T) {
	dir := t.TempDir()
	next := &mockProvider{name: "google", data: []byte("mp3")}

	cached, err := NewCachedProvider(next, dir)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		data, err := cached.Synthesize(context.Background(), "run", "en")
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "mp3" {
			t.Errorf("unexpected data %q", data)
		}
	}
	if next.generateCalls != 1 {
		t.Errorf("expected one provider call, got %d", next.generateCalls)
	}

	if _, err := cached.Synthesize(context.Background(), "run", "es"); err != nil {
		t.Fatal(err)
	}
	if next.generateCalls != 2 {
		t.Errorf("a different language must miss the cache, got %d calls", next.generateCalls)
	}

	count, size, err := cached.GetCacheStats()
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 || size != 6 {
		t.Errorf("stats = %d files %d bytes, want 2 files 6 bytes", count, size)
	}

	if err := cached.ClearCache(); err != nil {
		t.Fatal(err)
	}
	if _, err := cached.Synthesize(context.Background(), "run", "en"); err != nil {
		t.Fatal(err)
	}
	if next.generateCalls != 3 {
		t.Errorf("cleared cache should miss, got %d calls", next.generateCalls)
	}
}

func TestCachedProviderDoesNotCacheErrors(t *testing.T) {
	next := &mockProvider{name: "google", generateErr: context.DeadlineExceeded}
	cached, err := NewCachedProvider(next, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	_, _ = cached.Synthesize(context.Background(), "run", "en")
	_, _ = cached.Synthesize(context.Background(), "run", "en")
	if next.generateCalls != 2 {
		t.Errorf("errors must not be cached, got %d calls", next.generateCalls)
	}
}

func TestCacheFilePathStable(t *testing.T) {
	c := &CachedProvider{next: &mockProvider{name: "google"}, cacheDir: "/tmp/cache"}
	a := c.getCacheFilePath("run", "en")
	if a != c.getCacheFilePath("run", "en") {
		t.Error("cache path must be deterministic")
	}
	if a == c.getCacheFilePath("run", "es") {
		t.Error("language must be part of the cache key")
	}
}

func TestCachedProviderKeysOnVoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = fmt.Fprintf(w, "mp3-%v", req["voice"])
	}))
	defer srv.Close()

	dir := t.TempDir()
	synth := func(voice string) string {
		config := DefaultProviderConfig()
		config.OpenAIKey = "sk-test"
		config.OpenAIBaseURL = srv.URL + "/v1"
		config.OpenAIVoice = voice
		p, err := NewOpenAIProvider(config)
		if err != nil {
			t.Fatal(err)
		}
		cached, err := NewCachedProvider(p, dir)
		if err != nil {
			t.Fatal(err)
		}
		data, err := cached.Synthesize(context.Background(), "run", "en")
		if err != nil {
			t.Fatal(err)
		}
		return string(data)
	}

	if got := synth("alloy"); got != "mp3-alloy" {
		t.Errorf("alloy audio = %q", got)
	}
	if got := synth("nova"); got != "mp3-nova" {
		t.Errorf("changing the voice must miss the cache, got %q", got)
	}
}

func TestCachedProviderSkipsFallbackAudio(t *testing.T) {
	primary := &mockProvider{name: "openai", generateErr: errors.New("quota exceeded")}
	fallback := &mockProvider{name: "espeak", data: []byte("robot")}
	dir := t.TempDir()

	cached, err := NewCachedProvider(&ProviderWithFallback{primary: primary, fallback: fallback}, dir)
	if err != nil {
		t.Fatal(err)
	}
	data, err := cached.Synthesize(context.Background(), "run", "en")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "robot" {
		t.Errorf("expected fallback audio, got %q", data)
	}

	primary.generateErr = nil
	primary.data = []byte("natural")
	data, err = cached.Synthesize(context.Background(), "run", "en")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "natural" {
		t.Errorf("fallback audio must not be cached, got %q", data)
	}

	data, _ = cached.Synthesize(context.Background(), "run", "en")
	if string(data) != "natural" || primary.generateCalls != 2 {
		t.Errorf("primary audio should be cached, got %q after %d calls", data, primary.generateCalls)
	}
}

func TestESpeakCacheKeyIncludesProsody(t *testing.T) {
	slow := NewESpeakProvider(&ESpeakConfig{Speed: 100, Pitch: 50})
	fast := NewESpeakProvider(&ESpeakConfig{Speed: 200, Pitch: 50})
	if slow.CacheKey() == fast.CacheKey() {
		t.Error("speed must be part of the espeak cache key")
	}
}
