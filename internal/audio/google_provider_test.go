package audio

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"codeberg.org/snonux/lexiforge/internal/apierr"
	"codeberg.org/snonux/lexiforge/internal/language"
)

func newGoogleTestProvider(t *testing.T, handler http.HandlerFunc) (*GoogleProvider, *int32) {
	t.Helper()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	config := DefaultProviderConfig()
	config.GoogleBaseURL = srv.URL + "/translate_tts"
	return NewGoogleProvider(config), &hits
}

func TestGoogleSynthesizeEveryLanguage(t *testing.T) {
	var gotTL []string
	provider, _ := newGoogleTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotTL = append(gotTL, q.Get("tl"))

		if q.Get("client") != "tw-ob" || q.Get("ie") != "UTF-8" || q.Get("q") != "run" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		if !strings.HasPrefix(r.Header.Get("User-Agent"), "Mozilla/5.0") {
			t.Errorf("browser user agent expected, got %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte{0xFF, 0xFB, 0x90})
	})

	for _, l := range language.All() {
		data, err := provider.Synthesize(context.Background(), "run", l.Code)
		if err != nil {
			t.Errorf("%s: unexpected error %v", l.Name, err)
			continue
		}
		if len(data) != 3 {
			t.Errorf("%s: expected 3 bytes, got %d", l.Name, len(data))
		}
	}

	if len(gotTL) != len(language.All()) {
		t.Fatalf("expected one request per language, got %d", len(gotTL))
	}
	for i, l := range language.All() {
		if gotTL[i] != l.Voices.GoogleTTS {
			t.Errorf("tl = %q, want %q", gotTL[i], l.Voices.GoogleTTS)
		}
	}
}

func TestGoogleSynthesizeUnsupportedLanguage(t *testing.T) {
	provider, hits := newGoogleTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("audio"))
	})

	for _, lang := range []string{"xx", "Klingon", "Auto", ""} {
		_, err := provider.Synthesize(context.Background(), "run", lang)
		if !apierr.IsUnsupportedLanguage(err) {
			t.Errorf("%q: expected UnsupportedLanguageError, got %v", lang, err)
		}
	}
	if atomic.LoadInt32(hits) != 0 {
		t.Error("unsupported languages must not reach the endpoint")
	}
}

func TestGoogleSynthesizeErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
	}{
		{"server error", http.StatusInternalServerError, "oops", 500},
		{"blocked", http.StatusForbidden, "forbidden", 403},
		{"empty payload", http.StatusOK, "", 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, _ := newGoogleTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := provider.Synthesize(context.Background(), "run", "en")
			var reqErr *apierr.RequestError
			if !errors.As(err, &reqErr) {
				t.Fatalf("expected RequestError, got %v", err)
			}
			if reqErr.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", reqErr.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestGoogleSynthesizeRejectsLongText(t *testing.T) {
	provider, hits := newGoogleTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("audio"))
	})

	_, err := provider.Synthesize(context.Background(), strings.Repeat("a", 201), "en")
	if err == nil || !strings.Contains(err.Error(), "longer than 200") {
		t.Errorf("expected length error, got %v", err)
	}
	if atomic.LoadInt32(hits) != 0 {
		t.Error("overlong text must not be sent")
	}
}

type failingClient struct{}

func (failingClient) Do(req *http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

func TestGoogleSynthesizeNetworkError(t *testing.T) {
	provider := NewGoogleProvider(DefaultProviderConfig()).WithHTTPClient(failingClient{})

	_, err := provider.Synthesize(context.Background(), "run", "en")
	var reqErr *apierr.RequestError
	if !errors.As(err, &reqErr) || reqErr.StatusCode != 0 {
		t.Errorf("expected RequestError without status, got %v", err)
	}
}
