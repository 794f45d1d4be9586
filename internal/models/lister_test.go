package models

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/lexiforge/internal/ai"
	"codeberg.org/snonux/lexiforge/internal/apierr"
)

func geminiModelsServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models") {
			http.NotFound(w, r)
			return
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"code":401,"message":"API key not valid","status":"UNAUTHENTICATED"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]any{
				{"name": "models/gemini-2.5-pro", "displayName": "Gemini 2.5 Pro", "supportedActions": []string{"generateContent"}},
				{"name": "models/gemini-flash-latest", "displayName": "Gemini Flash Latest", "supportedActions": []string{"generateContent", "countTokens"}},
				{"name": "models/embedding-001", "displayName": "Embedding 001", "supportedActions": []string{"embedContent"}},
				{"name": "models/gemini-2.5-flash-preview-tts", "displayName": "Gemini TTS", "supportedActions": []string{"generateContent"}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGeminiLister(t *testing.T) {
	srv := geminiModelsServer(t, http.StatusOK)
	l, err := NewLister(context.Background(), &ai.Config{Provider: "gemini", APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	models, err := l.List(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 4)
	assert.Equal(t, Model{Name: "gemini-2.5-pro", DisplayName: "Gemini 2.5 Pro", Kind: KindText}, models[0])
	assert.Equal(t, KindOther, models[2].Kind)
	assert.Equal(t, KindSpeech, models[3].Kind)

	assert.Equal(t, []string{"gemini-2.5-pro", "gemini-flash-latest"}, Choices(models, DefaultLimit, "gemini-flash-latest"))
}

func TestGeminiListerRejectedKey(t *testing.T) {
	srv := geminiModelsServer(t, http.StatusUnauthorized)
	l, err := NewGeminiLister(context.Background(), &ai.Config{APIKey: "bad-key", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = l.List(context.Background())
	assert.True(t, apierr.IsAuth(err), "expected AuthenticationError, got %v", err)
}

func TestListerRequiresKey(t *testing.T) {
	_, err := NewLister(context.Background(), &ai.Config{Provider: "gemini"})
	assert.True(t, apierr.IsAuth(err))

	_, err = NewLister(context.Background(), &ai.Config{Provider: "openai", APIKey: "YOUR_KEY_HERE"})
	assert.True(t, apierr.IsAuth(err))

	_, err = NewLister(context.Background(), &ai.Config{Provider: "claude", APIKey: "k"})
	assert.Error(t, err)
}

func TestOpenAILister(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[
			{"id":"gpt-4o-mini","object":"model"},
			{"id":"gpt-4o-mini-tts","object":"model"},
			{"id":"dall-e-3","object":"model"},
			{"id":"gpt-4o","object":"model"}]}`))
	}))
	defer srv.Close()

	l, err := NewOpenAILister(&ai.Config{APIKey: "test-key", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)

	models, err := l.List(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 4)
	assert.Equal(t, KindText, models[0].Kind)
	assert.Equal(t, KindSpeech, models[1].Kind)
	assert.Equal(t, KindOther, models[2].Kind)

	assert.Equal(t, []string{"gpt-4o", "gpt-4o-mini"}, Choices(models, DefaultLimit, ""))
}

func TestChoices(t *testing.T) {
	var models []Model
	for _, n := range []string{"h", "g", "f", "e", "d", "c", "b", "a"} {
		models = append(models, Model{Name: n, Kind: KindText})
	}

	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, Choices(models, DefaultLimit, "models/c"))
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f", "custom"}, Choices(models, DefaultLimit, "custom"))
	assert.Len(t, Choices(models, 0, ""), 8)
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	Print(&buf, "gemini", []string{"gemini-2.5-pro", "gemini-flash-latest"}, "gemini-flash-latest")
	assert.Equal(t, "Available gemini models:\n  gemini-2.5-pro\n* gemini-flash-latest\n", buf.String())

	buf.Reset()
	Print(&buf, "openai", nil, "")
	assert.Contains(t, buf.String(), "No models found")
}
