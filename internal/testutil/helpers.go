package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

// CreateTestFile creates a test file with content
func CreateTestFile(t *testing.T, path string, content []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create directory for test file: %v", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
}

// AssertFileExists checks if a file exists
func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Expected file to exist: %s", path)
	}
}

// AssertFileContent checks if a file has expected content
func AssertFileContent(t *testing.T, path string, expected []byte) {
	t.Helper()

	actual, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	if string(actual) != string(expected) {
		t.Errorf("File content mismatch in %s\nExpected: %q\nActual: %q", path, expected, actual)
	}
}

// GeminiResponse renders a generateContent response body with one text candidate
func GeminiResponse(text string) string {
	body, _ := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": text}},
				},
				"finishReason": "STOP",
			},
		},
	})
	return string(body)
}

// GeminiServer is a fake Gemini API answering generateContent calls
type GeminiServer struct {
	*httptest.Server
	hits    int32
	prompts chan string
}

// NewGeminiServer starts a fake Gemini API that answers every
// generateContent call with reply. It is closed when the test ends.
func NewGeminiServer(t *testing.T, reply string) *GeminiServer {
	t.Helper()

	gs := &GeminiServer{prompts: make(chan string, 16)}
	gs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&gs.hits, 1)
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		select {
		case gs.prompts <- string(body):
		default:
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, GeminiResponse(reply))
	}))
	t.Cleanup(gs.Close)
	return gs
}

// Hits returns how many requests the server received
func (gs *GeminiServer) Hits() int {
	return int(atomic.LoadInt32(&gs.hits))
}

// LastRequest returns the body of the most recent unread request, or ""
func (gs *GeminiServer) LastRequest() string {
	last := ""
	for {
		select {
		case p := <-gs.prompts:
			last = p
		default:
			return last
		}
	}
}
