package story

import (
	"context"
	"testing"

	"codeberg.org/snonux/lexiforge/internal/ai"
)

func newGemini(t *testing.T, baseURL string) ai.TextGenerator {
	t.Helper()

	gen, err := ai.NewGeminiGenerator(context.Background(), &ai.Config{APIKey: "test-key", BaseURL: baseURL})
	if err != nil {
		t.Fatalf("NewGeminiGenerator() error = %v", err)
	}
	return gen
}
