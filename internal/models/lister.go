package models

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"

	"codeberg.org/snonux/lexiforge/internal/ai"
)

// DefaultLimit is how many models are offered for selection
const DefaultLimit = 6

// Kinds of model
const (
	KindText   = "text"
	KindSpeech = "speech"
	KindOther  = "other"
)

// Model is an available model
type Model struct {
	Name        string // without the "models/" prefix
	DisplayName string
	Kind        string
}

// Lister lists the models of one provider
type Lister interface {
	List(ctx context.Context) ([]Model, error)
}

// NewLister creates the lister for the provider in config
func NewLister(ctx context.Context, config *ai.Config) (Lister, error) {
	switch strings.ToLower(config.Provider) {
	case ai.ProviderGemini, "":
		return NewGeminiLister(ctx, config)
	case ai.ProviderOpenAI:
		return NewOpenAILister(config)
	default:
		return nil, fmt.Errorf("unknown text provider: %s", config.Provider)
	}
}

// GeminiLister lists models of the Gemini API
type GeminiLister struct {
	client *genai.Client
}

// NewGeminiLister creates a Gemini model lister
func NewGeminiLister(ctx context.Context, config *ai.Config) (*GeminiLister, error) {
	client, err := ai.NewGeminiClient(ctx, config)
	if err != nil {
		return nil, err
	}
	return &GeminiLister{client: client}, nil
}

// List returns every model, following pagination
func (l *GeminiLister) List(ctx context.Context) ([]Model, error) {
	var models []Model
	for m, err := range l.client.Models.All(ctx) {
		if err != nil {
			return nil, ai.ClassifyError(ai.ProviderGemini, err)
		}
		models = append(models, Model{
			Name:        strings.TrimPrefix(m.Name, "models/"),
			DisplayName: m.DisplayName,
			Kind:        geminiKind(m),
		})
	}
	return models, nil
}

func geminiKind(m *genai.Model) string {
	if strings.Contains(m.Name, "tts") {
		return KindSpeech
	}
	for _, action := range m.SupportedActions {
		if action == "generateContent" {
			return KindText
		}
	}
	if len(m.SupportedActions) == 0 {
		return KindText
	}
	return KindOther
}

// OpenAILister lists models of the OpenAI API
type OpenAILister struct {
	client *openai.Client
}

// NewOpenAILister creates an OpenAI model lister
func NewOpenAILister(config *ai.Config) (*OpenAILister, error) {
	if err := ai.ValidateAPIKey(ai.ProviderOpenAI, config.APIKey); err != nil {
		return nil, err
	}
	cfg := openai.DefaultConfig(strings.TrimSpace(config.APIKey))
	if config.BaseURL != "" {
		cfg.BaseURL = config.BaseURL
	}
	return &OpenAILister{client: openai.NewClientWithConfig(cfg)}, nil
}

// List returns every model, categorized by its id
func (l *OpenAILister) List(ctx context.Context) ([]Model, error) {
	resp, err := l.client.ListModels(ctx)
	if err != nil {
		return nil, ai.ClassifyError(ai.ProviderOpenAI, err)
	}

	models := make([]Model, 0, len(resp.Models))
	for _, m := range resp.Models {
		models = append(models, Model{Name: m.ID, DisplayName: m.ID, Kind: openAIKind(m.ID)})
	}
	return models, nil
}

func openAIKind(id string) string {
	switch {
	case strings.Contains(id, "tts") || strings.Contains(id, "audio"):
		return KindSpeech
	case strings.Contains(id, "gpt") || strings.Contains(id, "chat"):
		return KindText
	default:
		return KindOther
	}
}

// Choices returns up to limit text model names sorted by name. The current
// model is appended when it is not among them so it stays selectable.
func Choices(models []Model, limit int, current string) []string {
	names := make([]string, 0, len(models))
	for _, m := range models {
		if m.Kind == KindText {
			names = append(names, m.Name)
		}
	}
	sort.Strings(names)
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}

	current = strings.TrimPrefix(strings.TrimSpace(current), "models/")
	if current == "" {
		return names
	}
	for _, n := range names {
		if n == current {
			return names
		}
	}
	return append(names, current)
}

// Print writes the choices, marking the current model
func Print(w io.Writer, provider string, names []string, current string) {
	fmt.Fprintf(w, "Available %s models:\n", provider)
	if len(names) == 0 {
		fmt.Fprintln(w, "  No models found")
		return
	}
	for _, n := range names {
		marker := " "
		if n == current {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s\n", marker, n)
	}
}
