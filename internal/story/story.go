package story

import (
	"context"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"

	"codeberg.org/snonux/lexiforge/internal/ai"
	"codeberg.org/snonux/lexiforge/internal/apierr"
	"codeberg.org/snonux/lexiforge/internal/host"
	"codeberg.org/snonux/lexiforge/internal/language"
	"codeberg.org/snonux/lexiforge/internal/logging"
)

// MaxWords is how many studied words are embedded in one prompt
const MaxWords = 30

// ErrNoWords is returned when there is nothing to build a story from
var ErrNoWords = errors.New("no words available to generate a story")

// Request describes a reading-practice story
type Request struct {
	Words          []string
	Level          string // CEFR level, A1..C2
	Length         Length
	Language       string // name, code or "Auto"
	PromptTemplate string
}

// Story is a generated story. Body keeps the model's **bold** markers.
type Story struct {
	Title string
	Body  string
	Words []string
}

// Text returns the story as plain text with the title on the first line
func (s Story) Text() string {
	if s.Title == "" {
		return s.Body
	}
	return "Title: " + s.Title + "\n\n" + s.Body
}

var boldRe = regexp.MustCompile(`\*\*([^*]+)\*\*`)

// HTML renders the story with <b> for studied words and <br> line breaks
func (s Story) HTML() string {
	text := html.EscapeString(s.Text())
	text = boldRe.ReplaceAllString(text, "<b>$1</b>")
	return strings.ReplaceAll(text, "\n", "<br>")
}

// Generator creates stories through a TextGenerator
type Generator struct {
	gen ai.TextGenerator
}

// NewGenerator creates a story generator
func NewGenerator(gen ai.TextGenerator) *Generator {
	return &Generator{gen: gen}
}

// Prepared is a validated request ready to send
type Prepared struct {
	Prompt  string
	Options ai.Options
	Words   []string
}

// Prepare validates the request and builds the prompt and generation options
func Prepare(req Request) (Prepared, error) {
	words := host.UniqueWords(req.Words)
	if len(words) == 0 {
		return Prepared{}, ErrNoWords
	}
	if len(words) > MaxWords {
		words = words[:MaxWords]
	}

	level, err := language.ParseLevel(req.Level)
	if err != nil {
		return Prepared{}, err
	}

	var langName, langCode string
	if !language.IsAuto(req.Language) && strings.TrimSpace(req.Language) != "" {
		l, err := language.Lookup(req.Language)
		if err != nil {
			return Prepared{}, err
		}
		if !l.SupportsLevel(level) {
			return Prepared{}, &apierr.UnsupportedLanguageError{
				Language: l.Name,
				Detail:   fmt.Sprintf("level %s not available", level),
			}
		}
		langName, langCode = l.Name, l.Code
	}

	length := ParseLength(string(req.Length))
	return Prepared{
		Prompt: buildPrompt(req.PromptTemplate, words, level, length, langName, langCode),
		Options: ai.Options{
			Temperature:     0.9,
			TopK:            40,
			TopP:            0.95,
			MaxOutputTokens: length.MaxTokens(),
		},
		Words: words,
	}, nil
}

// Generate builds the prompt, calls the model and cleans the reply
func (g *Generator) Generate(ctx context.Context, req Request) (Story, error) {
	p, err := Prepare(req)
	if err != nil {
		return Story{}, err
	}

	log := logging.NewLogger(ctx).WithField("backend", g.gen.Name())
	log.Debugf("story prompt: %s", p.Prompt)

	raw, err := g.gen.Generate(ctx, p.Prompt, p.Options)
	if err != nil {
		return Story{}, err
	}

	cleaned := Clean(raw)
	if cleaned == "" {
		return Story{}, &apierr.ParseError{Reason: "story is empty", Raw: raw}
	}

	s := parseStory(cleaned)
	s.Words = p.Words
	return s, nil
}

// Practice pulls today's studied words from the host and generates a story
func (g *Generator) Practice(ctx context.Context, src host.StudiedWordSource, deckID *int64, req Request) (Story, error) {
	words, err := src.StudiedWords(ctx, deckID)
	if err != nil {
		return Story{}, fmt.Errorf("failed to read studied words: %w", err)
	}
	if len(words) == 0 {
		return Story{}, fmt.Errorf("%w: study some cards first (interval of at least one day, reviewed today)", ErrNoWords)
	}

	req.Words = words
	return g.Generate(ctx, req)
}

// Clean removes the language-detection header lines that precede the
// story and the blank or separator lines that follow them
func Clean(raw string) string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	cleaned := make([]string, 0, len(lines))
	inHeader, skipNext := true, false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if inHeader && isDetectionLine(trimmed) {
			skipNext = true
			continue
		}

		if skipNext && (trimmed == "" || trimmed == "***" || trimmed == "---") {
			if trimmed != "" {
				skipNext = false
			}
			continue
		}
		skipNext = false
		if trimmed != "" {
			inHeader = false
		}
		cleaned = append(cleaned, line)
	}

	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}

func isDetectionLine(line string) bool {
	lower := strings.ToLower(line)
	return strings.Contains(lower, "detected language") || strings.Contains(lower, "linguagem detectada")
}

var titleRe = regexp.MustCompile(`(?i)^\**\s*title\s*:\s*\**\s*(.+?)\s*\**$`)

func parseStory(text string) Story {
	first, rest, _ := strings.Cut(text, "\n")
	if m := titleRe.FindStringSubmatch(strings.TrimSpace(first)); m != nil {
		return Story{Title: m[1], Body: strings.TrimSpace(rest)}
	}
	return Story{Body: text}
}
