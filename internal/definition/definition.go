package definition

import (
	"context"
	"fmt"
	"strings"

	"codeberg.org/snonux/lexiforge/internal/ai"
	"codeberg.org/snonux/lexiforge/internal/language"
	"codeberg.org/snonux/lexiforge/internal/lemma"
	"codeberg.org/snonux/lexiforge/internal/logging"
)

// DefaultDefinitionLanguage is used when a request leaves it empty
const DefaultDefinitionLanguage = "English"

// Request describes the word to enrich
type Request struct {
	Word               string
	SourceLanguage     string // language name, code or "Auto"
	DefinitionLanguage string
}

// Result holds the three generated fields. It is only returned fully populated.
type Result struct {
	Lemma      string
	Definition string
	Example    string
}

func (r Result) missing() []string {
	var missing []string
	if r.Lemma == "" {
		missing = append(missing, "BASE_FORM")
	}
	if r.Definition == "" {
		missing = append(missing, "DEFINITION")
	}
	if r.Example == "" {
		missing = append(missing, "EXAMPLE")
	}
	return missing
}

// Client generates definitions through a TextGenerator
type Client struct {
	gen      ai.TextGenerator
	template string
	parse    ParseFunc
	hinter   lemma.Hinter
	options  ai.Options
}

// Option configures a Client
type Option func(*Client)

// WithTemplate overrides the prompt template
func WithTemplate(template string) Option {
	return func(c *Client) { c.template = template }
}

// WithParser replaces the response parser
func WithParser(parse ParseFunc) Option {
	return func(c *Client) { c.parse = parse }
}

// WithHinter adds local base-form hints to the prompt
func WithHinter(h lemma.Hinter) Option {
	return func(c *Client) { c.hinter = h }
}

// WithOptions sets the generation options
func WithOptions(opts ai.Options) Option {
	return func(c *Client) { c.options = opts }
}

// NewClient creates a definition client
func NewClient(gen ai.TextGenerator, opts ...Option) *Client {
	c := &Client{
		gen:   gen,
		parse: Parse,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Define generates the lemma, definition and example for a word
func (c *Client) Define(ctx context.Context, req Request) (Result, error) {
	word := strings.TrimSpace(req.Word)
	if word == "" {
		return Result{}, fmt.Errorf("word is empty")
	}

	sourceName, sourceCode := language.Auto, ""
	if !language.IsAuto(req.SourceLanguage) && strings.TrimSpace(req.SourceLanguage) != "" {
		src, err := language.Lookup(req.SourceLanguage)
		if err != nil {
			return Result{}, fmt.Errorf("source language: %w", err)
		}
		sourceName, sourceCode = src.Name, src.Code
	}

	defLang := req.DefinitionLanguage
	if strings.TrimSpace(defLang) == "" {
		defLang = DefaultDefinitionLanguage
	}
	target, err := language.Lookup(defLang)
	if err != nil {
		return Result{}, fmt.Errorf("definition language: %w", err)
	}

	prompt := BuildPrompt(c.template, word, sourceName, target.Name)
	if c.hinter != nil {
		if hint, ok := c.hinter.Hint(word, sourceCode); ok {
			prompt += "\n\nDictionary form hint: " + hint
		}
	}

	log := logging.NewLogger(ctx).WithField("word", word).WithField("backend", c.gen.Name())
	log.Debugf("definition prompt: %s", prompt)

	raw, err := c.gen.Generate(ctx, prompt, c.options)
	if err != nil {
		return Result{}, err
	}
	log.Debugf("raw response: %s", raw)

	res, err := c.parse(raw)
	if err != nil {
		log.Warnf("unparseable response: %v", err)
		return Result{}, err
	}
	return res, nil
}
