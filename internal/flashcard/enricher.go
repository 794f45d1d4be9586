package flashcard

import (
	"context"
	"errors"
	"strings"
	"time"

	"codeberg.org/snonux/lexiforge/internal"
	"codeberg.org/snonux/lexiforge/internal/definition"
	"codeberg.org/snonux/lexiforge/internal/host"
	"codeberg.org/snonux/lexiforge/internal/language"
	"codeberg.org/snonux/lexiforge/internal/logging"
	"codeberg.org/snonux/lexiforge/internal/story"
)

// Definer produces the lemma, definition and example of a word
type Definer interface {
	Define(ctx context.Context, req definition.Request) (definition.Result, error)
}

// Speaker synthesizes pronunciation audio
type Speaker interface {
	Synthesize(ctx context.Context, text, lang string) ([]byte, error)
}

// Settings drive a generate action
type Settings struct {
	SourceLanguage     string // name, code or "Auto"
	DefinitionLanguage string
	// AudioLanguage is spoken when SourceLanguage is Auto. Empty skips audio
	// for auto-detected words.
	AudioLanguage string
	Fields        FieldMapping
}

// Result is the generated content of one word
type Result struct {
	Word       string // the word as typed
	Lemma      string
	Definition string
	Example    string
	Audio      []byte
	AudioFile  string // media name, empty when there is no audio
}

// Enricher runs the generate action
type Enricher struct {
	definer  Definer
	speaker  Speaker
	media    host.MediaStore
	notifier host.Notifier
	settings Settings
	now      func() time.Time
}

// NewEnricher wires the action. speaker and media may be nil to skip audio;
// notifier may be nil to only return errors.
func NewEnricher(d Definer, speaker Speaker, media host.MediaStore, notifier host.Notifier, settings Settings) *Enricher {
	return &Enricher{
		definer:  d,
		speaker:  speaker,
		media:    media,
		notifier: notifier,
		settings: settings,
		now:      time.Now,
	}
}

// WithSourceLanguage returns a copy of the enricher reading words in lang
func (e *Enricher) WithSourceLanguage(lang string) *Enricher {
	c := *e
	c.settings.SourceLanguage = lang
	return &c
}

// fail notifies the host and wraps err with its step
func (e *Enricher) fail(step host.Step, err error) error {
	if e.notifier != nil {
		e.notifier.Notify(step, err)
	}
	return &host.StepError{Step: step, Err: err}
}

// Enrich fills a note: validate, define, speak, write fields, save.
// A definition failure leaves the note untouched. An audio failure still
// writes the text fields and is returned as a StepError for the audio step.
func (e *Enricher) Enrich(ctx context.Context, note host.Note) (Result, error) {
	mapping := ResolveFields(note, e.settings.Fields)
	word, err := Validate(note, mapping)
	if err != nil {
		return Result{}, e.fail(host.StepValidate, err)
	}

	res, audioErr := e.Generate(ctx, word)
	var stepErr *host.StepError
	if errors.As(audioErr, &stepErr) && stepErr.Step == host.StepDefinition {
		return Result{}, audioErr
	}

	if err := apply(note, mapping, res); err != nil {
		return res, e.fail(host.StepSave, err)
	}
	if s, ok := note.(host.Saver); ok {
		if err := s.Save(ctx); err != nil {
			return res, e.fail(host.StepSave, err)
		}
	}
	return res, audioErr
}

// Generate defines a word and synthesizes audio for its lemma without
// touching a note. On a definition failure the result is empty.
func (e *Enricher) Generate(ctx context.Context, word string) (Result, error) {
	log := logging.NewLogger(ctx).WithField("word", word)

	def, err := e.definer.Define(ctx, definition.Request{
		Word:               word,
		SourceLanguage:     e.settings.SourceLanguage,
		DefinitionLanguage: e.settings.DefinitionLanguage,
	})
	if err != nil {
		return Result{}, e.fail(host.StepDefinition, err)
	}

	res := Result{Word: word, Lemma: def.Lemma, Definition: def.Definition, Example: def.Example}
	log.Infof("defined as %q", res.Lemma)

	if e.speaker == nil || e.media == nil {
		return res, nil
	}

	langName := e.audioLanguage()
	if langName == "" {
		log.Infof("source language is auto-detected and no audio language is set, skipping audio")
		return res, nil
	}
	lang, err := language.Lookup(langName)
	if err != nil {
		return res, e.fail(host.StepAudio, err)
	}

	data, err := e.speaker.Synthesize(ctx, res.Lemma, lang.Code)
	if err != nil {
		return res, e.fail(host.StepAudio, err)
	}

	name, err := e.media.WriteMedia(internal.AudioFilename(res.Lemma, lang.Code, e.now()), data)
	if err != nil {
		return res, e.fail(host.StepAudio, err)
	}
	res.Audio = data
	res.AudioFile = name
	return res, nil
}

func (e *Enricher) audioLanguage() string {
	src := strings.TrimSpace(e.settings.SourceLanguage)
	if src == "" || language.IsAuto(src) {
		return strings.TrimSpace(e.settings.AudioLanguage)
	}
	return src
}

// ReadingPractice generates a story from the host's studied words and
// reports a failure as the reading practice step
func ReadingPractice(ctx context.Context, g *story.Generator, src host.StudiedWordSource, deckID *int64, req story.Request, notifier host.Notifier) (story.Story, error) {
	s, err := g.Practice(ctx, src, deckID, req)
	if err != nil {
		if notifier != nil {
			notifier.Notify(host.StepReadingPractice, err)
		}
		return story.Story{}, &host.StepError{Step: host.StepReadingPractice, Err: err}
	}
	return s, nil
}
