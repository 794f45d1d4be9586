package host

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"
)

// Step names a user-visible stage of an action
type Step string

const (
	StepValidate        Step = "validation"
	StepDefinition      Step = "definition"
	StepAudio           Step = "audio"
	StepSave            Step = "saving fields"
	StepReadingPractice Step = "reading practice"
)

// StepError ties an error to the step it happened in
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Note is a flashcard note with named fields
type Note interface {
	// FieldNames returns the field names in note-type order
	FieldNames() []string
	Field(name string) (string, bool)
	SetField(name, value string) error
}

// Saver is implemented by notes that buffer field changes until saved
type Saver interface {
	Save(ctx context.Context) error
}

// MediaStore saves media files referenced from notes
type MediaStore interface {
	// WriteMedia stores data and returns the name to reference in [sound:...]
	WriteMedia(name string, data []byte) (string, error)
}

// StudiedWordSource returns the words of cards reviewed today whose
// interval is at least one day. A nil deckID means all decks.
type StudiedWordSource interface {
	StudiedWords(ctx context.Context, deckID *int64) ([]string, error)
}

// Deck is a named card deck
type Deck struct {
	ID   int64
	Name string
}

// DeckLister lists the decks of a collection
type DeckLister interface {
	Decks(ctx context.Context) ([]Deck, error)
}

// Notifier shows a failure to the user together with the step that failed
type Notifier interface {
	Notify(step Step, err error)
}

var (
	blockRe = regexp.MustCompile(`(?i)<\s*/?\s*(br|div|p|li|ul|ol|tr|td|th|h[1-6])\b[^>]*>`)
	tagRe   = regexp.MustCompile(`<[^>]+>`)
	soundRe = regexp.MustCompile(`\[sound:[^\]]+\]`)
)

// CleanFieldText strips HTML tags, [sound:...] references and entities
// from a field value. Line and block tags become a single space.
func CleanFieldText(s string) string {
	s = blockRe.ReplaceAllString(s, " ")
	s = tagRe.ReplaceAllString(s, "")
	s = soundRe.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "\u00a0", " ")), " ")
}

// UniqueWords cleans every value and drops empties and duplicates, keeping order
func UniqueWords(values []string) []string {
	seen := make(map[string]bool, len(values))
	words := make([]string, 0, len(values))
	for _, v := range values {
		w := CleanFieldText(v)
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		words = append(words, w)
	}
	return words
}
