package processor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"codeberg.org/snonux/lexiforge/internal"
	"codeberg.org/snonux/lexiforge/internal/ai"
	"codeberg.org/snonux/lexiforge/internal/anki"
	"codeberg.org/snonux/lexiforge/internal/archive"
	"codeberg.org/snonux/lexiforge/internal/audio"
	"codeberg.org/snonux/lexiforge/internal/batch"
	"codeberg.org/snonux/lexiforge/internal/config"
	"codeberg.org/snonux/lexiforge/internal/definition"
	"codeberg.org/snonux/lexiforge/internal/flashcard"
	"codeberg.org/snonux/lexiforge/internal/host"
	"codeberg.org/snonux/lexiforge/internal/lemma"
	"codeberg.org/snonux/lexiforge/internal/story"
)

// Processor runs the LexiForge workflows
type Processor struct {
	settings *config.Settings
	gen      ai.TextGenerator
	speaker  audio.Provider
	notifier host.Notifier
	out      io.Writer
}

// NewProcessor builds the text backend, wrapped with retry and circuit
// breaker, and unless skipAudio the speech provider
func NewProcessor(ctx context.Context, settings *config.Settings, skipAudio bool, out io.Writer) (*Processor, error) {
	gen, err := ai.NewGenerator(ctx, settings.AIConfig())
	if err != nil {
		return nil, err
	}

	var speaker audio.Provider
	if !skipAudio {
		speaker, err = audio.NewProvider(settings.AudioConfig())
		if err != nil {
			return nil, fmt.Errorf("failed to create audio provider: %w", err)
		}
	}

	return New(settings, ai.NewResilient(gen), speaker, out), nil
}

// New creates a processor from ready backends. speaker may be nil.
func New(settings *config.Settings, gen ai.TextGenerator, speaker audio.Provider, out io.Writer) *Processor {
	if out == nil {
		out = os.Stdout
	}
	return &Processor{
		settings: settings,
		gen:      gen,
		speaker:  speaker,
		notifier: host.ConsoleNotifier{Out: out},
		out:      out,
	}
}

func (p *Processor) enricher(media host.MediaStore) *flashcard.Enricher {
	d := definition.NewClient(p.gen,
		definition.WithTemplate(p.settings.PromptTemplate),
		definition.WithHinter(lemma.NewJapaneseHinter()),
	)

	var speaker flashcard.Speaker
	if p.speaker != nil {
		speaker = p.speaker
	}
	return flashcard.NewEnricher(d, speaker, media, p.notifier, p.settings.EnrichSettings())
}

func (p *Processor) printResult(res flashcard.Result) {
	fmt.Fprintf(p.out, "  Base form:  %s\n", res.Lemma)
	fmt.Fprintf(p.out, "  Definition: %s\n", res.Definition)
	fmt.Fprintf(p.out, "  Example:    %s\n", res.Example)
	if res.AudioFile != "" {
		fmt.Fprintf(p.out, "  Audio:      %s\n", res.AudioFile)
	}
}

// ProcessSingleWord generates the content of one word. Audio is written to
// mediaDir; an empty mediaDir skips audio.
func (p *Processor) ProcessSingleWord(ctx context.Context, word, mediaDir string) (flashcard.Result, error) {
	var media host.MediaStore
	if mediaDir != "" {
		media = host.DirMedia{Dir: mediaDir}
	}

	fmt.Fprintf(p.out, "\nProcessing: %s\n", word)
	res, err := p.enricher(media).Generate(ctx, word)
	if res.Lemma != "" {
		p.printResult(res)
	}
	return res, err
}

// ProcessNote enriches a note of an Anki collection in place. The deck's
// language from deck_languages takes precedence over the source language.
func (p *Processor) ProcessNote(ctx context.Context, collectionPath string, noteID int64) (flashcard.Result, error) {
	c, err := anki.Open(ctx, collectionPath)
	if err != nil {
		return flashcard.Result{}, err
	}
	defer c.Close()

	note, err := c.Note(ctx, noteID)
	if err != nil {
		return flashcard.Result{}, err
	}

	e := p.enricher(c)
	if deck, err := c.DeckOf(ctx, noteID); err == nil {
		e = e.WithSourceLanguage(p.settings.LanguageForDeck(deck.Name))
	}

	fmt.Fprintf(p.out, "\nProcessing note %d\n", noteID)
	res, err := e.Enrich(ctx, note)
	if res.Lemma != "" {
		p.printResult(res)
	}
	return res, err
}

// BatchOptions configures ProcessBatch
type BatchOptions struct {
	File      string
	OutputDir string
	DeckName  string
	CSV       bool // legacy CSV instead of .apkg
	Archive   bool // move a previous OutputDir aside first
}

// ProcessBatch enriches every word of a batch file and exports the cards.
// It returns the path of the exported file.
func (p *Processor) ProcessBatch(ctx context.Context, opts BatchOptions) (string, error) {
	entries, err := batch.ReadBatchFile(opts.File)
	if err != nil {
		return "", err
	}

	if opts.Archive {
		archived, err := archive.Dir(opts.OutputDir)
		if err != nil {
			return "", err
		}
		if archived != "" {
			fmt.Fprintf(p.out, "Previous output archived to: %s\n", archived)
		}
	}

	mediaDir := filepath.Join(opts.OutputDir, "media")
	if err := os.MkdirAll(mediaDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	deck := anki.NewDeck(opts.DeckName)
	e := p.enricher(host.DirMedia{Dir: mediaDir})
	errorCount, audioWarnings := 0, 0

	for i, entry := range entries {
		fmt.Fprintf(p.out, "\nProcessing %d/%d: %s\n", i+1, len(entries), entry.Word)

		we := e
		if entry.Language != "" {
			we = e.WithSourceLanguage(entry.Language)
		}

		res, err := we.Generate(ctx, entry.Word)
		if res.Lemma == "" {
			errorCount++
			continue
		}
		if err != nil {
			audioWarnings++
		}
		p.printResult(res)

		card := anki.Card{Word: res.Lemma, Definition: res.Definition, Example: res.Example}
		if res.AudioFile != "" {
			card.AudioFile = filepath.Join(mediaDir, res.AudioFile)
		}
		deck.AddCard(card)
	}

	fmt.Fprintf(p.out, "\n=== Batch Processing Summary ===\n")
	fmt.Fprintf(p.out, "Total words: %d\n", len(entries))
	fmt.Fprintf(p.out, "Processed: %d\n", len(deck.Cards()))
	if audioWarnings > 0 {
		fmt.Fprintf(p.out, "Without audio: %d\n", audioWarnings)
	}
	if errorCount > 0 {
		fmt.Fprintf(p.out, "Errors: %d\n", errorCount)
	}
	fmt.Fprintf(p.out, "================================\n")

	if len(deck.Cards()) == 0 {
		return "", fmt.Errorf("no cards generated from %s", opts.File)
	}

	var outputPath string
	if opts.CSV {
		outputPath = filepath.Join(opts.OutputDir, "lexiforge_import.csv")
		if err := deck.WriteCSV(outputPath, true); err != nil {
			return "", fmt.Errorf("failed to generate CSV: %w", err)
		}
	} else {
		outputPath = filepath.Join(opts.OutputDir, internal.SanitizeFilename(opts.DeckName)+".apkg")
		if err := deck.ExportAPKG(ctx, outputPath); err != nil {
			return "", fmt.Errorf("failed to generate APKG: %w", err)
		}
	}

	total, withAudio := deck.Stats()
	fmt.Fprintf(p.out, "  Generated %d cards (%d with audio): %s\n", total, withAudio, outputPath)
	return outputPath, nil
}

// StoryOptions configures ProcessStory. Empty fields use the settings.
type StoryOptions struct {
	Words      []string // explicit words; otherwise today's studied words
	Collection string
	DeckID     *int64
	Level      string
	Length     string
	Language   string
	HTML       bool
}

// ProcessStory generates a reading-practice story and prints it
func (p *Processor) ProcessStory(ctx context.Context, opts StoryOptions) (story.Story, error) {
	req := p.settings.StoryRequest(nil)
	if opts.Level != "" {
		req.Level = opts.Level
	}
	if opts.Length != "" {
		req.Length = story.ParseLength(opts.Length)
	}
	if opts.Language != "" {
		req.Language = opts.Language
	}

	var src host.StudiedWordSource
	if len(opts.Words) > 0 {
		src = host.StaticWords(opts.Words)
	} else {
		if opts.Collection == "" {
			return story.Story{}, fmt.Errorf("either words or a collection is required")
		}
		c, err := anki.Open(ctx, opts.Collection)
		if err != nil {
			return story.Story{}, err
		}
		defer c.Close()
		src = c

		if opts.Language == "" && opts.DeckID != nil {
			req.Language = p.deckLanguage(ctx, c, *opts.DeckID)
		}
	}

	s, err := flashcard.ReadingPractice(ctx, story.NewGenerator(p.gen), src, opts.DeckID, req, p.notifier)
	if err != nil {
		return story.Story{}, err
	}

	if opts.HTML {
		fmt.Fprintln(p.out, s.HTML())
	} else {
		fmt.Fprintln(p.out, s.Text())
	}
	return s, nil
}

func (p *Processor) deckLanguage(ctx context.Context, c *anki.Collection, deckID int64) string {
	decks, err := c.Decks(ctx)
	if err != nil {
		return p.settings.SourceLanguage
	}
	for _, d := range decks {
		if d.ID == deckID {
			return p.settings.LanguageForDeck(d.Name)
		}
	}
	return p.settings.SourceLanguage
}

// ListDecks prints every deck of a collection with the number of words
// studied in it today
func ListDecks(ctx context.Context, collectionPath string, out io.Writer) error {
	c, err := anki.Open(ctx, collectionPath)
	if err != nil {
		return err
	}
	defer c.Close()

	all, err := c.StudiedWords(ctx, nil)
	if err != nil {
		return err
	}
	counts, err := c.StudiedWordCounts(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "All Decks (%d words)\n", len(all))
	for _, dc := range counts {
		fmt.Fprintf(out, "%d\t%s (%d words)\n", dc.Deck.ID, dc.Deck.Name, dc.Words)
	}
	return nil
}
