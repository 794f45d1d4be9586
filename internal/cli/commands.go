package cli

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/lexiforge/internal/audio"
	"codeberg.org/snonux/lexiforge/internal/config"
	"codeberg.org/snonux/lexiforge/internal/language"
	"codeberg.org/snonux/lexiforge/internal/models"
	"codeberg.org/snonux/lexiforge/internal/processor"
)

func (a *app) generateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [word]",
		Short: "Generate the base form, definition, example and audio of a word",
		Long: `generate looks up a single word, or enriches a note of an Anki
collection in place when --collection and --note-id are given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := a.flags
			if f.Collection == "" && len(args) == 0 {
				return fmt.Errorf("a word or --collection with --note-id is required")
			}
			if f.Collection != "" && f.NoteID == 0 {
				return fmt.Errorf("--note-id is required with --collection")
			}

			p, err := a.processor(cmd.Context(), cmd.OutOrStdout(), f.SkipAudio)
			if err != nil {
				return err
			}

			if f.Collection != "" {
				_, err = p.ProcessNote(cmd.Context(), f.Collection, f.NoteID)
				return err
			}

			mediaDir := f.MediaDir
			if f.SkipAudio {
				mediaDir = ""
			}
			_, err = p.ProcessSingleWord(cmd.Context(), args[0], mediaDir)
			return err
		},
	}

	cmd.Flags().StringVar(&a.flags.Collection, "collection", "", "Anki collection file (collection.anki2)")
	cmd.Flags().Int64Var(&a.flags.NoteID, "note-id", 0, "id of the note to enrich")
	cmd.Flags().StringVar(&a.flags.MediaDir, "media-dir", ".", "directory for the audio of a single word")
	cmd.Flags().BoolVar(&a.flags.SkipAudio, "skip-audio", false, "skip audio generation")
	return cmd
}

func (a *app) storyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "story",
		Short: "Write a reading-practice story from studied words",
		Long: `story writes a short story at a CEFR level that uses the words you
studied today, or the words given with --words.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := a.flags
			p, err := a.processor(cmd.Context(), cmd.OutOrStdout(), true)
			if err != nil {
				return err
			}

			opts := processor.StoryOptions{
				Words:      f.Words,
				Collection: f.Collection,
				Level:      f.Level,
				Length:     f.Length,
				Language:   f.Language,
				HTML:       f.HTML,
			}
			if cmd.Flags().Changed("deck") {
				id := f.DeckID
				opts.DeckID = &id
			}
			_, err = p.ProcessStory(cmd.Context(), opts)
			return err
		},
	}

	cmd.Flags().StringVar(&a.flags.Collection, "collection", "", "Anki collection to read today's studied words from")
	cmd.Flags().Int64Var(&a.flags.DeckID, "deck", 0, "restrict studied words to one deck id (see 'lexiforge decks')")
	cmd.Flags().StringSliceVar(&a.flags.Words, "words", nil, "comma-separated words to use instead of a collection")
	cmd.Flags().StringVar(&a.flags.Level, "level", "", "CEFR level A1..C2 (default from settings)")
	cmd.Flags().StringVar(&a.flags.Length, "length", "", "short, medium or long (default from settings)")
	cmd.Flags().StringVar(&a.flags.Language, "language", "", "story language (default from the deck or settings)")
	cmd.Flags().BoolVar(&a.flags.HTML, "html", false, "print the story as HTML")
	return cmd
}

func (a *app) batchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <file>",
		Short: "Enrich every word of a file and export an Anki package",
		Long: `batch reads one word per line, optionally followed by "= language",
and exports the generated cards as an .apkg file or as CSV.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := a.flags
			p, err := a.processor(cmd.Context(), cmd.OutOrStdout(), f.SkipAudio)
			if err != nil {
				return err
			}

			outputDir := f.OutputDir
			if outputDir == "" {
				outputDir = defaultOutputDir()
			}
			path, err := p.ProcessBatch(cmd.Context(), processor.BatchOptions{
				File:      args[0],
				OutputDir: outputDir,
				DeckName:  f.DeckName,
				CSV:       f.CSV,
				Archive:   f.Archive,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nDone! Anki import file: %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&a.flags.OutputDir, "output", "o", "", "output directory (default $HOME/.local/state/lexiforge/cards)")
	cmd.Flags().StringVar(&a.flags.DeckName, "deck-name", a.flags.DeckName, "deck name for the APKG export")
	cmd.Flags().BoolVar(&a.flags.CSV, "csv", false, "write legacy CSV instead of APKG")
	cmd.Flags().BoolVar(&a.flags.Archive, "archive", false, "archive the previous output directory first")
	cmd.Flags().BoolVar(&a.flags.SkipAudio, "skip-audio", false, "skip audio generation")
	return cmd
}

func (a *app) modelsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the text models available to the configured API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.settings()
			if err != nil {
				return err
			}
			cfg := s.AIConfig()

			lister, err := newLister(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			list, err := lister.List(cmd.Context())
			if err != nil {
				return err
			}

			models.Print(cmd.OutOrStdout(), cfg.Provider, models.Choices(list, a.flags.Limit, cfg.Model), cfg.Model)
			return nil
		},
	}

	cmd.Flags().IntVar(&a.flags.Limit, "limit", a.flags.Limit, "maximum number of models to show")
	return cmd
}

func (a *app) languagesCommand() *cobra.Command {
	var espeakOnly bool
	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List the supported languages and their voices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			if espeakOnly {
				voices := audio.ListVoices()
				codes := make([]string, 0, len(voices))
				for code := range voices {
					codes = append(codes, code)
				}
				sort.Strings(codes)
				fmt.Fprintln(w, "CODE\tESPEAK")
				for _, code := range codes {
					fmt.Fprintf(w, "%s\t%s\n", code, voices[code])
				}
				return w.Flush()
			}

			fmt.Fprintln(w, "CODE\tNAME\tGOOGLE\tESPEAK\tOPENAI\tLEVELS")
			for _, l := range language.All() {
				levels := make([]string, len(l.Levels))
				for i, lv := range l.Levels {
					levels[i] = string(lv)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", l.Code, l.Name,
					dash(l.Voices.GoogleTTS), dash(l.Voices.ESpeak), dash(l.Voices.OpenAIVoice),
					strings.Join(levels, ","))
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&espeakOnly, "espeak", false, "list only the languages espeak-ng can speak")
	return cmd
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func (a *app) decksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decks",
		Short: "List the decks of a collection with today's studied word counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.flags.Collection == "" {
				return fmt.Errorf("--collection is required")
			}
			return processor.ListDecks(cmd.Context(), a.flags.Collection, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&a.flags.Collection, "collection", "", "Anki collection file (collection.anki2)")
	return cmd
}

func (a *app) settingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the persisted settings",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print every setting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, key := range config.Keys(a.v) {
				value := fmt.Sprint(a.v.Get(key))
				if strings.HasSuffix(key, "key") && value != "" {
					value = "********"
				}
				fmt.Fprintf(w, "%s\t%s\n", key, value)
			}
			return w.Flush()
		},
	}

	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a setting and save the config file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Set(a.v, args[0], args[1]); err != nil {
				return err
			}
			if _, err := config.Load(a.v); err != nil {
				return fmt.Errorf("refusing to save: %w", err)
			}
			path, err := config.Save(a.v)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s to %s\n", strings.ToLower(args[0]), path)
			return nil
		},
	}

	cmd.AddCommand(show, set)
	return cmd
}

func (a *app) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the audio cache",
	}

	open := func() (*audio.CachedProvider, error) {
		s, err := a.settings()
		if err != nil {
			return nil, err
		}
		return audio.NewCachedProvider(nil, s.TTS.CacheDir)
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Print the number and total size of cached recordings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := open()
			if err != nil {
				return err
			}
			files, size, err := c.GetCacheStats()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d cached recordings, %.1f KiB\n", files, float64(size)/1024)
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every cached recording",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := open()
			if err != nil {
				return err
			}
			if err := c.ClearCache(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Audio cache cleared")
			return nil
		},
	}

	cmd.AddCommand(stats, clearCmd)
	return cmd
}
