package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"codeberg.org/snonux/lexiforge/internal"
	"codeberg.org/snonux/lexiforge/internal/config"
	"codeberg.org/snonux/lexiforge/internal/logging"
	"codeberg.org/snonux/lexiforge/internal/models"
	"codeberg.org/snonux/lexiforge/internal/processor"
)

// Backends are created through these so tests can swap them
var (
	newProcessor = processor.NewProcessor
	newLister    = models.NewLister
)

// app carries the state shared by the subcommands of one invocation
type app struct {
	flags *Flags
	v     *viper.Viper
}

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	a := &app{flags: flags}

	rootCmd := &cobra.Command{
		Use:   "lexiforge",
		Short: "AI-assisted Anki vocabulary enrichment",
		Long: `lexiforge fills Anki vocabulary notes with the base form of a word,
a definition, an example sentence and a pronunciation recording, and
writes CEFR-levelled reading-practice stories from the words you
studied today.

Examples:
  lexiforge generate running                          # Define a single word
  lexiforge generate --collection col.anki2 --note-id 1700000000000
  lexiforge story --collection col.anki2 --level A2   # Story from today's reviews
  lexiforge batch words.txt --deck-name "Spanish"     # Build an .apkg from a word list
  lexiforge settings set definition_lang Spanish`,
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig(cmd)
		},
	}

	setupFlags(rootCmd, flags)

	rootCmd.AddCommand(
		a.generateCommand(),
		a.storyCommand(),
		a.batchCommand(),
		a.modelsCommand(),
		a.languagesCommand(),
		a.decksCommand(),
		a.settingsCommand(),
		a.cacheCommand(),
	)
	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.lexiforge.yaml)")
	pf.StringVar(&flags.EnvFile, "env-file", "", "dotenv file with API keys (default is ./.env)")
	pf.StringVar(&flags.LogLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.BoolVarP(&flags.Verbose, "verbose", "v", false, "verbose logging (same as --log-level debug)")
	pf.StringVar(&flags.Provider, "provider", "", "text provider: gemini or openai")
	pf.StringVar(&flags.Model, "model", "", "text model name")
	pf.StringVar(&flags.SourceLang, "source-lang", "", "language of the words, or Auto")
	pf.StringVar(&flags.DefinitionLang, "definition-lang", "", "language of the definitions")
}

// bindFlagsToViper makes explicitly set flags win over file and environment
func bindFlagsToViper(v *viper.Viper, fs *pflag.FlagSet) error {
	bindings := map[string]string{
		"provider":        "provider",
		"model":           "model",
		"source_lang":     "source-lang",
		"definition_lang": "definition-lang",
		"log_level":       "log-level",
	}
	for key, name := range bindings {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

func (a *app) initConfig(cmd *cobra.Command) error {
	var envFiles []string
	if a.flags.EnvFile != "" {
		envFiles = append(envFiles, a.flags.EnvFile)
	}

	v, err := config.New(a.flags.CfgFile, envFiles...)
	if err != nil {
		return err
	}
	if err := bindFlagsToViper(v, cmd.Flags()); err != nil {
		return err
	}
	a.v = v

	level := v.GetString("log_level")
	if a.flags.Verbose {
		level = "debug"
	}
	logging.Configure(cmd.ErrOrStderr(), level)
	return nil
}

// settings decodes and validates the merged configuration
func (a *app) settings() (*config.Settings, error) {
	if a.v == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	return config.Load(a.v)
}

func (a *app) processor(ctx context.Context, out io.Writer, skipAudio bool) (*processor.Processor, error) {
	s, err := a.settings()
	if err != nil {
		return nil, err
	}
	return newProcessor(ctx, s, skipAudio, out)
}

// defaultOutputDir is where batch exports go unless --output is given
func defaultOutputDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "lexiforge", "cards")
}
