package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"codeberg.org/snonux/lexiforge/internal/ai"
	"codeberg.org/snonux/lexiforge/internal/apierr"
	"codeberg.org/snonux/lexiforge/internal/audio"
	"codeberg.org/snonux/lexiforge/internal/flashcard"
	"codeberg.org/snonux/lexiforge/internal/language"
	"codeberg.org/snonux/lexiforge/internal/logging"
	"codeberg.org/snonux/lexiforge/internal/story"
)

// EnvPrefix prefixes every environment override, e.g. LEXIFORGE_MODEL
const EnvPrefix = "LEXIFORGE"

// FileName is the config file looked up in $HOME and the working directory
const FileName = ".lexiforge"

// FieldMapping names the note fields receiving the generated content
type FieldMapping struct {
	WordField       string `mapstructure:"word_field"`
	DefinitionField string `mapstructure:"definition_field"`
	ExampleField    string `mapstructure:"example_field"`
}

// TTS configures speech synthesis
type TTS struct {
	Provider    string  `mapstructure:"provider"`
	Fallback    string  `mapstructure:"fallback"`
	OpenAIKey   string  `mapstructure:"openai_key"`
	OpenAIModel string  `mapstructure:"openai_model"`
	Voice       string  `mapstructure:"voice"`
	Speed       float64 `mapstructure:"speed"`
	CacheDir    string  `mapstructure:"cache_dir"`
	EnableCache bool    `mapstructure:"enable_cache"`
	ESpeakSpeed int     `mapstructure:"espeak_speed"`
	ESpeakPitch int     `mapstructure:"espeak_pitch"`
}

// Settings holds every persisted setting
type Settings struct {
	APIKey              string            `mapstructure:"api_key"`
	Provider            string            `mapstructure:"provider"`
	Model               string            `mapstructure:"model"`
	SourceLanguage      string            `mapstructure:"source_lang"`
	DefinitionLanguage  string            `mapstructure:"definition_lang"`
	AudioLanguage       string            `mapstructure:"audio_lang"`
	PromptTemplate      string            `mapstructure:"prompt_template"`
	FieldMapping        FieldMapping      `mapstructure:"field_mapping"`
	StoryLevel          string            `mapstructure:"story_level"`
	StoryLength         string            `mapstructure:"story_length"`
	StoryPromptTemplate string            `mapstructure:"story_prompt_template"`
	DeckLanguages       map[string]string `mapstructure:"deck_languages"`
	TTS                 TTS               `mapstructure:"tts"`
	Timeout             time.Duration     `mapstructure:"timeout"`
	LogLevel            string            `mapstructure:"log_level"`
}

// SetDefaults registers the default of every key. Keys without a default
// are invisible to environment overrides.
func SetDefaults(v *viper.Viper) {
	home, _ := os.UserHomeDir()

	v.SetDefault("api_key", "")
	v.SetDefault("provider", ai.ProviderGemini)
	v.SetDefault("model", ai.DefaultGeminiModel)
	v.SetDefault("source_lang", language.Auto)
	v.SetDefault("definition_lang", "English")
	v.SetDefault("audio_lang", "")
	v.SetDefault("prompt_template", "")
	v.SetDefault("field_mapping.word_field", "Front")
	v.SetDefault("field_mapping.definition_field", "Back")
	v.SetDefault("field_mapping.example_field", "Back")
	v.SetDefault("story_level", string(language.B1))
	v.SetDefault("story_length", string(story.Short))
	v.SetDefault("story_prompt_template", "")
	v.SetDefault("deck_languages", map[string]string{})
	v.SetDefault("tts.provider", audio.ProviderGoogle)
	v.SetDefault("tts.fallback", "")
	v.SetDefault("tts.openai_key", "")
	v.SetDefault("tts.openai_model", "gpt-4o-mini-tts")
	v.SetDefault("tts.voice", "")
	v.SetDefault("tts.speed", 1.0)
	v.SetDefault("tts.cache_dir", filepath.Join(home, ".cache", "lexiforge", "audio"))
	v.SetDefault("tts.enable_cache", true)
	v.SetDefault("tts.espeak_speed", 150)
	v.SetDefault("tts.espeak_pitch", 50)
	v.SetDefault("timeout", ai.DefaultTimeout)
	v.SetDefault("log_level", "warn")
}

// New creates a viper instance with defaults, the config file and the
// environment. A missing config file is not an error. envFiles are loaded
// into the environment first; without any, ./.env is tried.
func New(cfgFile string, envFiles ...string) (*viper.Viper, error) {
	if err := LoadDotEnv(envFiles...); err != nil {
		return nil, err
	}

	v := viper.New()
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(FileName)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return v, nil
}

// LoadDotEnv loads .env files into the environment without overriding
// variables that are already set. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Load decodes the settings, applies the API key environment fallbacks
// and validates the story settings
func Load(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}

	if s.APIKey == "" {
		switch strings.ToLower(s.Provider) {
		case ai.ProviderOpenAI:
			s.APIKey = os.Getenv("OPENAI_API_KEY")
		default:
			s.APIKey = os.Getenv("GEMINI_API_KEY")
		}
	}
	if s.TTS.OpenAIKey == "" {
		s.TTS.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the values that have a fixed set of choices
func (s *Settings) Validate() error {
	switch strings.ToLower(s.Provider) {
	case ai.ProviderGemini, ai.ProviderOpenAI:
	default:
		return fmt.Errorf("invalid provider %q: must be gemini or openai", s.Provider)
	}
	if _, err := language.ParseLevel(s.StoryLevel); err != nil {
		return err
	}
	switch story.Length(strings.ToLower(s.StoryLength)) {
	case story.Short, story.Medium, story.Long:
	default:
		return fmt.Errorf("invalid story length %q: must be short, medium or long", s.StoryLength)
	}
	if !language.IsAuto(s.SourceLanguage) {
		if _, err := language.Lookup(s.SourceLanguage); err != nil {
			return fmt.Errorf("source_lang: %w", err)
		}
	}
	if _, err := language.Lookup(s.DefinitionLanguage); err != nil {
		return fmt.Errorf("definition_lang: %w", err)
	}
	return nil
}

// Set changes one key after checking that it exists
func Set(v *viper.Viper, key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, k := range v.AllKeys() {
		if k == key {
			v.Set(key, value)
			return nil
		}
	}
	return fmt.Errorf("unknown setting %q", key)
}

// Keys returns every known key sorted
func Keys(v *viper.Viper) []string {
	keys := v.AllKeys()
	sort.Strings(keys)
	return keys
}

// Save writes the current values to the config file in use, or to
// $HOME/.lexiforge.yaml when none was read
func Save(v *viper.Viper) (string, error) {
	path := v.ConfigFileUsed()
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to find home directory: %w", err)
		}
		path = filepath.Join(home, FileName+".yaml")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	return path, nil
}

// AIConfig returns the text backend configuration
func (s *Settings) AIConfig() *ai.Config {
	model := s.Model
	if strings.EqualFold(s.Provider, ai.ProviderOpenAI) && strings.HasPrefix(model, "gemini") {
		model = ai.DefaultOpenAIModel
	}
	return &ai.Config{
		Provider: strings.ToLower(s.Provider),
		APIKey:   s.APIKey,
		Model:    model,
		Timeout:  s.Timeout,
	}
}

// AudioConfig returns the speech provider configuration
func (s *Settings) AudioConfig() *audio.Config {
	c := audio.DefaultProviderConfig()
	c.Provider = s.TTS.Provider
	c.Fallback = s.TTS.Fallback
	c.OpenAIKey = s.TTS.OpenAIKey
	c.OpenAIVoice = s.TTS.Voice
	c.CacheDir = s.TTS.CacheDir
	c.EnableCache = s.TTS.EnableCache
	if s.TTS.OpenAIModel != "" {
		c.OpenAIModel = s.TTS.OpenAIModel
	}
	if s.TTS.Speed > 0 {
		c.OpenAISpeed = s.TTS.Speed
	}
	if s.Timeout > 0 {
		c.Timeout = s.Timeout
	}
	c.ESpeak = audio.DefaultESpeakConfig()
	if s.TTS.ESpeakSpeed > 0 {
		c.ESpeak.Speed = s.TTS.ESpeakSpeed
	}
	c.ESpeak.Pitch = s.TTS.ESpeakPitch
	return c
}

// EnrichSettings returns the generate action settings
func (s *Settings) EnrichSettings() flashcard.Settings {
	return flashcard.Settings{
		SourceLanguage:     s.SourceLanguage,
		DefinitionLanguage: s.DefinitionLanguage,
		AudioLanguage:      s.AudioLanguage,
		Fields: flashcard.FieldMapping{
			WordField:       s.FieldMapping.WordField,
			DefinitionField: s.FieldMapping.DefinitionField,
			ExampleField:    s.FieldMapping.ExampleField,
		},
	}
}

// StoryRequest returns a story request for the configured level and length
func (s *Settings) StoryRequest(words []string) story.Request {
	return story.Request{
		Words:          words,
		Level:          s.StoryLevel,
		Length:         story.Length(strings.ToLower(s.StoryLength)),
		Language:       s.SourceLanguage,
		PromptTemplate: s.StoryPromptTemplate,
	}
}

// LanguageForDeck picks the source language of a deck from deck_languages,
// falling back to the configured source language
func (s *Settings) LanguageForDeck(deckName string) string {
	if len(s.DeckLanguages) == 0 {
		return s.SourceLanguage
	}
	l, err := language.ForDeck(deckName, s.DeckLanguages)
	if err != nil {
		log := logging.NewLogger(context.Background()).WithField("deck", deckName)
		if apierr.IsUnsupportedLanguage(err) {
			log.Debugf("using %s: %v", s.SourceLanguage, err)
		} else {
			log.Warnf("using %s: %v", s.SourceLanguage, err)
		}
		return s.SourceLanguage
	}
	return l.Name
}
