package language

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"codeberg.org/snonux/lexiforge/internal/apierr"
)

// Auto asks the generative model to detect the language itself
const Auto = "Auto"

// Voices holds the voice identifier for each speech provider.
// An empty identifier means the provider cannot speak the language.
type Voices struct {
	GoogleTTS   string // "tl" parameter of translate_tts
	ESpeak      string // espeak-ng voice name
	OpenAIVoice string // OpenAI speech voice
}

// Language describes one supported language
type Language struct {
	Code   string
	Name   string
	Voices Voices
	Levels []Level
}

// SupportsLevel reports whether stories can be generated at the given level
func (l Language) SupportsLevel(level Level) bool {
	for _, lv := range l.Levels {
		if lv == level {
			return true
		}
	}
	return false
}

// table is built once and never mutated
var table = []Language{
	{Code: "en", Name: "English", Voices: Voices{GoogleTTS: "en", ESpeak: "en", OpenAIVoice: "alloy"}},
	{Code: "zh-CN", Name: "Mandarin Chinese", Voices: Voices{GoogleTTS: "zh-CN", ESpeak: "cmn", OpenAIVoice: "alloy"}},
	{Code: "hi", Name: "Hindi", Voices: Voices{GoogleTTS: "hi", ESpeak: "hi", OpenAIVoice: "alloy"}},
	{Code: "es", Name: "Spanish", Voices: Voices{GoogleTTS: "es", ESpeak: "es", OpenAIVoice: "alloy"}},
	{Code: "fr", Name: "French", Voices: Voices{GoogleTTS: "fr", ESpeak: "fr", OpenAIVoice: "alloy"}},
	{Code: "ar", Name: "Arabic", Voices: Voices{GoogleTTS: "ar", ESpeak: "ar", OpenAIVoice: "alloy"}},
	{Code: "bn", Name: "Bengali", Voices: Voices{GoogleTTS: "bn", ESpeak: "bn", OpenAIVoice: "alloy"}},
	{Code: "ru", Name: "Russian", Voices: Voices{GoogleTTS: "ru", ESpeak: "ru", OpenAIVoice: "alloy"}},
	{Code: "pt-BR", Name: "Portuguese", Voices: Voices{GoogleTTS: "pt-BR", ESpeak: "pt-br", OpenAIVoice: "alloy"}},
	{Code: "ur", Name: "Urdu", Voices: Voices{GoogleTTS: "ur", ESpeak: "ur", OpenAIVoice: "alloy"}},
	{Code: "id", Name: "Indonesian", Voices: Voices{GoogleTTS: "id", ESpeak: "id", OpenAIVoice: "alloy"}},
	{Code: "de", Name: "German", Voices: Voices{GoogleTTS: "de", ESpeak: "de", OpenAIVoice: "alloy"}},
	{Code: "ja", Name: "Japanese", Voices: Voices{GoogleTTS: "ja", ESpeak: "ja", OpenAIVoice: "alloy"}},
	{Code: "tr", Name: "Turkish", Voices: Voices{GoogleTTS: "tr", ESpeak: "tr", OpenAIVoice: "alloy"}},
	{Code: "ko", Name: "Korean", Voices: Voices{GoogleTTS: "ko", ESpeak: "ko", OpenAIVoice: "alloy"}},
	{Code: "vi", Name: "Vietnamese", Voices: Voices{GoogleTTS: "vi", ESpeak: "vi", OpenAIVoice: "alloy"}},
	{Code: "it", Name: "Italian", Voices: Voices{GoogleTTS: "it", ESpeak: "it", OpenAIVoice: "alloy"}},
	{Code: "ta", Name: "Tamil", Voices: Voices{GoogleTTS: "ta", ESpeak: "ta", OpenAIVoice: "alloy"}},
	// espeak-ng ships no Thai voice
	{Code: "th", Name: "Thai", Voices: Voices{GoogleTTS: "th", OpenAIVoice: "alloy"}},
	{Code: "pl", Name: "Polish", Voices: Voices{GoogleTTS: "pl", ESpeak: "pl", OpenAIVoice: "alloy"}},
}

var (
	byKey   map[string]int
	aliases = map[string]string{
		"zh":         "zh-CN",
		"chinese":    "zh-CN",
		"mandarin":   "zh-CN",
		"pt":         "pt-BR",
		"portuguese": "pt-BR",
	}
)

func init() {
	byKey = make(map[string]int, len(table)*2)
	for i := range table {
		table[i].Levels = AllLevels()
		byKey[strings.ToLower(table[i].Code)] = i
		byKey[strings.ToLower(table[i].Name)] = i
	}
	for alias, code := range aliases {
		byKey[alias] = byKey[strings.ToLower(code)]
	}
}

// Lookup finds a language by ISO code or display name, case-insensitively.
// Unknown languages and Auto yield an UnsupportedLanguageError.
func Lookup(nameOrCode string) (Language, error) {
	key := strings.ToLower(strings.TrimSpace(nameOrCode))
	if key == "" {
		return Language{}, &apierr.UnsupportedLanguageError{Language: nameOrCode, Detail: "no language given"}
	}
	if IsAuto(key) {
		return Language{}, &apierr.UnsupportedLanguageError{Language: nameOrCode, Detail: "a concrete language is required"}
	}
	i, ok := byKey[key]
	if !ok {
		return Language{}, &apierr.UnsupportedLanguageError{Language: nameOrCode}
	}
	return copyOf(table[i]), nil
}

// IsAuto reports whether s selects automatic language detection
func IsAuto(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), Auto)
}

// All returns every supported language in table order
func All() []Language {
	out := make([]Language, len(table))
	for i, l := range table {
		out[i] = copyOf(l)
	}
	return out
}

// Names returns the display names sorted alphabetically
func Names() []string {
	names := make([]string, 0, len(table))
	for _, l := range table {
		names = append(names, l.Name)
	}
	sort.Strings(names)
	return names
}

// ForDeck resolves a deck name against a map of regular expression to
// language. Patterns are tried in sorted order so the result is stable.
func ForDeck(deckName string, patterns map[string]string) (Language, error) {
	keys := make([]string, 0, len(patterns))
	for k := range patterns {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, pattern := range keys {
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return Language{}, fmt.Errorf("invalid deck pattern %q: %w", pattern, err)
		}
		if re.MatchString(deckName) {
			return Lookup(patterns[pattern])
		}
	}
	return Language{}, &apierr.UnsupportedLanguageError{
		Language: deckName,
		Detail:   "no deck pattern matches",
	}
}

func copyOf(l Language) Language {
	l.Levels = append([]Level(nil), l.Levels...)
	return l
}
