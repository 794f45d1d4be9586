package story

import (
	"strings"

	"codeberg.org/snonux/lexiforge/internal/language"
)

// DefaultPromptTemplate is used when no custom template is configured.
// Variables: {{words}}, {{level}}, {{word_count}}
const DefaultPromptTemplate = `Analyze the following words and detect their language: {{words}}

Then create an engaging and educational short story ({{word_count}}) IN THE EXACT SAME LANGUAGE as these words.

IMPORTANT: The story MUST be written in the same language as the input words. Do not translate or use any other language.

Requirements:
- Detect the language of the words first
- Write the ENTIRE story in that detected language
- Use all or most of the provided words naturally in context
- Highlight the studied words by wrapping them in **bold** (using **word** format)
- Make the story interesting and memorable
- Keep the language level appropriate for {{level}} learners (CEFR {{level}})
- The story should be approximately {{word_count}}
- Add a title to the story in the same language

Format your response as:
Title: [Story Title in the detected language]

[Story text with **highlighted** words in the detected language]`

// Length selects the story size
type Length string

const (
	Short  Length = "short"
	Medium Length = "medium"
	Long   Length = "long"
)

type lengthSpec struct {
	words  string
	tokens int32
}

var lengths = map[Length]lengthSpec{
	Short:  {words: "100-150 words", tokens: 1500},
	Medium: {words: "200-300 words", tokens: 2500},
	Long:   {words: "400-500 words", tokens: 4000},
}

// ParseLength maps a name to a Length; unknown names select Short
func ParseLength(s string) Length {
	l := Length(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := lengths[l]; ok {
		return l
	}
	return Short
}

// WordCount returns the target size phrase, e.g. "100-150 words"
func (l Length) WordCount() string {
	return lengths[ParseLength(string(l))].words
}

// MaxTokens returns the output token budget for the length
func (l Length) MaxTokens() int32 {
	return lengths[ParseLength(string(l))].tokens
}

// scriptNotes refine the prompt for languages whose script matters at low levels
var scriptNotes = map[string]map[language.Level]string{
	"ja": {
		language.A1: "Write mostly in hiragana and katakana; use only the most basic kanji.",
		language.A2: "Use common kanji only (JLPT N5-N4) and keep hiragana for everything else.",
	},
	"zh-CN": {
		language.A1: "Use only the most common simplified characters (HSK 1).",
		language.A2: "Use common simplified characters only (HSK 1-2).",
	},
	"ko": {
		language.A1: "Use only Hangul and very common vocabulary.",
	},
	"ar": {
		language.A1: "Use Modern Standard Arabic with full vowel marks (tashkeel).",
		language.A2: "Use Modern Standard Arabic with vowel marks on difficult words.",
	},
}

// variant returns the extra guidance lines for a (language, level) pair.
// An empty code means the language is detected by the model.
func variant(code string, level language.Level) []string {
	lines := []string{"- " + level.Guidance()}
	if note, ok := scriptNotes[code][level]; ok {
		lines = append(lines, "- "+note)
	}
	return lines
}

// buildPrompt fills the template and pins the language when it is known
func buildPrompt(template string, words []string, level language.Level, length Length, langName, langCode string) string {
	if strings.TrimSpace(template) == "" {
		template = DefaultPromptTemplate
	}

	prompt := strings.NewReplacer(
		"{{words}}", strings.Join(words, ", "),
		"{{level}}", string(level),
		"{{word_count}}", length.WordCount(),
	).Replace(template)

	if langName != "" {
		prompt = strings.NewReplacer(
			"Analyze the following words and detect their language", "Use the following words in "+langName,
			"IN THE EXACT SAME LANGUAGE as these words", "in "+langName,
			"Write the ENTIRE story in that detected language", "Write the ENTIRE story in "+langName,
			"in the detected language", "in "+langName,
		).Replace(prompt)
		prompt = strings.Replace(prompt, "- Detect the language of the words first\n", "", 1)
	}

	return prompt + "\n\nLevel guidance:\n" + strings.Join(variant(langCode, level), "\n")
}
