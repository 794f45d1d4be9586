package definition

import (
	"strings"

	"codeberg.org/snonux/lexiforge/internal/language"
)

// DefaultPromptTemplate is used when no custom template is configured.
// Variables: {{word}}, {{source_lang}}, {{definition_lang}}
const DefaultPromptTemplate = `Analyze the word '{{word}}' in {{source_lang}}.
1. Find its base form (lemma).
2. Translate this base form into {{definition_lang}}:
   - If it is a simple common word (e.g. 'cat', 'milk', 'run'), give only a one-word translation in {{definition_lang}}.
   - Otherwise give the translation in {{definition_lang}} plus a very short 4-7 word definition in parentheses.
3. Give 1 example sentence in {{source_lang}} using the base form.

Format the answer exactly as:
BASE_FORM: [base form in {{source_lang}}]
DEFINITION: [translation/definition in {{definition_lang}}]
EXAMPLE: [sentence in {{source_lang}} using the base form]

Do not use markdown formatting.`

const (
	detectPreamble   = "First, detect the language of the word '{{word}}' and use that language as {{source_lang}}.\n"
	detectedLanguage = "the detected language"
)

// BuildPrompt fills the template. An empty template selects the default
// and an Auto source language prepends the detection instruction.
func BuildPrompt(template, word, sourceLang, definitionLang string) string {
	if strings.TrimSpace(template) == "" {
		template = DefaultPromptTemplate
	}

	source := sourceLang
	if language.IsAuto(sourceLang) || sourceLang == "" {
		template = detectPreamble + template
		source = detectedLanguage
	}

	r := strings.NewReplacer(
		"{{word}}", word,
		"{{source_lang}}", source,
		"{{definition_lang}}", definitionLang,
	)
	return r.Replace(template)
}
