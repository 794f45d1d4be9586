package lemma

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// Hinter suggests the dictionary form of a word.
// langCode is empty when the language is being auto-detected.
type Hinter interface {
	Hint(word, langCode string) (string, bool)
}

// contentPOS are the IPA parts of speech that carry the word's meaning
var contentPOS = map[string]bool{
	"動詞":  true, // verb
	"形容詞": true, // adjective
	"名詞":  true, // noun
	"副詞":  true, // adverb
}

// JapaneseHinter derives base forms with kagome and the IPA dictionary.
// The dictionary is loaded on first use.
type JapaneseHinter struct {
	once sync.Once
	t    *tokenizer.Tokenizer
	err  error
}

// NewJapaneseHinter creates a hinter; the tokenizer is built lazily
func NewJapaneseHinter() *JapaneseHinter {
	return &JapaneseHinter{}
}

func (h *JapaneseHinter) analyzer() (*tokenizer.Tokenizer, error) {
	h.once.Do(func() {
		h.t, h.err = tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
		if h.err != nil {
			h.err = fmt.Errorf("failed to load Japanese dictionary: %w", h.err)
		}
	})
	return h.t, h.err
}

// Hint returns the base form of the first content word
func (h *JapaneseHinter) Hint(word, langCode string) (string, bool) {
	word = strings.TrimSpace(word)
	if word == "" {
		return "", false
	}
	switch langCode {
	case "ja":
	case "":
		if !ContainsJapanese(word) {
			return "", false
		}
	default:
		return "", false
	}

	t, err := h.analyzer()
	if err != nil {
		return "", false
	}

	for _, token := range t.Tokenize(word) {
		if token.Class == tokenizer.DUMMY || strings.TrimSpace(token.Surface) == "" {
			continue
		}

		features := token.Features()
		if len(features) == 0 || !contentPOS[features[0]] {
			continue
		}

		base := token.Surface
		if len(features) > 6 && features[6] != "*" {
			base = features[6]
		}
		return base, true
	}
	return "", false
}

// ContainsJapanese reports whether s has kana or kanji
func ContainsJapanese(s string) bool {
	for _, r := range s {
		if unicode.In(r, unicode.Hiragana, unicode.Katakana, unicode.Han) {
			return true
		}
	}
	return false
}
