package audio

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ValidateText checks that text is speakable and no longer than maxRunes.
// maxRunes <= 0 disables the length check.
func ValidateText(text string, maxRunes int) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("text cannot be empty")
	}

	if maxRunes > 0 && utf8.RuneCountInString(text) > maxRunes {
		return fmt.Errorf("text is longer than %d characters", maxRunes)
	}

	for _, r := range text {
		if unicode.IsLetter(r) {
			return nil
		}
	}
	return fmt.Errorf("text must contain at least one letter")
}

// preprocessText trims whitespace and surrounding punctuation that should not be spoken
func preprocessText(text string) string {
	return strings.TrimFunc(strings.TrimSpace(text), func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
}
